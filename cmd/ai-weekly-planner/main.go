package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ai-weekly-planner/internal/app"
	"ai-weekly-planner/internal/config"
	"ai-weekly-planner/internal/logger"

	flag "github.com/spf13/pflag"
)

func main() {
	global := flag.NewFlagSet("ai-weekly-planner", flag.ContinueOnError)
	global.SetInterspersed(false)
	configPath := global.StringP("config", "c", "", "Path to a JSONC config file (default "+config.DefaultConfigFile+")")
	kind := global.StringP("kind", "k", "", "Planner kind: recipe or adventure")
	global.Usage = func() { printUsage(os.Stderr) }
	if err := global.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if global.NArg() == 0 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if *kind != "" {
		os.Setenv("PLANNER_KIND", *kind)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize planner", "error", err)
	}

	code := newCLI(rt.App, rt.MetricsStore, os.Stdout, os.Stderr).run(ctx, global.Args())
	rt.Close()
	stop()
	log.Sync()
	os.Exit(code)
}
