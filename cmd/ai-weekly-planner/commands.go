package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ai-weekly-planner/internal/app"
	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/metrics"
	"ai-weekly-planner/internal/schedule"
	"ai-weekly-planner/internal/shopping"

	flag "github.com/spf13/pflag"
)

// metricsStore is the part of the metrics store the CLI reports from.
type metricsStore interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
	Cleanup(ctx context.Context, olderThanDays int) (int64, error)
}

type cli struct {
	app     *app.App
	metrics metricsStore
	out     io.Writer
	errOut  io.Writer
}

func newCLI(a *app.App, m metricsStore, out, errOut io.Writer) *cli {
	return &cli{app: a, metrics: m, out: out, errOut: errOut}
}

type command struct {
	usage string
	help  string
	run   func(c *cli, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"items":           {"items [query]", "List or search the collection", (*cli).cmdItems},
	"show":            {"show <id>", "Show one item", (*cli).cmdShow},
	"add":             {"add --title <title> [flags]", "Add an item by hand", (*cli).cmdAdd},
	"delete":          {"delete <id>", "Delete an item", (*cli).cmdDelete},
	"rate":            {"rate <id> <stars>", "Rate an item", (*cli).cmdRate},
	"plan":            {"plan", "Show the week", (*cli).cmdPlan},
	"assign":          {"assign <day> <slot> <id>", "Put an item into a slot", (*cli).cmdAssign},
	"clear":           {"clear <day> <slot>", "Empty a slot", (*cli).cmdClear},
	"reset":           {"reset", "Empty the whole week", (*cli).cmdReset},
	"shopping":        {"shopping", "Aggregate the shopping or gear list", (*cli).cmdShopping},
	"import":          {"import <url|text> | --file <path>", "Extract an item with the model", (*cli).cmdImport},
	"suggest":         {"suggest [--adopt] <request>", "Ask for matching or new items", (*cli).cmdSuggest},
	"narrate":         {"narrate <id> [--step n] [--out file]", "Read steps aloud to a PCM file", (*cli).cmdNarrate},
	"illustrate":      {"illustrate <id>", "Generate a cover image", (*cli).cmdIllustrate},
	"ingest":          {"ingest", "Import every post from Ghost", (*cli).cmdIngest},
	"publish":         {"publish <id> [--draft]", "Publish an item to Ghost", (*cli).cmdPublish},
	"metrics":         {"metrics [--days n]", "Show model usage", (*cli).cmdMetrics},
	"metrics-cleanup": {"metrics-cleanup [--days n]", "Remove old metric records", (*cli).cmdMetricsCleanup},
}

var commandOrder = []string{
	"items", "show", "add", "delete", "rate",
	"plan", "assign", "clear", "reset", "shopping",
	"import", "suggest", "narrate", "illustrate",
	"ingest", "publish", "metrics", "metrics-cleanup",
}

var errUsage = errors.New("usage")

func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		printUsage(c.errOut)
		return 1
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		printUsage(c.out)
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(c.errOut, "Unknown command: %s\n", args[0])
		printUsage(c.errOut)
		return 1
	}

	err := cmd.run(c, ctx, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprintf(c.errOut, "Usage: ai-weekly-planner %s\n", cmd.usage)
		return 2
	default:
		fmt.Fprintf(c.errOut, "error: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ai-weekly-planner [--config file] [--kind recipe|adventure] <command> [arguments]")
	fmt.Fprintln(w, "\nCommands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-44s %s\n", commands[name].usage, commands[name].help)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func exactArgs(args []string, n int) error {
	if len(args) != n {
		return errUsage
	}
	return nil
}

func (c *cli) cmdItems(_ context.Context, args []string) error {
	items := c.app.Items(strings.Join(args, " "))
	if len(items) == 0 {
		fmt.Fprintln(c.out, "No items.")
		return nil
	}
	for _, it := range items {
		fmt.Fprintf(c.out, "%-38s %s%s\n", it.ID, it.Title, stars(it.Rating))
	}
	return nil
}

func (c *cli) cmdShow(_ context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	it, ok := c.app.Item(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", app.ErrNotFound, args[0])
	}
	printItem(c.out, c.app.Kind, it)
	return nil
}

func (c *cli) cmdAdd(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	title := fs.String("title", "", "Title")
	description := fs.String("description", "", "Description")
	subItems := fs.StringArray("sub", nil, "Ingredient or waypoint (repeatable)")
	steps := fs.StringArray("step", nil, "Instruction or briefing step (repeatable)")
	tags := fs.StringSlice("tag", nil, "Tags (comma separated or repeatable)")
	rating := fs.Int("rating", 0, "Rating")
	prep := fs.Int("prep", 0, "Prep time in minutes")
	cook := fs.Int("cook", 0, "Cook time in minutes")
	servings := fs.Int("servings", 0, "Servings")
	distance := fs.Float64("distance", 0, "Distance in km")
	duration := fs.Float64("duration", 0, "Duration in hours")
	difficulty := fs.String("difficulty", "", "Difficulty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return errUsage
	}

	saved, err := c.app.SaveItem(ctx, item.Item{
		Title:         *title,
		Description:   *description,
		SubItems:      *subItems,
		Steps:         *steps,
		Tags:          *tags,
		Rating:        *rating,
		PrepMinutes:   *prep,
		CookMinutes:   *cook,
		Servings:      *servings,
		DistanceKm:    *distance,
		DurationHours: *duration,
		Difficulty:    *difficulty,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %s (%s)\n", saved.Title, saved.ID)
	return nil
}

func (c *cli) cmdDelete(ctx context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	if err := c.app.DeleteItem(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted %s\n", args[0])
	return nil
}

func (c *cli) cmdRate(ctx context.Context, args []string) error {
	if err := exactArgs(args, 2); err != nil {
		return err
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}
	return c.app.RateItem(ctx, args[0], rating)
}

func (c *cli) cmdPlan(_ context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}
	printWeek(c.out, c.app.Week())
	return nil
}

func (c *cli) cmdAssign(ctx context.Context, args []string) error {
	if err := exactArgs(args, 3); err != nil {
		return err
	}
	if err := c.app.Assign(ctx, args[0], args[1], args[2]); err != nil {
		return err
	}
	printWeek(c.out, c.app.Week())
	return nil
}

func (c *cli) cmdClear(ctx context.Context, args []string) error {
	if err := exactArgs(args, 2); err != nil {
		return err
	}
	if err := c.app.ClearSlot(ctx, args[0], args[1]); err != nil {
		return err
	}
	printWeek(c.out, c.app.Week())
	return nil
}

func (c *cli) cmdReset(ctx context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}
	c.app.ResetPlan(ctx)
	fmt.Fprintln(c.out, "The week is empty.")
	return nil
}

func (c *cli) cmdShopping(ctx context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}
	list, err := c.app.ShoppingList(ctx).Unwrap()
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, shopping.Format(list))
	if len(list) == 0 {
		fmt.Fprintln(c.out)
	}
	return nil
}

func (c *cli) cmdImport(ctx context.Context, args []string) error {
	fs := newFlagSet("import")
	file := fs.StringP("file", "f", "", "Read the text to import from a file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var saved item.Item
	var err error
	input := strings.TrimSpace(strings.Join(fs.Args(), " "))
	switch {
	case *file != "":
		data, rerr := os.ReadFile(*file)
		if rerr != nil {
			return fmt.Errorf("failed to read %s: %w", *file, rerr)
		}
		saved, err = c.app.ImportText(ctx, string(data)).Unwrap()
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
		saved, err = c.app.ImportURL(ctx, input).Unwrap()
	case input != "":
		saved, err = c.app.ImportText(ctx, input).Unwrap()
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Imported %s (%s)\n", saved.Title, saved.ID)
	return nil
}

func (c *cli) cmdSuggest(ctx context.Context, args []string) error {
	fs := newFlagSet("suggest")
	adopt := fs.Bool("adopt", false, "Save the suggested new item")
	if err := fs.Parse(args); err != nil {
		return err
	}
	request := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if request == "" {
		return errUsage
	}

	s, err := c.app.Suggest(ctx, request).Unwrap()
	if err != nil {
		return err
	}
	if len(s.Matched) == 0 && s.NewItem == nil {
		fmt.Fprintln(c.out, "Nothing fits that request.")
		return nil
	}
	for _, it := range s.Matched {
		fmt.Fprintf(c.out, "match: %s (%s)\n", it.Title, it.ID)
	}
	if s.NewItem == nil {
		return nil
	}
	fmt.Fprintf(c.out, "new:   %s\n", s.NewItem.Title)
	if !*adopt {
		return nil
	}
	saved, err := c.app.AdoptSuggestion(ctx, *s.NewItem)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %s (%s)\n", saved.Title, saved.ID)
	return nil
}

func (c *cli) cmdNarrate(ctx context.Context, args []string) error {
	fs := newFlagSet("narrate")
	step := fs.Int("step", 0, "Step to read (1-based); all steps when omitted")
	out := fs.StringP("out", "o", "narration.pcm", "Output file for 24 kHz 16-bit mono PCM")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	index := *step - 1
	if !fs.Changed("step") {
		index = -1
	} else if *step < 1 {
		return errUsage
	}

	audio, err := c.app.Narrate(ctx, fs.Arg(0), index).Unwrap()
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, audio, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}
	fmt.Fprintf(c.out, "Wrote %d bytes to %s\n", len(audio), *out)
	return nil
}

func (c *cli) cmdIllustrate(ctx context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	img, err := c.app.Illustrate(ctx, args[0]).Unwrap()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %s image (%d bytes) to %s\n", img.MIMEType, len(img.Data), args[0])
	return nil
}

func (c *cli) cmdIngest(ctx context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}
	report, err := c.app.IngestGhost(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Imported %d posts, %d failed.\n", report.Imported, report.Failed)
	return nil
}

func (c *cli) cmdPublish(ctx context.Context, args []string) error {
	fs := newFlagSet("publish")
	draft := fs.Bool("draft", false, "Create the post as a draft")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	post, err := c.app.Publish(ctx, fs.Arg(0), !*draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created post %s %s\n", post.ID, post.URL)
	return nil
}

func (c *cli) cmdMetrics(ctx context.Context, args []string) error {
	fs := newFlagSet("metrics")
	days := fs.Int("days", 7, "Number of days to report")
	if err := fs.Parse(args); err != nil {
		return err
	}
	usage, err := c.metrics.GetDailyUsage(ctx, *days)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		fmt.Fprintln(c.out, "No data yet.")
	}
	for _, d := range usage {
		fmt.Fprintf(c.out, "%s  %6d prompt  %6d completion  %3d execs  %3d failed\n",
			d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution, d.Failures)
	}
	return nil
}

func (c *cli) cmdMetricsCleanup(ctx context.Context, args []string) error {
	fs := newFlagSet("metrics-cleanup")
	days := fs.Int("days", 30, "Keep records for the last N days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	affected, err := c.metrics.Cleanup(ctx, *days)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	fmt.Fprintf(c.out, "Successfully removed %d old metric records.\n", affected)
	return nil
}

func printItem(w io.Writer, kind item.Kind, it item.Item) {
	fmt.Fprintf(w, "%s%s\n", it.Title, stars(it.Rating))
	fmt.Fprintf(w, "id: %s  source: %s\n", it.ID, it.SourceType)
	if it.Description != "" {
		fmt.Fprintf(w, "\n%s\n", it.Description)
	}
	if len(it.SubItems) > 0 {
		fmt.Fprintf(w, "\n%s:\n", kind.SubItemsLabel())
		for _, s := range it.SubItems {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if len(it.Steps) > 0 {
		fmt.Fprintf(w, "\n%s:\n", kind.StepsLabel())
		for i, s := range it.Steps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, s)
		}
	}
	if len(it.Tags) > 0 {
		fmt.Fprintf(w, "\ntags: %s\n", strings.Join(it.Tags, ", "))
	}
}

func printWeek(w io.Writer, entries []schedule.Entry) {
	for _, e := range entries {
		title := "-"
		if e.Item != nil {
			title = fmt.Sprintf("%s (%s)", e.Item.Title, e.Item.ID)
		}
		fmt.Fprintf(w, "%-10s %-7s %s\n", e.Day.Title(), e.Slot, title)
	}
}

func stars(rating int) string {
	if rating <= 0 {
		return ""
	}
	return " " + strings.Repeat("*", rating)
}
