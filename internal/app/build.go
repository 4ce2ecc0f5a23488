package app

import (
	"context"
	"fmt"
	"time"

	"ai-weekly-planner/internal/assistant"
	"ai-weekly-planner/internal/clipper"
	"ai-weekly-planner/internal/config"
	"ai-weekly-planner/internal/database"
	"ai-weekly-planner/internal/ghost"
	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/llm"
	"ai-weekly-planner/internal/logger"
	"ai-weekly-planner/internal/metrics"
	"ai-weekly-planner/internal/planner"
	"ai-weekly-planner/internal/schedule"
	"ai-weekly-planner/internal/shared"
	"ai-weekly-planner/internal/shopping"
	"ai-weekly-planner/internal/storage"
)

// Runtime is an App together with the resources it owns.
type Runtime struct {
	*App
	Config       *config.Config
	DB           *database.DB
	KV           storage.KV
	MetricsStore *metrics.Store
	clients      *llm.Clients
}

// ItemsKey and PlanKey name the snapshots of a planner kind.
func ItemsKey(kind item.Kind) string { return string(kind) + ".items" }
func PlanKey(kind item.Kind) string  { return string(kind) + ".plan" }

// Build opens storage and creates every collaborator the configuration
// allows. Generative features are left out when their keys are missing.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Runtime, error) {
	kind, err := item.ParseKind(cfg.Kind)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDB(cfg.DatabasePath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	rt := &Runtime{Config: cfg, DB: db, MetricsStore: metrics.NewStore(db.SQL)}

	switch cfg.StorageBackend {
	case "sqlite":
		rt.KV = storage.NewSQLKV(db.SQL)
	default:
		kv, err := storage.NewFileKV(cfg.DataDir)
		if err != nil {
			db.Close()
			return nil, err
		}
		rt.KV = kv
	}

	d := Deps{
		Kind:        kind,
		Store:       item.NewStore(ctx, storage.NewSnapshot[[]item.Item](rt.KV, ItemsKey(kind)), item.Seed(kind), log),
		Schedule:    schedule.New(ctx, schedule.LayoutFor(kind), storage.NewSnapshot[schedule.Plan](rt.KV, PlanKey(kind)), log),
		Fetcher:     clipper.NewClipper(),
		Metrics:     rt.MetricsStore,
		Log:         log,
		IngestDelay: 2 * time.Second,
	}

	var summarizer planner.Summarizer = unavailableSummarizer{}
	if err := cfg.RequireText(); err != nil {
		log.Warn("generative features disabled", "reason", err)
	} else {
		clients, err := llm.NewClients(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize llm clients: %w", err)
		}
		rt.clients = clients
		summarizer = assistant.NewSummarizer(kind, clients.Text)
		d.Extractor = assistant.NewExtractor(kind, clients.Text)
		d.Suggester = assistant.NewSuggester(kind, clients.Text)
		if clients.Speech != nil {
			d.Narrator = assistant.NewNarrator(kind, clients.Speech)
			d.Illustrator = assistant.NewIllustrator(kind, clients.Image)
		} else {
			log.Warn("narration and illustration disabled", "reason", cfg.RequireMedia())
		}
	}
	d.Aggregator = planner.NewAggregator(summarizer, log)

	if err := cfg.RequireGhost(); err != nil {
		log.Debug("ghost integration disabled", "reason", err)
	} else {
		d.Ghost = ghost.NewClient(cfg)
	}

	rt.App = New(d)
	return rt, nil
}

// Close releases the model clients and the database.
func (r *Runtime) Close() {
	if r.clients != nil {
		if err := r.clients.Close(); err != nil {
			r.log.Warn("failed to close llm clients", "error", err)
		}
	}
	if err := r.DB.Close(); err != nil {
		r.log.Warn("failed to close database", "error", err)
	}
}

type unavailableSummarizer struct{}

func (unavailableSummarizer) Summarize(context.Context, []item.Item) (shopping.List, shared.AgentMeta, error) {
	return nil, shared.AgentMeta{}, fmt.Errorf("%w: summarizer", ErrUnavailable)
}
