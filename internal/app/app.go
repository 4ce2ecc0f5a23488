// Package app wires the item store, the schedule, the aggregator and the
// generative collaborators into the operations both surfaces (CLI and
// Telegram) use.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-weekly-planner/internal/assistant"
	"ai-weekly-planner/internal/ghost"
	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/llm"
	"ai-weekly-planner/internal/logger"
	"ai-weekly-planner/internal/planner"
	"ai-weekly-planner/internal/schedule"
	"ai-weekly-planner/internal/shared"
	"ai-weekly-planner/internal/shopping"
)

// Extractor turns free text into an item draft.
type Extractor interface {
	Extract(ctx context.Context, text string) shared.Result[item.Draft]
}

// Suggester proposes items for a free-text request.
type Suggester interface {
	Suggest(ctx context.Context, request string, existing []item.Item) shared.Result[assistant.Suggestion]
}

// Narrator reads text aloud.
type Narrator interface {
	Narrate(ctx context.Context, text string) shared.Result[[]byte]
}

// Illustrator draws a picture for a title.
type Illustrator interface {
	Illustrate(ctx context.Context, title string) shared.Result[llm.Image]
}

// PageFetcher returns the readable text of a web page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// MetricsRecorder stores collaborator usage.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta, success bool) error
}

// Deps are the collaborators of an App. Store, Schedule and Aggregator are
// required; the rest may be nil, in which case the matching operations
// report ErrUnavailable.
type Deps struct {
	Kind        item.Kind
	Store       *item.Store
	Schedule    *schedule.Schedule
	Aggregator  *planner.Aggregator
	Extractor   Extractor
	Suggester   Suggester
	Narrator    Narrator
	Illustrator Illustrator
	Fetcher     PageFetcher
	Ghost       ghost.Client
	Metrics     MetricsRecorder
	Log         *logger.Logger

	// IngestDelay is waited between Ghost posts to stay under model rate limits.
	IngestDelay time.Duration
}

// App holds the application's dependencies.
type App struct {
	Deps
	log *logger.Logger
}

var (
	ErrNotFound    = item.ErrNotFound
	ErrUnavailable = errors.New("feature not configured")
)

// New creates and initializes a new App instance.
func New(d Deps) *App {
	log := d.Log
	if log == nil {
		log = logger.NewNop()
	}
	a := &App{Deps: d, log: log.With("kind", string(d.Kind))}
	if a.Aggregator != nil {
		a.Aggregator.OnMeta(a.recordMeta)
	}
	return a
}

// Layout returns the slot layout of the schedule.
func (a *App) Layout() schedule.Layout {
	return a.Schedule.Layout()
}

// SaveItem validates and stores an item. An item without id gets a new one.
func (a *App) SaveItem(ctx context.Context, it item.Item) (item.Item, error) {
	if it.ID == "" {
		it.ID = item.NewID()
	}
	if it.SourceType == "" {
		it.SourceType = item.SourceManual
	}
	it = it.Normalize()
	if err := it.Validate(); err != nil {
		return item.Item{}, err
	}
	a.Store.Upsert(ctx, it)
	a.log.Info("item saved", "id", it.ID, "title", it.Title)
	return it, nil
}

// DeleteItem removes an item. Schedule slots pointing at it become empty
// when resolved.
func (a *App) DeleteItem(ctx context.Context, id string) error {
	if !a.Store.Delete(ctx, id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	a.log.Info("item deleted", "id", id)
	return nil
}

// RateItem sets the rating of an item.
func (a *App) RateItem(ctx context.Context, id string, rating int) error {
	if err := a.Store.SetRating(ctx, id, rating); err != nil {
		return fmt.Errorf("failed to rate %s: %w", id, err)
	}
	return nil
}

// Items searches the collection; an empty query lists everything.
func (a *App) Items(query string) []item.Item {
	return a.Store.Search(query)
}

// Item finds one item.
func (a *App) Item(id string) (item.Item, bool) {
	return a.Store.Find(id)
}

// Assign schedules an existing item into a slot.
func (a *App) Assign(ctx context.Context, dayName, slotName, id string) error {
	day, slot, err := a.parseSlot(dayName, slotName)
	if err != nil {
		return err
	}
	if _, ok := a.Store.Find(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	a.Schedule.Assign(ctx, day, slot, id)
	return nil
}

// ClearSlot empties one slot.
func (a *App) ClearSlot(ctx context.Context, dayName, slotName string) error {
	day, slot, err := a.parseSlot(dayName, slotName)
	if err != nil {
		return err
	}
	a.Schedule.Clear(ctx, day, slot)
	return nil
}

// ResetPlan empties the whole week.
func (a *App) ResetPlan(ctx context.Context) {
	a.Schedule.ClearAll(ctx)
	a.log.Info("plan reset")
}

// Week resolves every slot of the week.
func (a *App) Week() []schedule.Entry {
	return a.Schedule.Resolve(a.Store)
}

// ShoppingList aggregates the scheduled items into the categorized list.
func (a *App) ShoppingList(ctx context.Context) shared.Result[shopping.List] {
	return a.Aggregator.Refresh(ctx, a.Schedule, a.Store)
}

// AggregationStatus reports the aggregator state.
func (a *App) AggregationStatus() planner.Status {
	return a.Aggregator.Current()
}

func (a *App) parseSlot(dayName, slotName string) (schedule.Day, schedule.Slot, error) {
	day, err := schedule.ParseDay(dayName)
	if err != nil {
		return "", "", err
	}
	slot, err := a.Schedule.Layout().Parse(slotName)
	if err != nil {
		return "", "", err
	}
	return day, slot, nil
}

func (a *App) recordMeta(meta shared.AgentMeta, success bool) {
	if a.Metrics == nil {
		return
	}
	if err := a.Metrics.RecordMeta(context.Background(), meta, success); err != nil {
		a.log.Warn("failed to record metrics", "agent", meta.AgentName, "error", err)
	}
}

func record[T any](a *App, res shared.Result[T]) shared.Result[T] {
	a.recordMeta(res.Meta, res.OK())
	return res
}
