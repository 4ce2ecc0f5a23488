// Package planner aggregates the scheduled items into a categorized list
// through a summarization collaborator.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/logger"
	"ai-weekly-planner/internal/schedule"
	"ai-weekly-planner/internal/shared"
	"ai-weekly-planner/internal/shopping"
)

// Phase is the lifecycle state of the aggregation.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// ErrSuperseded is returned to a caller whose request finished after a newer
// one had started. Its response is discarded.
var ErrSuperseded = errors.New("aggregation superseded by a newer request")

// Summarizer turns a set of items into a categorized list.
type Summarizer interface {
	Summarize(ctx context.Context, items []item.Item) (shopping.List, shared.AgentMeta, error)
}

// Status is a point-in-time view of the aggregator.
type Status struct {
	Phase     Phase
	List      shopping.List
	Message   string
	Items     int
	UpdatedAt time.Time
}

// Aggregator runs summarization requests and keeps the latest accepted list.
// Only the most recently started request may change the state.
type Aggregator struct {
	mu         sync.Mutex
	summarizer Summarizer
	seq        uint64
	status     Status
	onMeta     func(meta shared.AgentMeta, ok bool)
	log        *logger.Logger
}

func NewAggregator(s Summarizer, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{
		summarizer: s,
		status:     Status{Phase: PhaseIdle},
		log:        log.With("component", "aggregator"),
	}
}

// OnMeta registers a hook that receives the metadata of every completed
// collaborator call, superseded ones included, and whether it succeeded.
func (a *Aggregator) OnMeta(fn func(meta shared.AgentMeta, ok bool)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onMeta = fn
}

// Current returns the current status. The list is a copy.
func (a *Aggregator) Current() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.status
	st.List = st.List.Clone()
	return st
}

// Request summarizes items. An empty set completes immediately with an empty
// list and no collaborator call. On failure the previously accepted list is
// kept. No retry, caching or timeout is applied beyond ctx.
func (a *Aggregator) Request(ctx context.Context, items []item.Item) shared.Result[shopping.List] {
	a.mu.Lock()
	a.seq++
	id := a.seq
	if len(items) == 0 {
		a.status = Status{Phase: PhaseReady, List: shopping.List{}, UpdatedAt: time.Now()}
		a.mu.Unlock()
		return shared.Ok(shopping.List{})
	}
	a.status.Phase = PhaseLoading
	a.status.Message = ""
	a.status.Items = len(items)
	onMeta := a.onMeta
	a.mu.Unlock()

	a.log.Debug("requesting summary", "request", id, "items", len(items))
	list, meta, err := a.summarizer.Summarize(ctx, items)
	if onMeta != nil {
		onMeta(meta, err == nil)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if id != a.seq {
		a.log.Info("discarding stale summary", "request", id, "latest", a.seq)
		return shared.Err[shopping.List](ErrSuperseded).WithMeta(meta)
	}
	a.status.UpdatedAt = time.Now()
	if err != nil {
		a.status.Phase = PhaseFailed
		a.status.Message = err.Error()
		a.log.Warn("summary failed", "request", id, "error", err)
		return shared.Err[shopping.List](fmt.Errorf("failed to summarize %d items: %w", len(items), err)).WithMeta(meta)
	}

	list = list.Clean()
	a.status.Phase = PhaseReady
	a.status.List = list
	return shared.Ok(list.Clone()).WithMeta(meta)
}

// Refresh aggregates what is scheduled right now. Later schedule edits do
// not affect the in-flight request.
func (a *Aggregator) Refresh(ctx context.Context, s *schedule.Schedule, lookup schedule.Lookup) shared.Result[shopping.List] {
	return a.Request(ctx, CollectScheduledItems(s, lookup))
}
