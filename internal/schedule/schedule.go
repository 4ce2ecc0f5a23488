package schedule

import (
	"context"
	"errors"
	"sync"

	"ai-weekly-planner/internal/logger"
	"ai-weekly-planner/internal/storage"
)

// Plan is the persisted form of a schedule: day -> slot -> item id. Cleared
// slots and empty days are absent.
type Plan map[Day]map[Slot]string

// Persister loads and saves the full schedule snapshot.
type Persister interface {
	Load(ctx context.Context) (Plan, error)
	Save(ctx context.Context, plan Plan) error
}

// Schedule is a sparse (day, slot) -> item id mapping. It does not check
// that ids exist; dangling references are resolved as empty slots.
type Schedule struct {
	mu        sync.RWMutex
	layout    Layout
	plan      Plan
	persister Persister
	log       *logger.Logger
}

// New loads the schedule from p. A missing or corrupt snapshot yields an
// empty schedule. Entries outside the week or the layout are dropped.
func New(ctx context.Context, layout Layout, p Persister, log *logger.Logger) *Schedule {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Schedule{
		layout:    layout,
		plan:      make(Plan),
		persister: p,
		log:       log.With("component", "schedule"),
	}
	if p == nil {
		return s
	}

	loaded, err := p.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.log.Info("no schedule snapshot found, starting empty")
	case err != nil:
		s.log.Warn("failed to load schedule snapshot, starting empty", "error", err)
	default:
		s.restore(loaded)
	}
	return s
}

func (s *Schedule) restore(loaded Plan) {
	for day, slots := range loaded {
		if !day.valid() {
			s.log.Warn("dropping unknown day from schedule snapshot", "day", day)
			continue
		}
		for slot, id := range slots {
			if !s.layout.Has(slot) {
				s.log.Warn("dropping unknown slot from schedule snapshot", "day", day, "slot", slot)
				continue
			}
			if id == "" {
				continue
			}
			s.setLocked(day, slot, id)
		}
	}
}

// Layout returns the slot layout of this schedule.
func (s *Schedule) Layout() Layout {
	return s.layout
}

// Assign points the slot at id. An empty id clears the slot.
func (s *Schedule) Assign(ctx context.Context, day Day, slot Slot, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.clearLocked(day, slot)
	} else {
		s.setLocked(day, slot, id)
	}
	s.persistLocked(ctx)
}

// Clear empties a single slot.
func (s *Schedule) Clear(ctx context.Context, day Day, slot Slot) {
	s.Assign(ctx, day, slot, "")
}

// ClearAll empties every slot.
func (s *Schedule) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plan = make(Plan)
	s.persistLocked(ctx)
}

// Get returns the raw id stored in the slot, which may no longer exist.
func (s *Schedule) Get(day Day, slot Slot) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.plan[day][slot]
	return id, ok
}

// IsEmpty reports whether no slot holds an id.
func (s *Schedule) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plan) == 0
}

// Snapshot returns a deep copy of the current plan.
func (s *Schedule) Snapshot() Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Schedule) setLocked(day Day, slot Slot, id string) {
	slots, ok := s.plan[day]
	if !ok {
		slots = make(map[Slot]string, len(s.layout))
		s.plan[day] = slots
	}
	slots[slot] = id
}

func (s *Schedule) clearLocked(day Day, slot Slot) {
	slots, ok := s.plan[day]
	if !ok {
		return
	}
	delete(slots, slot)
	if len(slots) == 0 {
		delete(s.plan, day)
	}
}

func (s *Schedule) copyLocked() Plan {
	out := make(Plan, len(s.plan))
	for day, slots := range s.plan {
		c := make(map[Slot]string, len(slots))
		for slot, id := range slots {
			c[slot] = id
		}
		out[day] = c
	}
	return out
}

func (s *Schedule) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, s.copyLocked()); err != nil {
		s.log.Error("failed to persist schedule snapshot", "error", err)
	}
}
