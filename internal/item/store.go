package item

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"ai-weekly-planner/internal/logger"
	"ai-weekly-planner/internal/storage"
)

// Persister loads and saves the full item collection snapshot.
type Persister interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// Store owns the canonical, ordered item collection. Item ids are unique at
// all times. Every mutation rewrites the whole snapshot through the
// persister; a failed write is logged and otherwise ignored.
type Store struct {
	mu        sync.RWMutex
	items     []Item
	index     map[string]int
	persister Persister
	log       *logger.Logger
}

// NewStore loads the collection from p. A missing or unreadable snapshot
// falls back to a copy of seed. A nil persister keeps the store in memory.
func NewStore(ctx context.Context, p Persister, seed []Item, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Store{
		persister: p,
		log:       log.With("component", "item_store"),
	}

	loaded, ok := s.load(ctx)
	if !ok {
		loaded = seed
	}
	s.reset(loaded)
	return s
}

func (s *Store) load(ctx context.Context) ([]Item, bool) {
	if s.persister == nil {
		return nil, false
	}
	items, err := s.persister.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Info("no item snapshot found, using seed collection")
		} else {
			s.log.Warn("failed to load item snapshot, using seed collection", "error", err)
		}
		return nil, false
	}
	return items, true
}

func (s *Store) reset(items []Item) {
	s.items = make([]Item, 0, len(items))
	s.index = make(map[string]int, len(items))
	for _, it := range items {
		if it.ID == "" {
			s.log.Warn("dropping item without id", "title", it.Title)
			continue
		}
		if _, dup := s.index[it.ID]; dup {
			s.log.Warn("dropping duplicate item id", "id", it.ID)
			continue
		}
		s.index[it.ID] = len(s.items)
		s.items = append(s.items, it.Clone())
	}
}

// Upsert replaces the item with the same id in place, or appends it as the
// newest entry. Callers validate the item first.
func (s *Store) Upsert(ctx context.Context, it Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.index[it.ID]; ok {
		s.items[idx] = it.Clone()
	} else {
		s.index[it.ID] = len(s.items)
		s.items = append(s.items, it.Clone())
	}
	s.persistLocked(ctx)
}

// Delete removes the item. Schedule slots that reference it are left alone.
// Reports whether anything was removed.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[id]
	if !ok {
		return false
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	delete(s.index, id)
	for i := idx; i < len(s.items); i++ {
		s.index[s.items[i].ID] = i
	}
	s.persistLocked(ctx)
	return true
}

// SetRating changes only the rating of an existing item.
func (s *Store) SetRating(ctx context.Context, id string, rating int) error {
	if rating < 0 || rating > MaxRating {
		return ErrInvalidRating
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	s.items[idx].Rating = rating
	s.persistLocked(ctx)
	return nil
}

// SetImageURL changes only the image of an existing item. An item deleted in
// the meantime stays deleted.
func (s *Store) SetImageURL(ctx context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	s.items[idx].ImageURL = url
	s.persistLocked(ctx)
	return nil
}

// ErrNotFound is returned by operations that need an existing item.
var ErrNotFound = errors.New("item not found")

// Find returns a copy of the item with the given id.
func (s *Store) Find(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[id]
	if !ok {
		return Item{}, false
	}
	return s.items[idx].Clone(), true
}

// Search returns the items whose title or any tag contains query,
// case-insensitively, in collection order. An empty query matches everything.
func (s *Store) Search(query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if it.Matches(q) {
			out = append(out, it.Clone())
		}
	}
	return out
}

// All returns a copy of the whole collection in order.
func (s *Store) All() []Item {
	return s.Search("")
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// persistLocked writes the snapshot while the write lock is held so that
// snapshots reach storage in mutation order.
func (s *Store) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	snapshot := make([]Item, len(s.items))
	for i, it := range s.items {
		snapshot[i] = it.Clone()
	}
	if err := s.persister.Save(ctx, snapshot); err != nil {
		s.log.Error("failed to persist item snapshot", "error", err, "items", len(snapshot))
	}
}
