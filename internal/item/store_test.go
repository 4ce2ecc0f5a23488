package item

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"ai-weekly-planner/internal/storage"

	"github.com/google/go-cmp/cmp"
)

// memPersister is an in-memory Persister that counts saves and can be told to fail.
type memPersister struct {
	items   []Item
	loadErr error
	saveErr error
	saves   int
}

func (m *memPersister) Load(ctx context.Context) ([]Item, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.items, nil
}

func (m *memPersister) Save(ctx context.Context, items []Item) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items = items
	return nil
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	seed := []Item{{ID: "s1", Title: "Seed"}}

	t.Run("MissingSnapshotUsesSeed", func(t *testing.T) {
		store := NewStore(ctx, &memPersister{loadErr: storage.ErrNotFound}, seed, nil)
		if diff := cmp.Diff([]string{"s1"}, ids(store.All())); diff != "" {
			t.Errorf("Unexpected items (-want +got):\n%s", diff)
		}
	})

	t.Run("CorruptSnapshotUsesSeed", func(t *testing.T) {
		store := NewStore(ctx, &memPersister{loadErr: errors.New("bad json")}, seed, nil)
		if store.Len() != 1 {
			t.Errorf("Expected seed collection, got %d items", store.Len())
		}
	})

	t.Run("LoadedSnapshotWins", func(t *testing.T) {
		p := &memPersister{items: []Item{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}}
		store := NewStore(ctx, p, seed, nil)
		if diff := cmp.Diff([]string{"a", "b"}, ids(store.All())); diff != "" {
			t.Errorf("Unexpected items (-want +got):\n%s", diff)
		}
	})

	t.Run("DuplicateIDsInSnapshotCollapse", func(t *testing.T) {
		p := &memPersister{items: []Item{{ID: "a", Title: "first"}, {ID: "a", Title: "second"}, {Title: "no id"}}}
		store := NewStore(ctx, p, nil, nil)
		got, ok := store.Find("a")
		if !ok || got.Title != "first" || store.Len() != 1 {
			t.Errorf("Expected only the first 'a' to survive, got %+v (len %d)", got, store.Len())
		}
	})
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{loadErr: storage.ErrNotFound}
	store := NewStore(ctx, p, nil, nil)

	store.Upsert(ctx, Item{ID: "a", Title: "A"})
	store.Upsert(ctx, Item{ID: "b", Title: "B"})
	store.Upsert(ctx, Item{ID: "c", Title: "C"})

	t.Run("NewIDsAppend", func(t *testing.T) {
		if diff := cmp.Diff([]string{"a", "b", "c"}, ids(store.All())); diff != "" {
			t.Errorf("Unexpected order (-want +got):\n%s", diff)
		}
	})

	t.Run("ExistingIDReplacedInPlace", func(t *testing.T) {
		store.Upsert(ctx, Item{ID: "b", Title: "B2"})
		if diff := cmp.Diff([]string{"a", "b", "c"}, ids(store.All())); diff != "" {
			t.Errorf("Unexpected order (-want +got):\n%s", diff)
		}
		got, _ := store.Find("b")
		if got.Title != "B2" {
			t.Errorf("Expected replaced title 'B2', got '%s'", got.Title)
		}
	})

	t.Run("EveryMutationPersists", func(t *testing.T) {
		if p.saves != 4 {
			t.Errorf("Expected 4 saves, got %d", p.saves)
		}
		if diff := cmp.Diff(ids(store.All()), ids(p.items)); diff != "" {
			t.Errorf("Persisted snapshot differs (-store +persisted):\n%s", diff)
		}
	})

	t.Run("ReturnedItemsAreCopies", func(t *testing.T) {
		store.Upsert(ctx, Item{ID: "t", Title: "T", Tags: []string{"x"}})
		got, _ := store.Find("t")
		got.Tags[0] = "mutated"
		again, _ := store.Find("t")
		if again.Tags[0] != "x" {
			t.Errorf("Store state was mutated through a returned item")
		}
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, nil, []Item{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}, {ID: "c", Title: "C"}}, nil)

	if !store.Delete(ctx, "b") {
		t.Fatal("Expected Delete to report removal")
	}
	if _, ok := store.Find("b"); ok {
		t.Error("Expected 'b' to be gone")
	}
	if store.Delete(ctx, "b") {
		t.Error("Expected second Delete to report nothing removed")
	}

	// Index must stay consistent after removal from the middle.
	store.Upsert(ctx, Item{ID: "c", Title: "C2"})
	if diff := cmp.Diff([]string{"a", "c"}, ids(store.All())); diff != "" {
		t.Errorf("Unexpected order (-want +got):\n%s", diff)
	}
	got, _ := store.Find("c")
	if got.Title != "C2" {
		t.Errorf("Expected 'C2', got '%s'", got.Title)
	}
}

func TestPersistFailureIsNotPropagated(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{loadErr: storage.ErrNotFound, saveErr: errors.New("disk full")}
	store := NewStore(ctx, p, nil, nil)

	store.Upsert(ctx, Item{ID: "a", Title: "A"})
	if _, ok := store.Find("a"); !ok {
		t.Error("Expected in-memory state to be updated despite persist failure")
	}
	if p.saves != 1 {
		t.Errorf("Expected a save attempt, got %d", p.saves)
	}
}

func TestSetRating(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, nil, []Item{{ID: "a", Title: "A", Rating: 1}}, nil)

	if err := store.SetRating(ctx, "a", 5); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, _ := store.Find("a")
	if got.Rating != 5 {
		t.Errorf("Expected rating 5, got %d", got.Rating)
	}
	if err := store.SetRating(ctx, "a", 6); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("Expected ErrInvalidRating, got %v", err)
	}
	if err := store.SetRating(ctx, "zzz", 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSetImageURL(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, nil, []Item{{ID: "a", Title: "A", Rating: 2}}, nil)

	if err := store.SetImageURL(ctx, "a", "data:image/png;base64,AQ=="); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, _ := store.Find("a")
	if got.ImageURL != "data:image/png;base64,AQ==" || got.Rating != 2 {
		t.Errorf("Unexpected item after SetImageURL: %+v", got)
	}

	store.Delete(ctx, "a")
	if err := store.SetImageURL(ctx, "a", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Deleted item came back, store has %d items", store.Len())
	}
}

func TestSearch(t *testing.T) {
	store := NewStore(context.Background(), nil, []Item{
		{ID: "1", Title: "Spaghetti Carbonara", Tags: []string{"Pasta", "italian"}},
		{ID: "2", Title: "Beef Goulash", Tags: []string{"czech"}},
		{ID: "3", Title: "Pasta Salad", Tags: nil},
	}, nil)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"pasta", []string{"1", "3"}},
		{"ITALIAN", []string{"1"}},
		{"  goulash ", []string{"2"}},
		{"sushi", []string{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.query), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ids(store.Search(tt.query))); diff != "" {
				t.Errorf("Search mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIDsStayUniqueUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, nil, nil, nil)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("id-%d", rng.Intn(20))
		if rng.Intn(3) == 0 {
			store.Delete(ctx, id)
		} else {
			store.Upsert(ctx, Item{ID: id, Title: fmt.Sprintf("title %d", i)})
		}

		seen := make(map[string]bool)
		for _, it := range store.All() {
			if seen[it.ID] {
				t.Fatalf("Duplicate id %s after %d operations", it.ID, i+1)
			}
			seen[it.ID] = true
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, err := storage.NewFileKV(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	snap := storage.NewSnapshot[[]Item](kv, "recipe.items")

	store := NewStore(ctx, snap, Seed(KindRecipe), nil)
	store.Upsert(ctx, Item{ID: NewID(), Title: "New", Tags: []string{"b", "a"}, Rating: 2, SourceType: SourceAIImported})
	store.Delete(ctx, "2")

	reloaded := NewStore(ctx, snap, nil, nil)
	if diff := cmp.Diff(store.All(), reloaded.All()); diff != "" {
		t.Errorf("Reloaded collection differs (-before +after):\n%s", diff)
	}
}
