package item

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want error
	}{
		{"Valid", Item{ID: "1", Title: "Soup", Rating: 3}, nil},
		{"EmptyID", Item{Title: "Soup"}, ErrEmptyID},
		{"BlankTitle", Item{ID: "1", Title: "   "}, ErrEmptyTitle},
		{"RatingTooHigh", Item{ID: "1", Title: "Soup", Rating: 6}, ErrInvalidRating},
		{"NegativeRating", Item{ID: "1", Title: "Soup", Rating: -1}, ErrInvalidRating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.item.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if id == "" || seen[id] {
			t.Fatalf("NewID returned empty or repeated id %q", id)
		}
		seen[id] = true
	}
}

func TestNormalize(t *testing.T) {
	got := Item{Title: "  Soup ", SubItems: []string{"water", " ", ""}, Steps: []string{" boil "}}.Normalize()
	if got.Title != "Soup" {
		t.Errorf("Expected trimmed title, got %q", got.Title)
	}
	if diff := cmp.Diff([]string{"water"}, got.SubItems); diff != "" {
		t.Errorf("SubItems mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"boil"}, got.Steps); diff != "" {
		t.Errorf("Steps mismatch (-want +got):\n%s", diff)
	}
}

func TestDraftApplyTo(t *testing.T) {
	base := Item{ID: "keep", Title: "Old", Description: "old desc", Rating: 4, Servings: 2, SourceType: SourceManual}
	draft := Draft{Title: "New", SubItems: []string{"a", " "}, Servings: 6}

	got := draft.ApplyTo(base, SourceAIImported)

	want := Item{
		ID:          "keep",
		Title:       "New",
		Description: "old desc",
		SubItems:    []string{"a"},
		Rating:      4,
		Servings:    6,
		SourceType:  SourceAIImported,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ApplyTo mismatch (-want +got):\n%s", diff)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("Adventure"); err != nil || k != KindAdventure {
		t.Errorf("Expected adventure, got %q, %v", k, err)
	}
	if _, err := ParseKind("boat"); err == nil {
		t.Error("Expected an error for unknown kind")
	}
}
