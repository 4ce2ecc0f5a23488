// Package item holds the planable records (recipes or adventures) and the
// store that owns their canonical collection.
package item

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Kind selects which domain the planner is running for.
type Kind string

const (
	KindRecipe    Kind = "recipe"
	KindAdventure Kind = "adventure"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindRecipe, KindAdventure:
		return k, nil
	default:
		return "", fmt.Errorf("unknown item kind %q", s)
	}
}

// SubItemsLabel is the domain name of Item.SubItems.
func (k Kind) SubItemsLabel() string {
	if k == KindAdventure {
		return "waypoints"
	}
	return "ingredients"
}

// StepsLabel is the domain name of Item.Steps.
func (k Kind) StepsLabel() string {
	if k == KindAdventure {
		return "briefing steps"
	}
	return "instructions"
}

// SourceType records where an item came from. No behavior depends on it.
type SourceType string

const (
	SourceManual      SourceType = "manual"
	SourceAIImported  SourceType = "ai-imported"
	SourceAIGenerated SourceType = "ai-generated"
)

const MaxRating = 5

var (
	ErrEmptyID       = errors.New("item id is empty")
	ErrEmptyTitle    = errors.New("item title is empty")
	ErrInvalidRating = fmt.Errorf("item rating must be between 0 and %d", MaxRating)
)

// Item is a recipe or an adventure. SubItems are ingredients or waypoints,
// Steps are instructions or briefing steps.
type Item struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	SubItems    []string   `json:"subItems"`
	Steps       []string   `json:"steps"`
	Rating      int        `json:"rating"`
	SourceType  SourceType `json:"sourceType"`
	ImageURL    string     `json:"imageUrl,omitempty"`

	// Recipe extras.
	PrepMinutes int `json:"prepTime,omitempty"`
	CookMinutes int `json:"cookTime,omitempty"`
	Servings    int `json:"servings,omitempty"`

	// Adventure extras.
	DistanceKm    float64 `json:"distanceKm,omitempty"`
	DurationHours float64 `json:"durationHours,omitempty"`
	Difficulty    string  `json:"difficulty,omitempty"`
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// Validate reports the first problem that would make the item unsafe to store.
func (it Item) Validate() error {
	if strings.TrimSpace(it.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(it.Title) == "" {
		return ErrEmptyTitle
	}
	if it.Rating < 0 || it.Rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// Clone returns a deep copy so callers cannot alias the store's slices.
func (it Item) Clone() Item {
	it.Tags = slices.Clone(it.Tags)
	it.SubItems = slices.Clone(it.SubItems)
	it.Steps = slices.Clone(it.Steps)
	return it
}

// Normalize trims blank entries from the list fields, like a form submit does.
func (it Item) Normalize() Item {
	it.Title = strings.TrimSpace(it.Title)
	it.Tags = compact(it.Tags)
	it.SubItems = compact(it.SubItems)
	it.Steps = compact(it.Steps)
	return it
}

// Matches reports whether the lowercase query is a substring of the title or of any tag.
func (it Item) Matches(query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(it.Title), query) {
		return true
	}
	for _, tag := range it.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
