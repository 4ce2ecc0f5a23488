// Package schedule maps (day, slot) pairs to item ids and resolves them
// against the item collection.
package schedule

import (
	"fmt"
	"strings"

	"ai-weekly-planner/internal/item"
)

type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Week is the canonical day order used for display and aggregation.
var Week = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDay accepts a full day name or its three-letter prefix, in any case.
func ParseDay(s string) (Day, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range Week {
		if s == string(d) || (len(s) == 3 && strings.HasPrefix(string(d), s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day %q", s)
}

func (d Day) valid() bool {
	for _, w := range Week {
		if d == w {
			return true
		}
	}
	return false
}

// Title returns the capitalized day name.
func (d Day) Title() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

type Slot string

const (
	Lunch  Slot = "lunch"
	Dinner Slot = "dinner"
	Short  Slot = "short"
	Long   Slot = "long"
)

// Layout is the ordered pair of slot names a day has. Recipes plan lunch and
// dinner, adventures plan a short morning trip and the long main ride.
type Layout [2]Slot

var (
	RecipeLayout    = Layout{Lunch, Dinner}
	AdventureLayout = Layout{Short, Long}
)

// LayoutFor returns the slot layout of the given item kind.
func LayoutFor(kind item.Kind) Layout {
	if kind == item.KindAdventure {
		return AdventureLayout
	}
	return RecipeLayout
}

// Parse validates a slot name against the layout.
func (l Layout) Parse(s string) (Slot, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, slot := range l {
		if s == string(slot) {
			return slot, nil
		}
	}
	return "", fmt.Errorf("unknown slot %q, expected %s or %s", s, l[0], l[1])
}

// Has reports whether the slot belongs to the layout.
func (l Layout) Has(slot Slot) bool {
	return slot == l[0] || slot == l[1]
}
