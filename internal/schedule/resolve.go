package schedule

import "ai-weekly-planner/internal/item"

// Lookup finds items by id. *item.Store satisfies it.
type Lookup interface {
	Find(id string) (item.Item, bool)
}

// Entry is one resolved slot. Item is nil when the slot is empty or points
// at an item that no longer exists.
type Entry struct {
	Day  Day
	Slot Slot
	Item *item.Item
}

// ResolveSlot returns the item a slot refers to. Empty slots and dangling
// ids both resolve to (zero, false); this is the only place that decision
// is made.
func ResolveSlot(plan Plan, day Day, slot Slot, lookup Lookup) (item.Item, bool) {
	id := plan[day][slot]
	if id == "" {
		return item.Item{}, false
	}
	return lookup.Find(id)
}

// Resolve returns every slot of the week in canonical order, day by day and
// slot by slot within the layout.
func Resolve(plan Plan, layout Layout, lookup Lookup) []Entry {
	out := make([]Entry, 0, len(Week)*len(layout))
	for _, day := range Week {
		for _, slot := range layout {
			e := Entry{Day: day, Slot: slot}
			if it, ok := ResolveSlot(plan, day, slot, lookup); ok {
				e.Item = &it
			}
			out = append(out, e)
		}
	}
	return out
}

// ResolveSlot resolves a slot of the live schedule.
func (s *Schedule) ResolveSlot(day Day, slot Slot, lookup Lookup) (item.Item, bool) {
	return ResolveSlot(s.Snapshot(), day, slot, lookup)
}

// Resolve resolves the whole live schedule.
func (s *Schedule) Resolve(lookup Lookup) []Entry {
	return Resolve(s.Snapshot(), s.layout, lookup)
}
