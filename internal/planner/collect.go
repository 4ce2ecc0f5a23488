package planner

import (
	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/schedule"
)

// CollectScheduledItems returns the distinct items referenced by the
// schedule, in week order then slot order, first occurrence wins. Empty and
// dangling slots are skipped.
func CollectScheduledItems(s *schedule.Schedule, lookup schedule.Lookup) []item.Item {
	entries := s.Resolve(lookup)
	seen := make(map[string]struct{}, len(entries))
	out := make([]item.Item, 0, len(entries))
	for _, e := range entries {
		if e.Item == nil {
			continue
		}
		if _, dup := seen[e.Item.ID]; dup {
			continue
		}
		seen[e.Item.ID] = struct{}{}
		out = append(out, *e.Item)
	}
	return out
}
