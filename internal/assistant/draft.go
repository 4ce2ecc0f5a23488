package assistant

import "ai-weekly-planner/internal/item"

// draftWire accepts the domain-specific list names a model tends to use
// alongside the generic ones.
type draftWire struct {
	item.Draft
	Ingredients   []string `json:"ingredients"`
	Instructions  []string `json:"instructions"`
	Waypoints     []string `json:"waypoints"`
	BriefingSteps []string `json:"briefingSteps"`
}

func (w draftWire) toDraft() item.Draft {
	d := w.Draft
	if len(d.SubItems) == 0 {
		d.SubItems = firstNonEmpty(w.Ingredients, w.Waypoints)
	}
	if len(d.Steps) == 0 {
		d.Steps = firstNonEmpty(w.Instructions, w.BriefingSteps)
	}
	return d
}

func firstNonEmpty(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}
