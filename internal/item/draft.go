package item

// Draft is a best-effort partial item produced by a generative collaborator.
// Any field may be missing.
type Draft struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	SubItems      []string `json:"subItems"`
	Steps         []string `json:"steps"`
	Tags          []string `json:"tags"`
	PrepMinutes   float64  `json:"prepTime"`
	CookMinutes   float64  `json:"cookTime"`
	Servings      float64  `json:"servings"`
	DistanceKm    float64  `json:"distanceKm"`
	DurationHours float64  `json:"durationHours"`
	Difficulty    string   `json:"difficulty"`
}

// IsEmpty reports whether the draft carries nothing usable.
func (d Draft) IsEmpty() bool {
	return d.Title == "" && d.Description == "" && len(d.SubItems) == 0 && len(d.Steps) == 0 && len(d.Tags) == 0
}

// ApplyTo merges the populated draft fields into base, the way an import
// fills a form: fields the draft leaves empty keep their current value.
// The result is marked with the given source.
func (d Draft) ApplyTo(base Item, source SourceType) Item {
	out := base.Clone()
	if d.Title != "" {
		out.Title = d.Title
	}
	if d.Description != "" {
		out.Description = d.Description
	}
	if len(d.SubItems) > 0 {
		out.SubItems = compact(d.SubItems)
	}
	if len(d.Steps) > 0 {
		out.Steps = compact(d.Steps)
	}
	if len(d.Tags) > 0 {
		out.Tags = compact(d.Tags)
	}
	if d.PrepMinutes > 0 {
		out.PrepMinutes = int(d.PrepMinutes)
	}
	if d.CookMinutes > 0 {
		out.CookMinutes = int(d.CookMinutes)
	}
	if d.Servings > 0 {
		out.Servings = int(d.Servings)
	}
	if d.DistanceKm > 0 {
		out.DistanceKm = d.DistanceKm
	}
	if d.DurationHours > 0 {
		out.DurationHours = d.DurationHours
	}
	if d.Difficulty != "" {
		out.Difficulty = d.Difficulty
	}
	out.SourceType = source
	return out
}
