// Package shopping holds the categorized list the aggregator produces: a
// shopping list for recipes or a gear list for adventures.
package shopping

import (
	"fmt"
	"strings"
)

// Entry is one line of the list.
type Entry struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// Category groups entries, e.g. "Vegetables" or "Protective gear".
type Category struct {
	Name  string  `json:"category"`
	Items []Entry `json:"items"`
}

// List is the ordered set of categories.
type List []Category

// Count returns the total number of entries across categories.
func (l List) Count() int {
	n := 0
	for _, c := range l {
		n += len(c.Items)
	}
	return n
}

// Clean drops blank entries and categories left without entries.
func (l List) Clean() List {
	out := make(List, 0, len(l))
	for _, c := range l {
		entries := make([]Entry, 0, len(c.Items))
		for _, e := range c.Items {
			e.Name = strings.TrimSpace(e.Name)
			e.Quantity = strings.TrimSpace(e.Quantity)
			if e.Name != "" {
				entries = append(entries, e)
			}
		}
		if len(entries) == 0 {
			continue
		}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = "Other"
		}
		out = append(out, Category{Name: name, Items: entries})
	}
	return out
}

// Clone returns a deep copy.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, c := range l {
		out[i] = Category{Name: c.Name, Items: append([]Entry(nil), c.Items...)}
	}
	return out
}

// Format renders the list as plain text for the CLI and chat.
func Format(l List) string {
	if len(l) == 0 {
		return "Nothing to buy."
	}
	var sb strings.Builder
	for i, c := range l {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s\n", strings.ToUpper(c.Name))
		for _, e := range c.Items {
			if e.Quantity != "" {
				fmt.Fprintf(&sb, "  - %s (%s)\n", e.Name, e.Quantity)
			} else {
				fmt.Fprintf(&sb, "  - %s\n", e.Name)
			}
		}
	}
	return sb.String()
}
