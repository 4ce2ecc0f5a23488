package assistant

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/llm"
	"ai-weekly-planner/internal/shared"
)

//go:embed suggester_prompt.md
var suggesterPrompt string

// itemRef is all the model gets to see of an existing item.
type itemRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type suggesterPromptData struct {
	Kind          item.Kind
	SubItemsLabel string
	StepsLabel    string
	Context       string
	Existing      string
}

// Suggestion is the model's answer to a free-text request. Matches and a
// new item may both be present.
type Suggestion struct {
	MatchedIDs []string
	NewItem    *item.Draft
}

// IsEmpty reports whether the model came back with nothing usable.
func (s Suggestion) IsEmpty() bool {
	return len(s.MatchedIDs) == 0 && s.NewItem == nil
}

type rawSuggestion struct {
	MatchedIDs []string   `json:"matchedIds"`
	NewItem    *draftWire `json:"newItem"`
}

// Suggester proposes existing or new items for a free-text context, such as
// the ingredients in the fridge or the weather for the weekend.
type Suggester struct {
	kind    item.Kind
	textGen llm.TextGenerator
}

func NewSuggester(kind item.Kind, textGen llm.TextGenerator) *Suggester {
	return &Suggester{kind: kind, textGen: textGen}
}

// Suggest sends the request and the {id, title} pairs of existing items.
// Matched ids the model made up are dropped.
func (s *Suggester) Suggest(ctx context.Context, request string, existing []item.Item) shared.Result[Suggestion] {
	request = strings.TrimSpace(request)
	if request == "" {
		return shared.Err[Suggestion](ErrEmptyInput)
	}

	refs := make([]itemRef, len(existing))
	known := make(map[string]struct{}, len(existing))
	for i, it := range existing {
		refs[i] = itemRef{ID: it.ID, Title: it.Title}
		known[it.ID] = struct{}{}
	}
	refsJSON, err := json.Marshal(refs)
	if err != nil {
		return shared.Err[Suggestion](err)
	}

	start := time.Now()
	prompt, err := render("suggester", suggesterPrompt, suggesterPromptData{
		Kind:          s.kind,
		SubItemsLabel: s.kind.SubItemsLabel(),
		StepsLabel:    s.kind.StepsLabel(),
		Context:       request,
		Existing:      string(refsJSON),
	})
	if err != nil {
		return shared.Err[Suggestion](err)
	}

	resp, err := s.textGen.GenerateContent(ctx, prompt)
	meta := shared.AgentMeta{AgentName: "Suggester", Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return shared.Err[Suggestion](fmt.Errorf("failed to get LLM response: %w", err)).WithMeta(meta)
	}

	var raw rawSuggestion
	if err := decode(resp.Content, &raw); err != nil {
		return shared.Err[Suggestion](err).WithMeta(meta)
	}

	var out Suggestion
	seen := make(map[string]struct{}, len(raw.MatchedIDs))
	for _, id := range raw.MatchedIDs {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.MatchedIDs = append(out.MatchedIDs, id)
	}
	if raw.NewItem != nil {
		if d := raw.NewItem.toDraft(); !d.IsEmpty() {
			out.NewItem = &d
		}
	}
	return shared.Ok(out).WithMeta(meta)
}
