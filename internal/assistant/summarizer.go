package assistant

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/llm"
	"ai-weekly-planner/internal/shared"
	"ai-weekly-planner/internal/shopping"
)

//go:embed summarizer_prompt.md
var summarizerPrompt string

type summaryInput struct {
	Title    string   `json:"title"`
	SubItems []string `json:"subItems"`
	Servings int      `json:"servings,omitempty"`
}

type summarizerPromptData struct {
	Kind          item.Kind
	SubItemsLabel string
	Items         string
}

// Summarizer builds the categorized shopping list (recipes) or gear list
// (adventures) for a set of items.
type Summarizer struct {
	kind    item.Kind
	textGen llm.TextGenerator
}

func NewSummarizer(kind item.Kind, textGen llm.TextGenerator) *Summarizer {
	return &Summarizer{kind: kind, textGen: textGen}
}

// Summarize asks the model to merge the sub-items into (name, quantity)
// pairs grouped by category.
func (s *Summarizer) Summarize(ctx context.Context, items []item.Item) (shopping.List, shared.AgentMeta, error) {
	meta := shared.AgentMeta{AgentName: "Summarizer"}
	if len(items) == 0 {
		return shopping.List{}, meta, nil
	}

	input := make([]summaryInput, len(items))
	for i, it := range items {
		input[i] = summaryInput{Title: it.Title, SubItems: it.SubItems, Servings: it.Servings}
	}
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, meta, err
	}

	start := time.Now()
	prompt, err := render("summarizer", summarizerPrompt, summarizerPromptData{
		Kind:          s.kind,
		SubItemsLabel: s.kind.SubItemsLabel(),
		Items:         string(inputJSON),
	})
	if err != nil {
		return nil, meta, err
	}

	resp, err := s.textGen.GenerateContent(ctx, prompt)
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to get LLM response: %w", err)
	}

	list, err := decodeList(resp.Content)
	if err != nil {
		return nil, meta, err
	}
	return list.Clean(), meta, nil
}

// decodeList accepts either a bare array of categories or an object that
// wraps it, since JSON-object response modes cannot return arrays.
func decodeList(content string) (shopping.List, error) {
	var list shopping.List
	if err := decode(content, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Categories shopping.List `json:"categories"`
	}
	if err := decode(content, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Categories == nil {
		return nil, fmt.Errorf("%w: no categories in response", ErrMalformedResponse)
	}
	return wrapped.Categories, nil
}
