package assistant

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/llm"
	"ai-weekly-planner/internal/shared"
)

//go:embed extractor_prompt.md
var extractorPrompt string

// maxSourceChars bounds the text sent for extraction.
const maxSourceChars = 20000

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

type extractorPromptData struct {
	Kind          item.Kind
	SubItemsLabel string
	StepsLabel    string
	Text          string
}

// Extractor turns free text into a partial item.
type Extractor struct {
	kind    item.Kind
	textGen llm.TextGenerator
}

func NewExtractor(kind item.Kind, textGen llm.TextGenerator) *Extractor {
	return &Extractor{kind: kind, textGen: textGen}
}

// Extract asks the model for a best-effort draft of the item described by text.
func (e *Extractor) Extract(ctx context.Context, text string) shared.Result[item.Draft] {
	text = strings.TrimSpace(text)
	if text == "" {
		return shared.Err[item.Draft](ErrEmptyInput)
	}
	text = truncate(text, maxSourceChars)

	start := time.Now()
	prompt, err := render("extractor", extractorPrompt, extractorPromptData{
		Kind:          e.kind,
		SubItemsLabel: e.kind.SubItemsLabel(),
		StepsLabel:    e.kind.StepsLabel(),
		Text:          text,
	})
	if err != nil {
		return shared.Err[item.Draft](err)
	}

	resp, err := e.textGen.GenerateContent(ctx, prompt)
	meta := shared.AgentMeta{AgentName: "Extractor", Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return shared.Err[item.Draft](fmt.Errorf("failed to get LLM response: %w", err)).WithMeta(meta)
	}

	var wire draftWire
	if err := decode(resp.Content, &wire); err != nil {
		return shared.Err[item.Draft](err).WithMeta(meta)
	}
	draft := wire.toDraft()
	if draft.IsEmpty() {
		return shared.Err[item.Draft](fmt.Errorf("%w: no %s found in text", ErrMalformedResponse, e.kind)).WithMeta(meta)
	}
	return shared.Ok(draft).WithMeta(meta)
}
