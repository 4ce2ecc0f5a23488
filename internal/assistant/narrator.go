package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/llm"
	"ai-weekly-planner/internal/shared"
)

// Narrator reads a step aloud.
type Narrator struct {
	kind   item.Kind
	speech llm.SpeechGenerator
}

func NewNarrator(kind item.Kind, speech llm.SpeechGenerator) *Narrator {
	return &Narrator{kind: kind, speech: speech}
}

// Narrate returns the raw audio for text. Empty audio counts as a failure.
func (n *Narrator) Narrate(ctx context.Context, text string) shared.Result[[]byte] {
	text = strings.TrimSpace(text)
	if text == "" {
		return shared.Err[[]byte](ErrEmptyInput)
	}

	lead := "Cooking step: "
	if n.kind == item.KindAdventure {
		lead = "Rider briefing: "
	}

	start := time.Now()
	resp, err := n.speech.GenerateSpeech(ctx, lead+text)
	meta := shared.AgentMeta{AgentName: "Narrator", Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return shared.Err[[]byte](fmt.Errorf("failed to generate speech: %w", err)).WithMeta(meta)
	}
	if len(resp.Audio) == 0 {
		return shared.Err[[]byte](fmt.Errorf("%w: no audio", ErrMalformedResponse)).WithMeta(meta)
	}
	return shared.Ok(resp.Audio).WithMeta(meta)
}
