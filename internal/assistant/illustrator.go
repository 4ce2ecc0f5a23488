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

// Illustrator generates a cover picture for an item. Purely cosmetic.
type Illustrator struct {
	kind  item.Kind
	image llm.ImageGenerator
}

func NewIllustrator(kind item.Kind, image llm.ImageGenerator) *Illustrator {
	return &Illustrator{kind: kind, image: image}
}

func (il *Illustrator) prompt(title string) string {
	if il.kind == item.KindAdventure {
		return fmt.Sprintf("Epic motorcycle touring photography of: %s. Scenic road, sunset, adventure style, high quality, 16:9.", title)
	}
	return fmt.Sprintf("High quality food photography of: %s. Gourmet plating, appetizing, natural lighting, 4:3.", title)
}

// Illustrate returns an image for title.
func (il *Illustrator) Illustrate(ctx context.Context, title string) shared.Result[llm.Image] {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.Err[llm.Image](ErrEmptyInput)
	}

	start := time.Now()
	resp, err := il.image.GenerateImage(ctx, il.prompt(title))
	meta := shared.AgentMeta{AgentName: "Illustrator", Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return shared.Err[llm.Image](fmt.Errorf("failed to generate image: %w", err)).WithMeta(meta)
	}
	if len(resp.Image.Data) == 0 {
		return shared.Err[llm.Image](fmt.Errorf("%w: no image", ErrMalformedResponse)).WithMeta(meta)
	}
	return shared.Ok(resp.Image).WithMeta(meta)
}
