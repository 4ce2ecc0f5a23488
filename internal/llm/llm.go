package llm

import (
	"context"
	"fmt"

	"ai-weekly-planner/internal/config"
	"ai-weekly-planner/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// SpeechResponse holds raw audio. Gemini returns 16-bit mono PCM at 24kHz.
type SpeechResponse struct {
	Audio    []byte
	MIMEType string
	Usage    shared.TokenUsage
}

// SpeechGenerator turns text into spoken audio.
type SpeechGenerator interface {
	GenerateSpeech(ctx context.Context, text string) (SpeechResponse, error)
}

// Image is a generated picture.
type Image struct {
	MIMEType string
	Data     []byte
}

// ImageResponse holds the generated image and usage.
type ImageResponse struct {
	Image Image
	Usage shared.TokenUsage
}

// ImageGenerator produces an image from a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (ImageResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// Clients bundles the generators the application needs. Speech and Image
// are nil when no Gemini key is configured.
type Clients struct {
	Text   TextGenerator
	Speech SpeechGenerator
	Image  ImageGenerator

	closers []Closer
}

// Close releases every underlying client.
func (c *Clients) Close() error {
	var firstErr error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewClients builds the generators selected by cfg. Text goes to Gemini or
// Groq, speech and images always go to Gemini and are left out without its
// key.
func NewClients(ctx context.Context, cfg *config.Config) (*Clients, error) {
	if err := cfg.RequireText(); err != nil {
		return nil, err
	}
	c := &Clients{}

	if cfg.RequireMedia() == nil {
		gemini, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.Text = gemini
		c.Speech = NewSpeechClient(cfg)
		c.Image = gemini
		c.closers = append(c.closers, gemini)
	}

	switch cfg.LLMProvider {
	case "", "gemini":
	case "groq":
		c.Text = NewGroqClient(cfg)
	default:
		_ = c.Close()
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
	return c, nil
}
