package llm

import (
	"context"
	"fmt"
	"strings"

	"ai-weekly-planner/internal/config"
	"ai-weekly-planner/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient is a client for the Google Gemini API. Text requests ask for
// JSON output; image requests read the first inline blob of the answer.
type GeminiClient struct {
	client     *genai.Client
	textModel  *genai.GenerativeModel
	imageModel *genai.GenerativeModel
	textName   string
	imageName  string
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	text := client.GenerativeModel(cfg.GeminiTextModel)
	text.ResponseMIMEType = "application/json"
	text.SetTemperature(0.2)

	return &GeminiClient{
		client:     client,
		textModel:  text,
		imageModel: client.GenerativeModel(cfg.GeminiImageModel),
		textName:   cfg.GeminiTextModel,
		imageName:  cfg.GeminiImageModel,
	}, nil
}

// GenerateContent sends a prompt to the text model and returns the generated text.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := c.textModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	usage := usageOf(resp, c.textName)
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ContentResponse{Usage: usage}, fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return ContentResponse{Usage: usage}, fmt.Errorf("generated content is not text")
	}

	return ContentResponse{Content: sb.String(), Usage: usage}, nil
}

// GenerateImage asks the image model for a picture.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) (ImageResponse, error) {
	resp, err := c.imageModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return ImageResponse{}, fmt.Errorf("failed to generate image: %w", err)
	}

	usage := usageOf(resp, c.imageName)
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return ImageResponse{
					Image: Image{MIMEType: blob.MIMEType, Data: blob.Data},
					Usage: usage,
				}, nil
			}
		}
	}
	return ImageResponse{Usage: usage}, fmt.Errorf("no image in response")
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func usageOf(resp *genai.GenerateContentResponse, model string) shared.TokenUsage {
	usage := shared.TokenUsage{Model: model}
	if resp == nil || resp.UsageMetadata == nil {
		return usage
	}
	usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
	usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	return usage
}
