package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-weekly-planner/internal/config"
	"ai-weekly-planner/internal/shared"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// SpeechClient calls the Gemini text-to-speech model over REST; the Go SDK
// has no audio response modality.
type SpeechClient struct {
	apiKey     string
	baseURL    string
	model      string
	voice      string
	httpClient *http.Client
}

// NewSpeechClient creates a new Gemini speech client.
func NewSpeechClient(cfg *config.Config) *SpeechClient {
	return &SpeechClient{
		apiKey:  cfg.GeminiAPIKey,
		baseURL: geminiBaseURL,
		model:   cfg.GeminiSpeechModel,
		voice:   cfg.SpeechVoice,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type speechRequest struct {
	Contents         []speechContent `json:"contents"`
	GenerationConfig speechGenConfig `json:"generationConfig"`
}

type speechContent struct {
	Parts []speechPart `json:"parts"`
}

type speechPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type speechGenConfig struct {
	ResponseModalities []string     `json:"responseModalities"`
	SpeechConfig       speechConfig `json:"speechConfig"`
}

type speechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type speechResponse struct {
	Candidates []struct {
		Content speechContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// GenerateSpeech reads text aloud and returns the decoded PCM audio.
func (c *SpeechClient) GenerateSpeech(ctx context.Context, text string) (SpeechResponse, error) {
	reqBody := speechRequest{
		Contents: []speechContent{{Parts: []speechPart{{Text: text}}}},
		GenerationConfig: speechGenConfig{
			ResponseModalities: []string{"AUDIO"},
		},
	}
	reqBody.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = c.voice

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return SpeechResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return SpeechResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SpeechResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return SpeechResponse{}, fmt.Errorf("gemini speech api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var sr speechResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return SpeechResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	usage := shared.TokenUsage{
		PromptTokens:     sr.UsageMetadata.PromptTokenCount,
		CompletionTokens: sr.UsageMetadata.CandidatesTokenCount,
		TotalTokens:      sr.UsageMetadata.TotalTokenCount,
		Model:            c.model,
	}
	for _, cand := range sr.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			audio, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return SpeechResponse{Usage: usage}, fmt.Errorf("failed to decode audio: %w", err)
			}
			return SpeechResponse{Audio: audio, MIMEType: part.InlineData.MIMEType, Usage: usage}, nil
		}
	}
	return SpeechResponse{Usage: usage}, fmt.Errorf("no audio generated")
}
