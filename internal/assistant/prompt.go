// Package assistant wraps the generative model behind the collaborator
// operations the planner uses: extraction, suggestion, summarization,
// narration and illustration. Every operation reports its outcome as a
// shared.Result; model trouble never escapes as a panic.
package assistant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

var (
	// ErrMalformedResponse marks model output that could not be decoded.
	ErrMalformedResponse = errors.New("malformed model response")
	ErrEmptyInput        = errors.New("nothing to send to the model")
)

func render(name, prompt string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(prompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// decode unmarshals model output, tolerating a markdown code fence around it.
func decode(content string, v any) error {
	raw := strings.TrimSpace(content)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	}
	if raw == "" {
		return fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
