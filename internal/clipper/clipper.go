// Package clipper fetches web pages and turns them into plain text for the
// extractor, and renders items back into HTML for publishing.
package clipper

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"ai-weekly-planner/internal/item"

	"github.com/PuerkitoBio/goquery"
)

// maxPageBytes caps how much of a page is read.
const maxPageBytes = 2 << 20

var blankRuns = regexp.MustCompile(`\s*\n\s*`)

// Clipper handles fetching and cleaning pages from URLs.
type Clipper struct {
	httpClient *http.Client
}

// NewClipper creates a new Clipper instance.
func NewClipper() *Clipper {
	return &Clipper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch downloads the page and returns its readable text.
func (c *Clipper) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ai-weekly-planner/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	return textFrom(io.LimitReader(resp.Body, maxPageBytes))
}

// TextFromHTML returns the readable text of an HTML fragment, such as a
// Ghost post body.
func TextFromHTML(fragment string) (string, error) {
	return textFrom(strings.NewReader(fragment))
}

func textFrom(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, noscript, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	// Keep one line per block element.
	doc.Find("p, li, h1, h2, h3, h4, br, tr").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	text := doc.Find("body").Text()
	return strings.TrimSpace(blankRuns.ReplaceAllString(text, "\n")), nil
}

// FormatHTML renders an item as a post body.
func FormatHTML(kind item.Kind, it item.Item, sourceURL string) string {
	var sb strings.Builder
	if sourceURL != "" {
		u := html.EscapeString(sourceURL)
		sb.WriteString(fmt.Sprintf("<p><i>Imported from: <a href=\"%s\">%s</a></i></p>", u, u))
	}
	if it.Description != "" {
		sb.WriteString(fmt.Sprintf("<p>%s</p>", html.EscapeString(it.Description)))
	}

	sb.WriteString(fmt.Sprintf("<h2>%s</h2><ul>", heading(kind.SubItemsLabel())))
	for _, s := range it.SubItems {
		sb.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(s)))
	}
	sb.WriteString("</ul>")

	sb.WriteString(fmt.Sprintf("<h2>%s</h2><ol>", heading(kind.StepsLabel())))
	for _, step := range it.Steps {
		sb.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(step)))
	}
	sb.WriteString("</ol>")

	sb.WriteString("<hr>")
	if kind == item.KindAdventure {
		sb.WriteString(fmt.Sprintf("<p><strong>Distance:</strong> %g km | <strong>Duration:</strong> %g h | <strong>Difficulty:</strong> %s</p>",
			it.DistanceKm, it.DurationHours, html.EscapeString(it.Difficulty)))
	} else {
		sb.WriteString(fmt.Sprintf("<p><strong>Prep Time:</strong> %d min | <strong>Cook Time:</strong> %d min | <strong>Servings:</strong> %d</p>",
			it.PrepMinutes, it.CookMinutes, it.Servings))
	}
	if len(it.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("<p><em>%s</em></p>", html.EscapeString(strings.Join(it.Tags, ", "))))
	}

	return sb.String()
}

func heading(label string) string {
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
