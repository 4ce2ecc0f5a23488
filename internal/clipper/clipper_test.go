package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-weekly-planner/internal/item"
)

func TestFetch(t *testing.T) {
	// 1. Setup a test server serving dirty HTML
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `
		<html>
			<head><script>alert('bad');</script></head>
			<body>
				<h1>Tasty Recipe</h1>
				<div class="ads">Buy stuff!</div>
				<p>Mix flour and water.</p>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`
		w.Write([]byte(html))
	}))
	defer ts.Close()

	cleanText, err := NewClipper().Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(cleanText, "alert('bad')") {
		t.Error("Failed to remove <script> tags")
	}
	if strings.Contains(cleanText, "Buy stuff!") {
		t.Error("Failed to remove .ads class")
	}
	if strings.Contains(cleanText, "Copyright 2024") {
		t.Error("Failed to remove <footer>")
	}
	if !strings.Contains(cleanText, "Tasty Recipe") {
		t.Error("Expected to find 'Tasty Recipe'")
	}
	if !strings.Contains(cleanText, "Mix flour and water.") {
		t.Error("Expected to find body content")
	}
}

func TestFetchErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	if _, err := NewClipper().Fetch(context.Background(), ts.URL); err == nil {
		t.Fatal("Expected an error for a 404 page")
	}
}

func TestTextFromHTML(t *testing.T) {
	text, err := TextFromHTML("<h2>Ingredients</h2><ul><li>Flour</li><li>Milk</li></ul>")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if text != "Ingredients\nFlour\nMilk" {
		t.Errorf("Unexpected text %q", text)
	}
}

func TestFormatHTML(t *testing.T) {
	recipe := item.Item{
		Title:       "Pancakes",
		SubItems:    []string{"Flour", "Milk & eggs"},
		Steps:       []string{"Mix", "Fry"},
		PrepMinutes: 10,
		Servings:    2,
	}

	html := FormatHTML(item.KindRecipe, recipe, "http://test.com")

	expectedSubstrings := []string{
		"Imported from: <a href=\"http://test.com\">http://test.com</a>",
		"<h2>Ingredients</h2>",
		"<li>Flour</li>",
		"<li>Milk &amp; eggs</li>",
		"<li>Mix</li>",
		"<strong>Prep Time:</strong> 10 min",
	}

	for _, sub := range expectedSubstrings {
		if !strings.Contains(html, sub) {
			t.Errorf("Expected HTML to contain '%s'", sub)
		}
	}

	ride := item.Item{Title: "Loop", SubItems: []string{"Kvilda"}, DistanceKm: 140, Difficulty: "easy"}
	html = FormatHTML(item.KindAdventure, ride, "")
	for _, sub := range []string{"<h2>Waypoints</h2>", "<strong>Distance:</strong> 140 km"} {
		if !strings.Contains(html, sub) {
			t.Errorf("Expected HTML to contain '%s'", sub)
		}
	}
	if strings.Contains(html, "Imported from") {
		t.Error("Expected no source line without a URL")
	}
}
