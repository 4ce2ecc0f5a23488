package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/llm"
	"ai-weekly-planner/internal/shared"
	"ai-weekly-planner/internal/shopping"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type MockTextGenerator struct {
	content string
	err     error
	prompts []string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.prompts = append(m.prompts, prompt)
	return llm.ContentResponse{
		Content: m.content,
		Usage:   shared.TokenUsage{TotalTokens: 100, Model: "mock"},
	}, m.err
}

type MockSpeechGenerator struct {
	audio []byte
	err   error
	text  string
}

func (m *MockSpeechGenerator) GenerateSpeech(ctx context.Context, text string) (llm.SpeechResponse, error) {
	m.text = text
	return llm.SpeechResponse{Audio: m.audio}, m.err
}

type MockImageGenerator struct {
	image  llm.Image
	err    error
	prompt string
}

func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (llm.ImageResponse, error) {
	m.prompt = prompt
	return llm.ImageResponse{Image: m.image}, m.err
}

func TestDecode(t *testing.T) {
	var v map[string]int
	require.NoError(t, decode("```json\n{\"a\": 1}\n```", &v))
	require.Equal(t, 1, v["a"])

	require.ErrorIs(t, decode("", &v), ErrMalformedResponse)
	require.ErrorIs(t, decode("not json", &v), ErrMalformedResponse)
}

func TestExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("RecipeWithDomainFieldNames", func(t *testing.T) {
		gen := &MockTextGenerator{content: `{
			"title": "Svickova",
			"ingredients": ["beef", "cream"],
			"instructions": ["Roast.", "Blend."],
			"tags": ["czech"],
			"servings": 4
		}`}
		res := NewExtractor(item.KindRecipe, gen).Extract(ctx, "some recipe text")

		draft, err := res.Unwrap()
		require.NoError(t, err)
		want := item.Draft{
			Title:    "Svickova",
			SubItems: []string{"beef", "cream"},
			Steps:    []string{"Roast.", "Blend."},
			Tags:     []string{"czech"},
			Servings: 4,
		}
		if diff := cmp.Diff(want, draft); diff != "" {
			t.Errorf("Draft mismatch (-want +got):\n%s", diff)
		}
		require.Equal(t, "Extractor", res.Meta.AgentName)
		require.Equal(t, 100, res.Meta.Usage.TotalTokens)
		require.Contains(t, gen.prompts[0], "some recipe text")
		require.Contains(t, gen.prompts[0], "ingredients")
	})

	t.Run("AdventurePromptUsesWaypoints", func(t *testing.T) {
		gen := &MockTextGenerator{content: `{"title": "Loop", "waypoints": ["A", "B"], "difficulty": "easy"}`}
		draft, err := NewExtractor(item.KindAdventure, gen).Extract(ctx, "ride text").Unwrap()
		require.NoError(t, err)
		require.Equal(t, []string{"A", "B"}, draft.SubItems)
		require.Contains(t, gen.prompts[0], "waypoints")
		require.Contains(t, gen.prompts[0], "distanceKm")
	})

	t.Run("EmptyTextSkipsModel", func(t *testing.T) {
		gen := &MockTextGenerator{}
		res := NewExtractor(item.KindRecipe, gen).Extract(ctx, "   ")
		require.ErrorIs(t, res.Failure(), ErrEmptyInput)
		require.Empty(t, gen.prompts)
	})

	t.Run("MalformedOutput", func(t *testing.T) {
		gen := &MockTextGenerator{content: "Sorry, I cannot help"}
		res := NewExtractor(item.KindRecipe, gen).Extract(ctx, "text")
		require.ErrorIs(t, res.Failure(), ErrMalformedResponse)
		require.Equal(t, 100, res.Meta.Usage.TotalTokens)
	})

	t.Run("EmptyDraftIsFailure", func(t *testing.T) {
		gen := &MockTextGenerator{content: `{}`}
		res := NewExtractor(item.KindRecipe, gen).Extract(ctx, "text")
		require.ErrorIs(t, res.Failure(), ErrMalformedResponse)
	})

	t.Run("LongMultiByteTextStaysValidUTF8", func(t *testing.T) {
		gen := &MockTextGenerator{content: `{"title": "Knedliky"}`}
		text := "a" + strings.Repeat("ř", 15000)
		_, err := NewExtractor(item.KindRecipe, gen).Extract(ctx, text).Unwrap()
		require.NoError(t, err)
		require.True(t, utf8.ValidString(gen.prompts[0]))
		require.NotContains(t, gen.prompts[0], text)
		require.Contains(t, gen.prompts[0], "a"+strings.Repeat("ř", 9999)+"\n")
	})

	t.Run("ModelError", func(t *testing.T) {
		gen := &MockTextGenerator{err: errors.New("503")}
		res := NewExtractor(item.KindRecipe, gen).Extract(ctx, "text")
		require.False(t, res.OK())
		require.ErrorContains(t, res.Failure(), "503")
	})
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	existing := []item.Item{
		{ID: "1", Title: "Goulash", SubItems: []string{"secret beef"}},
		{ID: "2", Title: "Pancakes"},
	}

	t.Run("PromptOnlySeesIDAndTitle", func(t *testing.T) {
		gen := &MockTextGenerator{content: `{"matchedIds": ["1"]}`}
		NewSuggester(item.KindRecipe, gen).Suggest(ctx, "beef and onions", existing)
		require.Contains(t, gen.prompts[0], `{"id":"1","title":"Goulash"}`)
		require.NotContains(t, gen.prompts[0], "secret beef")
		require.Contains(t, gen.prompts[0], "beef and onions")
	})

	t.Run("MatchesAndNewItemTogether", func(t *testing.T) {
		gen := &MockTextGenerator{content: `{
			"matchedIds": ["1", "999", "1"],
			"newItem": {"title": "Beef Stroganoff", "ingredients": ["beef"]}
		}`}
		s, err := NewSuggester(item.KindRecipe, gen).Suggest(ctx, "beef", existing).Unwrap()
		require.NoError(t, err)
		require.Equal(t, []string{"1"}, s.MatchedIDs)
		require.NotNil(t, s.NewItem)
		require.Equal(t, "Beef Stroganoff", s.NewItem.Title)
		require.Equal(t, []string{"beef"}, s.NewItem.SubItems)
	})

	t.Run("NothingSuggested", func(t *testing.T) {
		gen := &MockTextGenerator{content: `{"matchedIds": [], "newItem": {}}`}
		s, err := NewSuggester(item.KindRecipe, gen).Suggest(ctx, "sushi", existing).Unwrap()
		require.NoError(t, err)
		require.True(t, s.IsEmpty())
	})

	t.Run("EmptyRequest", func(t *testing.T) {
		res := NewSuggester(item.KindRecipe, &MockTextGenerator{}).Suggest(ctx, "", existing)
		require.ErrorIs(t, res.Failure(), ErrEmptyInput)
	})
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	items := []item.Item{{ID: "1", Title: "Goulash", SubItems: []string{"beef", "onion"}}}
	want := shopping.List{{Name: "Meat", Items: []shopping.Entry{{Name: "beef", Quantity: "500 g"}}}}

	tests := []struct {
		name    string
		content string
	}{
		{"WrappedObject", `{"categories": [{"category": "Meat", "items": [{"name": "beef", "quantity": "500 g"}]}]}`},
		{"BareArray", `[{"category": "Meat", "items": [{"name": "beef", "quantity": "500 g"}, {"name": " "}]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &MockTextGenerator{content: tt.content}
			list, meta, err := NewSummarizer(item.KindRecipe, gen).Summarize(ctx, items)
			require.NoError(t, err)
			require.Equal(t, "Summarizer", meta.AgentName)
			if diff := cmp.Diff(want, list); diff != "" {
				t.Errorf("List mismatch (-want +got):\n%s", diff)
			}
			require.Contains(t, gen.prompts[0], `"subItems":["beef","onion"]`)
		})
	}

	t.Run("Malformed", func(t *testing.T) {
		gen := &MockTextGenerator{content: `{"items": "nope"}`}
		_, _, err := NewSummarizer(item.KindAdventure, gen).Summarize(ctx, items)
		require.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("GearListPrompt", func(t *testing.T) {
		gen := &MockTextGenerator{content: `{"categories": []}`}
		_, _, err := NewSummarizer(item.KindAdventure, gen).Summarize(ctx, items)
		require.NoError(t, err)
		require.Contains(t, gen.prompts[0], "gear list")
	})
}

func TestNarrate(t *testing.T) {
	ctx := context.Background()

	speech := &MockSpeechGenerator{audio: []byte{1, 2}}
	audio, err := NewNarrator(item.KindAdventure, speech).Narrate(ctx, "Check the tyres.").Unwrap()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, audio)
	require.True(t, strings.HasPrefix(speech.text, "Rider briefing: "))

	silent := &MockSpeechGenerator{}
	res := NewNarrator(item.KindRecipe, silent).Narrate(ctx, "Stir.")
	require.ErrorIs(t, res.Failure(), ErrMalformedResponse)

	broken := &MockSpeechGenerator{err: errors.New("quota")}
	require.ErrorContains(t, NewNarrator(item.KindRecipe, broken).Narrate(ctx, "Stir.").Failure(), "quota")
}

func TestIllustrate(t *testing.T) {
	ctx := context.Background()

	gen := &MockImageGenerator{image: llm.Image{MIMEType: "image/png", Data: []byte{0x89}}}
	img, err := NewIllustrator(item.KindRecipe, gen).Illustrate(ctx, "Goulash").Unwrap()
	require.NoError(t, err)
	require.Equal(t, "image/png", img.MIMEType)
	require.Contains(t, gen.prompt, "food photography of: Goulash")

	empty := &MockImageGenerator{}
	require.ErrorIs(t, NewIllustrator(item.KindAdventure, empty).Illustrate(ctx, "Stelvio").Failure(), ErrMalformedResponse)
	require.Contains(t, empty.prompt, "motorcycle")
}
