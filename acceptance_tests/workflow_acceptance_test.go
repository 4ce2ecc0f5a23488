package acceptance_tests

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ai-weekly-planner/internal/app"
	"ai-weekly-planner/internal/assistant"
	"ai-weekly-planner/internal/database"
	"ai-weekly-planner/internal/ghost"
	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/llm"
	"ai-weekly-planner/internal/metrics"
	"ai-weekly-planner/internal/planner"
	"ai-weekly-planner/internal/schedule"
	"ai-weekly-planner/internal/shared"
	"ai-weekly-planner/internal/storage"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// --- Mock Ghost Client ---
type mockGhostClient struct {
	fetchPostsCalls int
}

func (m *mockGhostClient) FetchPosts(ctx context.Context) ([]ghost.Post, error) {
	m.fetchPostsCalls++
	return []ghost.Post{
		{ID: "p1", Title: "Goulash", HTML: "<h1>Goulash</h1><ul><li>1 kg beef</li><li>3 onions</li></ul>", UpdatedAt: "2026-10-01T10:00:00Z"},
		{ID: "p2", Title: "Dumplings", HTML: "<p>Bread dumplings</p>", UpdatedAt: "2026-10-02T10:00:00Z"},
	}, nil
}

func (m *mockGhostClient) CreatePost(ctx context.Context, title, html string, publish bool) (*ghost.Post, error) {
	return &ghost.Post{ID: "new", Title: title, HTML: html}, nil
}

// --- Mock LLM Client ---
type mockLLMClient struct {
	mu    sync.Mutex
	calls map[string]int
}

func (m *mockLLMClient) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	usage := shared.TokenUsage{PromptTokens: 200, CompletionTokens: 50, TotalTokens: 250, Model: "mock"}

	// Route on the prompt heading, the way the agents are told apart.
	switch {
	case strings.Contains(prompt, "# Extractor Agent Prompt"):
		m.calls["extract"]++
		if strings.Contains(prompt, "beef") {
			return llm.ContentResponse{Usage: usage, Content: `{
				"title": "Beef Goulash",
				"ingredients": ["1 kg beef", "3 onions"],
				"instructions": ["Brown the beef.", "Simmer for two hours."],
				"tags": ["czech"],
				"servings": 4
			}`}, nil
		}
		return llm.ContentResponse{Usage: usage, Content: `{"title": "Bread Dumplings", "ingredients": ["bread", "flour"]}`}, nil
	case strings.Contains(prompt, "# Summarizer Agent Prompt"):
		m.calls["summarize"]++
		return llm.ContentResponse{Usage: usage, Content: "```json\n" + `{"categories": [
			{"category": "Meat", "items": [{"name": "beef", "quantity": "1 kg"}]},
			{"category": "Bakery", "items": [{"name": "bread", "quantity": "1 loaf"}]}
		]}` + "\n```"}, nil
	}
	m.calls["other"]++
	return llm.ContentResponse{Usage: usage, Content: "{}"}, nil
}

type runtime struct {
	app     *app.App
	metrics *metrics.Store
}

func start(t *testing.T, ctx context.Context, db *database.DB, gen llm.TextGenerator, gh ghost.Client) runtime {
	t.Helper()
	kv := storage.NewSQLKV(db.SQL)
	kind := item.KindRecipe
	m := metrics.NewStore(db.SQL)
	a := app.New(app.Deps{
		Kind:       kind,
		Store:      item.NewStore(ctx, storage.NewSnapshot[[]item.Item](kv, app.ItemsKey(kind)), item.Seed(kind), nil),
		Schedule:   schedule.New(ctx, schedule.LayoutFor(kind), storage.NewSnapshot[schedule.Plan](kv, app.PlanKey(kind)), nil),
		Aggregator: planner.NewAggregator(assistant.NewSummarizer(kind, gen), nil),
		Extractor:  assistant.NewExtractor(kind, gen),
		Ghost:      gh,
		Metrics:    m,
	})
	return runtime{app: a, metrics: m}
}

// --- Acceptance Test ---
func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()

	// 1. Real SQLite database with migrations applied
	db, err := database.NewDB(filepath.Join(t.TempDir(), "planner.db"), nil)
	require.NoError(t, err)
	defer db.Close()

	ghostClient := &mockGhostClient{}
	llmClient := &mockLLMClient{calls: map[string]int{}}
	rt := start(t, ctx, db, llmClient, ghostClient)

	// --- Step 1: Ingestion ---
	t.Log("--- Step 1: Ingesting posts ---")
	report, err := rt.app.IngestGhost(ctx)
	require.NoError(t, err)
	require.Equal(t, app.IngestReport{Imported: 2}, report)
	require.Equal(t, 2, llmClient.calls["extract"])

	goulash, ok := rt.app.Item(app.GhostItemID("p1"))
	require.True(t, ok)
	require.Equal(t, "Beef Goulash", goulash.Title)
	require.Equal(t, item.SourceAIImported, goulash.SourceType)

	// --- Step 2: Planning ---
	t.Log("--- Step 2: Filling the week ---")
	require.NoError(t, rt.app.Assign(ctx, "monday", "lunch", goulash.ID))
	require.NoError(t, rt.app.Assign(ctx, "tuesday", "dinner", goulash.ID))
	require.NoError(t, rt.app.Assign(ctx, "friday", "dinner", app.GhostItemID("p2")))

	// --- Step 3: Shopping list ---
	t.Log("--- Step 3: Aggregating the shopping list ---")
	list, err := rt.app.ShoppingList(ctx).Unwrap()
	require.NoError(t, err)
	require.Equal(t, 1, llmClient.calls["summarize"])
	require.Equal(t, 2, list.Count())
	require.Equal(t, planner.PhaseReady, rt.app.AggregationStatus().Phase)

	// --- Step 4: Metrics ---
	usage, err := rt.metrics.GetDailyUsage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	require.Equal(t, 3, usage[0].TotalExecution)
	require.Equal(t, 600, usage[0].TotalPrompt)

	// --- Step 5: Restart ---
	t.Log("--- Step 5: Restarting from the database ---")
	before := rt.app.Items("")
	restarted := start(t, ctx, db, llmClient, ghostClient)
	if diff := cmp.Diff(before, restarted.app.Items("")); diff != "" {
		t.Errorf("Collection changed across restart (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(rt.app.Week(), restarted.app.Week()); diff != "" {
		t.Errorf("Week changed across restart (-before +after):\n%s", diff)
	}

	// Deleting a scheduled item leaves its slots empty, not broken.
	require.NoError(t, restarted.app.DeleteItem(ctx, goulash.ID))
	for _, e := range restarted.app.Week() {
		if e.Item != nil {
			require.NotEqual(t, goulash.ID, e.Item.ID)
		}
	}
	list, err = restarted.app.ShoppingList(ctx).Unwrap()
	require.NoError(t, err)
	require.Equal(t, 2, llmClient.calls["summarize"])
	require.NotEmpty(t, list)
}
