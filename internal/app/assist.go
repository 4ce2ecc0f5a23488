package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/llm"
	"ai-weekly-planner/internal/shared"
)

// Suggestion is a suggester answer resolved against the collection.
type Suggestion struct {
	Matched []item.Item
	NewItem *item.Draft
}

// ImportText extracts an item from free text and saves it.
func (a *App) ImportText(ctx context.Context, text string) shared.Result[item.Item] {
	if a.Extractor == nil {
		return shared.Err[item.Item](fmt.Errorf("%w: extractor", ErrUnavailable))
	}
	res := record(a, a.Extractor.Extract(ctx, text))
	draft, err := res.Unwrap()
	if err != nil {
		a.log.Warn("import failed", "error", err)
		return shared.Err[item.Item](fmt.Errorf("import failed: %w", err)).WithMeta(res.Meta)
	}

	saved, err := a.SaveItem(ctx, draft.ApplyTo(item.Item{ID: item.NewID()}, item.SourceAIImported))
	if err != nil {
		return shared.Err[item.Item](err).WithMeta(res.Meta)
	}
	return shared.Ok(saved).WithMeta(res.Meta)
}

// ImportURL fetches a page and imports the item it describes.
func (a *App) ImportURL(ctx context.Context, url string) shared.Result[item.Item] {
	if a.Fetcher == nil {
		return shared.Err[item.Item](fmt.Errorf("%w: page fetcher", ErrUnavailable))
	}
	text, err := a.Fetcher.Fetch(ctx, url)
	if err != nil {
		return shared.Err[item.Item](fmt.Errorf("failed to fetch %s: %w", url, err))
	}
	return a.ImportText(ctx, text)
}

// Suggest asks for existing or new items that fit the request.
func (a *App) Suggest(ctx context.Context, request string) shared.Result[Suggestion] {
	if a.Suggester == nil {
		return shared.Err[Suggestion](fmt.Errorf("%w: suggester", ErrUnavailable))
	}
	res := record(a, a.Suggester.Suggest(ctx, request, a.Store.All()))
	raw, err := res.Unwrap()
	if err != nil {
		return shared.Err[Suggestion](fmt.Errorf("suggestion failed: %w", err)).WithMeta(res.Meta)
	}

	var out Suggestion
	for _, id := range raw.MatchedIDs {
		// The item may have been deleted while the request ran.
		if it, ok := a.Store.Find(id); ok {
			out.Matched = append(out.Matched, it)
		}
	}
	out.NewItem = raw.NewItem
	return shared.Ok(out).WithMeta(res.Meta)
}

// AdoptSuggestion saves a suggested new item into the collection.
func (a *App) AdoptSuggestion(ctx context.Context, draft item.Draft) (item.Item, error) {
	return a.SaveItem(ctx, draft.ApplyTo(item.Item{ID: item.NewID()}, item.SourceAIGenerated))
}

// Narrate reads one step of an item aloud. A negative step reads them all.
func (a *App) Narrate(ctx context.Context, id string, step int) shared.Result[[]byte] {
	if a.Narrator == nil {
		return shared.Err[[]byte](fmt.Errorf("%w: narrator", ErrUnavailable))
	}
	it, ok := a.Store.Find(id)
	if !ok {
		return shared.Err[[]byte](fmt.Errorf("%w: %s", ErrNotFound, id))
	}

	var text string
	switch {
	case step < 0:
		text = strings.Join(it.Steps, " ")
	case step < len(it.Steps):
		text = it.Steps[step]
	default:
		return shared.Err[[]byte](fmt.Errorf("%s has %d steps, no step %d", it.Title, len(it.Steps), step+1))
	}
	return record(a, a.Narrator.Narrate(ctx, text))
}

// Illustrate generates a cover image for an item and stores it as a data
// URL on the item.
func (a *App) Illustrate(ctx context.Context, id string) shared.Result[llm.Image] {
	if a.Illustrator == nil {
		return shared.Err[llm.Image](fmt.Errorf("%w: illustrator", ErrUnavailable))
	}
	it, ok := a.Store.Find(id)
	if !ok {
		return shared.Err[llm.Image](fmt.Errorf("%w: %s", ErrNotFound, id))
	}

	res := record(a, a.Illustrator.Illustrate(ctx, it.Title))
	img, err := res.Unwrap()
	if err != nil {
		return res
	}

	// Only the image changes, so edits made meanwhile are kept and a
	// deleted item is not brought back.
	if err := a.Store.SetImageURL(ctx, id, dataURL(img)); err != nil {
		a.log.Info("item removed while illustrating", "id", id)
	}
	return res
}

func dataURL(img llm.Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
