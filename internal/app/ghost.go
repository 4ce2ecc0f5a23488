package app

import (
	"context"
	"fmt"
	"time"

	"ai-weekly-planner/internal/clipper"
	"ai-weekly-planner/internal/ghost"
	"ai-weekly-planner/internal/item"
)

// IngestReport summarizes a Ghost ingestion run.
type IngestReport struct {
	Imported int
	Failed   int
}

// GhostItemID is the item id given to the item extracted from a Ghost post.
func GhostItemID(postID string) string {
	return "ghost-" + postID
}

// IngestGhost extracts an item from every Ghost post. Re-ingesting a post
// replaces its item in place, keeping the rating.
func (a *App) IngestGhost(ctx context.Context) (IngestReport, error) {
	var report IngestReport
	if a.Ghost == nil || a.Extractor == nil {
		return report, fmt.Errorf("%w: ghost ingestion", ErrUnavailable)
	}

	posts, err := a.Ghost.FetchPosts(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to fetch posts from ghost: %w", err)
	}
	a.log.Info("fetched ghost posts", "count", len(posts))

	for i, post := range posts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if i > 0 && a.IngestDelay > 0 {
			select {
			case <-time.After(a.IngestDelay):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}

		if err := a.ingestPost(ctx, post); err != nil {
			report.Failed++
			a.log.Warn("failed to ingest post", "post", post.ID, "title", post.Title, "error", err)
			continue
		}
		report.Imported++
	}

	a.log.Info("ingestion complete", "imported", report.Imported, "failed", report.Failed)
	return report, nil
}

func (a *App) ingestPost(ctx context.Context, post ghost.Post) error {
	text, err := clipper.TextFromHTML(post.HTML)
	if err != nil {
		return fmt.Errorf("failed to read post html: %w", err)
	}

	res := record(a, a.Extractor.Extract(ctx, post.Title+"\n\n"+text))
	draft, err := res.Unwrap()
	if err != nil {
		return err
	}
	if draft.Title == "" {
		draft.Title = post.Title
	}

	base, ok := a.Store.Find(GhostItemID(post.ID))
	if !ok {
		base = item.Item{ID: GhostItemID(post.ID)}
	}
	_, err = a.SaveItem(ctx, draft.ApplyTo(base, item.SourceAIImported))
	return err
}

// Publish renders an item as HTML and creates a Ghost post for it.
func (a *App) Publish(ctx context.Context, id string, publish bool) (*ghost.Post, error) {
	if a.Ghost == nil {
		return nil, fmt.Errorf("%w: ghost", ErrUnavailable)
	}
	it, ok := a.Store.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	post, err := a.Ghost.CreatePost(ctx, it.Title, clipper.FormatHTML(a.Kind, it, ""), publish)
	if err != nil {
		return nil, fmt.Errorf("failed to save to ghost: %w", err)
	}
	a.log.Info("published item", "id", id, "post", post.ID)
	return post, nil
}
