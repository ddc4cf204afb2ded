package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
)

const timeFormat = "2006-01-02 15:04"

func (a *App) Post(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		var err error
		text, err = getMultiline(a.reader, fmt.Sprintf("What's your idea? (max %d characters)", models.MaxContentLength), a.out)
		if err != nil {
			return err
		}
	}

	p, err := a.boardService.Compose(ctx, a.session, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Posted %s\n", p.ID)
	return nil
}

// Feed prints the posts not yet marked by the user, with their mark totals.
func (a *App) Feed(ctx context.Context) error {
	items, err := a.boardService.Feed(ctx, a.session)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "You're all caught up.")
		return nil
	}

	ids := make([]string, len(items))
	for i, p := range items {
		ids[i] = p.ID
	}
	counts, err := a.boardService.Counts(ctx, ids)
	if err != nil {
		return err
	}

	for _, p := range items {
		a.printPost(p)
		fmt.Fprintf(a.out, "    %s\n", formatCounts(counts[p.ID]))
	}
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	p, counts, err := a.boardService.Show(ctx, id)
	if err != nil {
		return err
	}
	a.printPost(*p)
	fmt.Fprintf(a.out, "    %s\n", formatCounts(counts))
	return nil
}

func (a *App) Mark(ctx context.Context, id, markType string) error {
	t, err := models.ParseMarkType(markType)
	if err != nil {
		return err
	}
	on, err := a.boardService.Toggle(ctx, a.session, id, t)
	if err != nil {
		return err
	}
	if on {
		fmt.Fprintf(a.out, "Marked as %s\n", t.Title())
	} else {
		fmt.Fprintf(a.out, "Removed from %s\n", t.Title())
	}
	return nil
}

// Marked prints the user's marked posts grouped by reaction.
func (a *App) Marked(ctx context.Context) error {
	groups, err := a.boardService.Marked(ctx, a.session)
	if err != nil {
		return err
	}
	for _, g := range groups {
		fmt.Fprintf(a.out, "== %s (%d)\n", g.Title, len(g.Posts))
		for _, p := range g.Posts {
			a.printPost(p.Post)
		}
	}
	return nil
}

func (a *App) Remove(ctx context.Context, id string) error {
	if err := a.boardService.Remove(ctx, a.session, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

func (a *App) printPost(p models.Post) {
	author := p.Author
	if author == "" {
		author = "unknown"
	}
	fmt.Fprintf(a.out, "[%s] %s, %s\n", p.ID, author, formatTime(p.CreatedAt))
	for _, line := range strings.Split(p.Content, "\n") {
		fmt.Fprintf(a.out, "    %s\n", line)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeFormat)
}

func formatCounts(c models.MarkCounts) string {
	parts := make([]string, 0, len(models.VisibleMarkTypes))
	for _, t := range models.VisibleMarkTypes {
		parts = append(parts, fmt.Sprintf("%s: %d", t.Title(), c[t]))
	}
	return strings.Join(parts, " | ")
}
