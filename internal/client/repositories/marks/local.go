package marks

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
	"github.com/dmitrijs2005/ideaboard/internal/client/storage"
)

// LocalRepository keeps marks under storage.KeyMarks. The device has one
// user, so marks are matched on (post, type); the user id is only recorded.
type LocalRepository struct {
	store *storage.Store
	now   func() time.Time
	mu    sync.Mutex
}

func NewLocalRepository(store *storage.Store) *LocalRepository {
	return &LocalRepository{store: store, now: time.Now}
}

func (r *LocalRepository) load(ctx context.Context) []storage.MarkRecord {
	var marks []storage.MarkRecord
	r.store.GetJSON(ctx, storage.KeyMarks, &marks)
	return marks
}

func (r *LocalRepository) Toggle(ctx context.Context, postID, userID string, t models.MarkType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	marks := r.load(ctx)
	match := func(m storage.MarkRecord) bool { return m.PostID == postID && m.Type == string(t) }

	set := !slices.ContainsFunc(marks, match)
	if set {
		rec := storage.MarkRecord{PostID: postID, UserID: userID, Type: string(t), CreatedAt: r.now().UnixMilli()}
		marks = append([]storage.MarkRecord{rec}, marks...)
	} else {
		marks = slices.DeleteFunc(marks, match)
	}

	if err := r.store.SetJSON(ctx, storage.KeyMarks, marks); err != nil {
		return false, err
	}
	return set, nil
}

func (r *LocalRepository) ListByUser(ctx context.Context, _ string, limit int) ([]models.MarkedPost, error) {
	r.mu.Lock()
	marks := r.load(ctx)
	r.mu.Unlock()

	var items []storage.PostRecord
	r.store.GetJSON(ctx, storage.KeyItems, &items)
	byID := make(map[string]storage.PostRecord, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	slices.SortStableFunc(marks, func(a, b storage.MarkRecord) int {
		switch {
		case a.CreatedAt > b.CreatedAt:
			return -1
		case a.CreatedAt < b.CreatedAt:
			return 1
		}
		return 0
	})

	result := make([]models.MarkedPost, 0, len(marks))
	for _, m := range marks {
		if limit > 0 && len(result) == limit {
			break
		}
		p, ok := byID[m.PostID]
		if !ok {
			continue
		}
		result = append(result, models.MarkedPost{
			Post: models.Post{
				ID:        p.ID,
				AuthorID:  p.AuthorID,
				Author:    p.Author,
				Content:   p.Content,
				CreatedAt: time.UnixMilli(p.CreatedAt).UTC(),
			},
			MarkType: models.MarkType(m.Type),
			MarkedAt: time.UnixMilli(m.CreatedAt).UTC(),
		})
	}
	return result, nil
}

func (r *LocalRepository) Counts(ctx context.Context, postIDs []string) (map[string]models.MarkCounts, error) {
	r.mu.Lock()
	marks := r.load(ctx)
	r.mu.Unlock()

	wanted := make(map[string]struct{}, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = struct{}{}
	}

	counts := make(map[string]models.MarkCounts)
	for _, m := range marks {
		if _, ok := wanted[m.PostID]; !ok {
			continue
		}
		if counts[m.PostID] == nil {
			counts[m.PostID] = models.MarkCounts{}
		}
		counts[m.PostID][models.MarkType(m.Type)]++
	}
	return counts, nil
}

var (
	_ Repository = (*LocalRepository)(nil)
	_ Repository = (*RemoteRepository)(nil)
)
