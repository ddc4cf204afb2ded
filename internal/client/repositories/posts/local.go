package posts

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
	"github.com/dmitrijs2005/ideaboard/internal/client/storage"
	"github.com/dmitrijs2005/ideaboard/internal/common"
)

// LocalRepository keeps posts as a JSON array under storage.KeyItems.
// It serves a single device user.
type LocalRepository struct {
	store *storage.Store
	mu    sync.Mutex
}

func NewLocalRepository(store *storage.Store) *LocalRepository {
	return &LocalRepository{store: store}
}

func (r *LocalRepository) load(ctx context.Context) []storage.PostRecord {
	var items []storage.PostRecord
	r.store.GetJSON(ctx, storage.KeyItems, &items)
	return items
}

// Create upserts by id; new posts go to the front.
func (r *LocalRepository) Create(ctx context.Context, p *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := toRecord(p)
	items := r.load(ctx)
	if i := slices.IndexFunc(items, func(x storage.PostRecord) bool { return x.ID == p.ID }); i >= 0 {
		rec.UpdatedAt = time.Now().UnixMilli()
		items[i] = rec
	} else {
		items = append([]storage.PostRecord{rec}, items...)
	}
	return r.store.SetJSON(ctx, storage.KeyItems, items)
}

func (r *LocalRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.load(ctx) {
		if rec.ID == id {
			p := fromRecord(rec)
			return &p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *LocalRepository) List(ctx context.Context, limit int) ([]models.Post, error) {
	return r.list(ctx, limit, func(storage.PostRecord) bool { return true }), nil
}

// ListUnmarked skips every post that has a mark of any type. Marks are not
// filtered by user on the device.
func (r *LocalRepository) ListUnmarked(ctx context.Context, _ string, limit int) ([]models.Post, error) {
	var marks []storage.MarkRecord
	r.store.GetJSON(ctx, storage.KeyMarks, &marks)

	marked := make(map[string]struct{}, len(marks))
	for _, m := range marks {
		marked[m.PostID] = struct{}{}
	}

	return r.list(ctx, limit, func(rec storage.PostRecord) bool {
		_, ok := marked[rec.ID]
		return !ok
	}), nil
}

func (r *LocalRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := slices.DeleteFunc(r.load(ctx), func(x storage.PostRecord) bool { return x.ID == id })
	if err := r.store.SetJSON(ctx, storage.KeyItems, items); err != nil {
		return err
	}

	var marks []storage.MarkRecord
	r.store.GetJSON(ctx, storage.KeyMarks, &marks)
	marks = slices.DeleteFunc(marks, func(m storage.MarkRecord) bool { return m.PostID == id })
	return r.store.SetJSON(ctx, storage.KeyMarks, marks)
}

func (r *LocalRepository) list(ctx context.Context, limit int, keep func(storage.PostRecord) bool) []models.Post {
	r.mu.Lock()
	items := r.load(ctx)
	r.mu.Unlock()

	slices.SortStableFunc(items, func(a, b storage.PostRecord) int {
		switch {
		case a.CreatedAt > b.CreatedAt:
			return -1
		case a.CreatedAt < b.CreatedAt:
			return 1
		}
		return 0
	})

	result := make([]models.Post, 0, len(items))
	for _, rec := range items {
		if limit > 0 && len(result) == limit {
			break
		}
		if keep(rec) {
			result = append(result, fromRecord(rec))
		}
	}
	return result
}

func toRecord(p *models.Post) storage.PostRecord {
	return storage.PostRecord{
		ID:        p.ID,
		Content:   p.Content,
		Author:    p.Author,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt.UnixMilli(),
	}
}

func fromRecord(rec storage.PostRecord) models.Post {
	return models.Post{
		ID:        rec.ID,
		AuthorID:  rec.AuthorID,
		Author:    rec.Author,
		Content:   rec.Content,
		CreatedAt: time.UnixMilli(rec.CreatedAt).UTC(),
	}
}

var (
	_ Repository = (*LocalRepository)(nil)
	_ Repository = (*RemoteRepository)(nil)
)
