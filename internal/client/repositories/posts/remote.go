package posts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
	"github.com/dmitrijs2005/ideaboard/internal/common"
	"github.com/dmitrijs2005/ideaboard/internal/dbx"
)

const selectPosts = `SELECT p.id, p.author_id, u.username AS author, p.content, p.created_at
FROM posts p
LEFT JOIN users u ON u.id = p.author_id`

type RemoteRepository struct {
	exec dbx.Executor
}

func NewRemoteRepository(exec dbx.Executor) *RemoteRepository {
	return &RemoteRepository{exec: exec}
}

func (r *RemoteRepository) Create(ctx context.Context, p *models.Post) error {
	_, err := r.exec.Execute(ctx,
		`INSERT INTO posts (id, author_id, content, created_at) VALUES (?, ?, ?, ?)`,
		[]any{p.ID, p.AuthorID, p.Content, dbx.FormatTime(p.CreatedAt)})
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (r *RemoteRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	items, err := r.query(ctx, selectPosts+` WHERE p.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, common.ErrorNotFound
	}
	return &items[0], nil
}

func (r *RemoteRepository) List(ctx context.Context, limit int) ([]models.Post, error) {
	return r.query(ctx, selectPosts+` ORDER BY p.created_at DESC, p.id DESC LIMIT ?`, limit)
}

func (r *RemoteRepository) ListUnmarked(ctx context.Context, userID string, limit int) ([]models.Post, error) {
	return r.query(ctx, selectPosts+`
WHERE NOT EXISTS (SELECT 1 FROM post_marks pm WHERE pm.post_id = p.id AND pm.user_id = ?)
ORDER BY p.created_at DESC, p.id DESC LIMIT ?`, userID, limit)
}

func (r *RemoteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.exec.Execute(ctx, `DELETE FROM post_marks WHERE post_id = ?`, []any{id}); err != nil {
		return fmt.Errorf("failed to delete post marks: %w", err)
	}
	if _, err := r.exec.Execute(ctx, `DELETE FROM posts WHERE id = ?`, []any{id}); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

func (r *RemoteRepository) query(ctx context.Context, sql string, params ...any) ([]models.Post, error) {
	res, err := r.exec.Execute(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}

	result := make([]models.Post, 0, len(res.Rows))
	for _, row := range res.Rows {
		p := models.Post{
			ID:       row.String("id"),
			AuthorID: row.String("author_id"),
			Author:   row.String("author"),
			Content:  row.String("content"),
		}
		if p.CreatedAt, err = row.Time("created_at"); err != nil {
			return nil, fmt.Errorf("post %s: %w", p.ID, err)
		}
		result = append(result, p)
	}
	return result, nil
}
