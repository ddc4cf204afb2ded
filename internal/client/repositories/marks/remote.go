package marks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
	"github.com/dmitrijs2005/ideaboard/internal/dbx"
)

type RemoteRepository struct {
	exec dbx.Executor
	now  func() time.Time
}

func NewRemoteRepository(exec dbx.Executor) *RemoteRepository {
	return &RemoteRepository{exec: exec, now: time.Now}
}

func (r *RemoteRepository) Toggle(ctx context.Context, postID, userID string, t models.MarkType) (bool, error) {
	key := []any{postID, userID, string(t)}

	res, err := r.exec.Execute(ctx,
		`SELECT 1 AS found FROM post_marks WHERE post_id = ? AND user_id = ? AND mark_type = ?`, key)
	if err != nil {
		return false, fmt.Errorf("failed to look up mark: %w", err)
	}

	if len(res.Rows) > 0 {
		_, err = r.exec.Execute(ctx,
			`DELETE FROM post_marks WHERE post_id = ? AND user_id = ? AND mark_type = ?`, key)
		if err != nil {
			return false, fmt.Errorf("failed to delete mark: %w", err)
		}
		return false, nil
	}

	_, err = r.exec.Execute(ctx,
		`INSERT INTO post_marks (post_id, user_id, mark_type, created_at) VALUES (?, ?, ?, ?)`,
		append(key, dbx.FormatTime(r.now())))
	if err != nil {
		return false, fmt.Errorf("failed to insert mark: %w", err)
	}
	return true, nil
}

func (r *RemoteRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.MarkedPost, error) {
	res, err := r.exec.Execute(ctx,
		`SELECT p.id, p.author_id, p.content, u.username AS author, p.created_at,
		        pm.mark_type, pm.created_at AS marked_at
		 FROM post_marks pm
		 JOIN posts p ON p.id = pm.post_id
		 JOIN users u ON u.id = p.author_id
		 WHERE pm.user_id = ?
		 ORDER BY pm.created_at DESC
		 LIMIT ?`,
		[]any{userID, limit})
	if err != nil {
		return nil, fmt.Errorf("failed to select marks: %w", err)
	}

	result := make([]models.MarkedPost, 0, len(res.Rows))
	for _, row := range res.Rows {
		mp := models.MarkedPost{
			Post: models.Post{
				ID:       row.String("id"),
				AuthorID: row.String("author_id"),
				Author:   row.String("author"),
				Content:  row.String("content"),
			},
			MarkType: models.MarkType(row.String("mark_type")),
		}
		if mp.CreatedAt, err = row.Time("created_at"); err != nil {
			return nil, err
		}
		if mp.MarkedAt, err = row.Time("marked_at"); err != nil {
			return nil, err
		}
		result = append(result, mp)
	}
	return result, nil
}

func (r *RemoteRepository) Counts(ctx context.Context, postIDs []string) (map[string]models.MarkCounts, error) {
	counts := make(map[string]models.MarkCounts)
	if len(postIDs) == 0 {
		return counts, nil
	}

	params := make([]any, len(postIDs))
	for i, id := range postIDs {
		params[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(postIDs)), ", ")

	res, err := r.exec.Execute(ctx,
		`SELECT post_id, mark_type, COUNT(*) AS n FROM post_marks
		 WHERE post_id IN (`+placeholders+`)
		 GROUP BY post_id, mark_type`,
		params)
	if err != nil {
		return nil, fmt.Errorf("failed to count marks: %w", err)
	}

	for _, row := range res.Rows {
		id := row.String("post_id")
		if counts[id] == nil {
			counts[id] = models.MarkCounts{}
		}
		counts[id][models.MarkType(row.String("mark_type"))] = int(row.Int64("n"))
	}
	return counts, nil
}
