package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
	"github.com/dmitrijs2005/ideaboard/internal/common"
	"github.com/dmitrijs2005/ideaboard/internal/dbx"
)

type RemoteRepository struct {
	exec dbx.Executor
}

func NewRemoteRepository(exec dbx.Executor) *RemoteRepository {
	return &RemoteRepository{exec: exec}
}

func (r *RemoteRepository) Create(ctx context.Context, s *models.Session) error {
	_, err := r.exec.Execute(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		[]any{s.Token, s.UserID, dbx.FormatTime(s.CreatedAt), dbx.FormatTime(s.ExpiresAt)})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindActive compares expires_at as text; both sides use dbx.TimeLayout.
func (r *RemoteRepository) FindActive(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	res, err := r.exec.Execute(ctx,
		`SELECT token, user_id, created_at, expires_at FROM sessions
		 WHERE token = ? AND expires_at > ? LIMIT 1`,
		[]any{token, dbx.FormatTime(now)})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	row := res.First()
	if row == nil {
		return nil, common.ErrorNotFound
	}

	s := &models.Session{Token: row.String("token"), UserID: row.String("user_id")}
	if s.CreatedAt, err = row.Time("created_at"); err != nil {
		return nil, err
	}
	if s.ExpiresAt, err = row.Time("expires_at"); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RemoteRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.exec.Execute(ctx, `DELETE FROM sessions WHERE token = ?`, []any{token}); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
