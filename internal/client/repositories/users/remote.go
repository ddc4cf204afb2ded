package users

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

func (r *RemoteRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	res, err := r.exec.Execute(ctx,
		`SELECT id, username, password_algo, password_salt, password_hash, created_at, updated_at
		 FROM users WHERE username = ? LIMIT 1`,
		[]any{username})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	row := res.First()
	if row == nil {
		return nil, common.ErrorNotFound
	}

	u := &models.User{
		ID:           row.String("id"),
		Username:     row.String("username"),
		PasswordAlgo: row.String("password_algo"),
		PasswordSalt: row.String("password_salt"),
		PasswordHash: row.String("password_hash"),
	}
	if u.CreatedAt, err = row.Time("created_at"); err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	if u.UpdatedAt, err = row.Time("updated_at"); err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	return u, nil
}

func (r *RemoteRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.exec.Execute(ctx,
		`INSERT INTO users (id, username, password_algo, password_salt, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		[]any{u.ID, u.Username, u.PasswordAlgo, u.PasswordSalt, u.PasswordHash,
			dbx.FormatTime(u.CreatedAt), dbx.FormatTime(u.UpdatedAt)})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *RemoteRepository) UpdateCredentials(ctx context.Context, id, algo, salt, hash string, updatedAt time.Time) error {
	_, err := r.exec.Execute(ctx,
		`UPDATE users SET password_algo = ?, password_salt = ?, password_hash = ?, updated_at = ?
		 WHERE id = ?`,
		[]any{algo, salt, hash, dbx.FormatTime(updatedAt), id})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
