// Package users is the remote account table.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
)

type Repository interface {
	// GetByUsername returns common.ErrorNotFound when no row matches.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create inserts a new user; ID and timestamps must already be set.
	Create(ctx context.Context, user *models.User) error

	// UpdateCredentials replaces algorithm, salt and hash of an existing user.
	UpdateCredentials(ctx context.Context, id, algo, salt, hash string, updatedAt time.Time) error
}
