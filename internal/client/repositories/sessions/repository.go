// Package sessions is the remote login-session table.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) error

	// FindActive returns the session for token if it expires after now,
	// otherwise common.ErrorNotFound.
	FindActive(ctx context.Context, token string, now time.Time) (*models.Session, error)

	// Delete removes the token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}
