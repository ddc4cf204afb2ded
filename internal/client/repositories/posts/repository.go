// Package posts stores board posts, either remotely through a
// dbx.Executor or on the device in the local store.
package posts

import (
	"context"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Post) error

	// Get returns common.ErrorNotFound for an unknown id.
	Get(ctx context.Context, id string) (*models.Post, error)

	// List returns up to limit posts, newest first.
	List(ctx context.Context, limit int) ([]models.Post, error)

	// ListUnmarked returns up to limit posts, newest first, that userID has
	// not marked with any type (ignored included).
	ListUnmarked(ctx context.Context, userID string, limit int) ([]models.Post, error)

	// Delete removes the post and all of its marks.
	Delete(ctx context.Context, id string) error
}
