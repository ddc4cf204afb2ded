// Package marks stores reactions on posts. A mark is unique per
// (post, user, type); toggling removes an existing mark or adds a new one.
package marks

import (
	"context"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
)

// MarkedLimit caps the marked-by-me listing.
const MarkedLimit = 200

type Repository interface {
	// Toggle deletes the mark if it exists, otherwise inserts it, and
	// reports whether the mark is set afterwards.
	Toggle(ctx context.Context, postID, userID string, t models.MarkType) (bool, error)

	// ListByUser returns the user's marks joined with their posts, newest
	// mark first.
	ListByUser(ctx context.Context, userID string, limit int) ([]models.MarkedPost, error)

	// Counts returns mark totals per type for each of the given posts.
	// Posts without marks are absent from the result.
	Counts(ctx context.Context, postIDs []string) (map[string]models.MarkCounts, error)
}
