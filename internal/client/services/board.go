package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
	"github.com/dmitrijs2005/ideaboard/internal/client/repositories/marks"
	"github.com/dmitrijs2005/ideaboard/internal/client/repositories/posts"
	"github.com/dmitrijs2005/ideaboard/internal/client/storage"
	"github.com/dmitrijs2005/ideaboard/internal/common"
	"github.com/dmitrijs2005/ideaboard/internal/logging"
)

// FeedLimit is the number of posts loaded into the feed deck.
const FeedLimit = 50

// BoardService is the board: composing posts, the feed of posts the
// user has not reacted to yet, marks and the marked-by-me view.
//
// Every method taking a session fails with common.ErrNoSession when the
// session is nil, unless the service was built with WithAnonymous.
type BoardService interface {
	Compose(ctx context.Context, s *models.Session, content string) (*models.Post, error)
	Feed(ctx context.Context, s *models.Session) ([]models.Post, error)
	Show(ctx context.Context, postID string) (*models.Post, models.MarkCounts, error)
	Toggle(ctx context.Context, s *models.Session, postID string, t models.MarkType) (bool, error)
	Marked(ctx context.Context, s *models.Session) ([]models.MarkGroup, error)
	Counts(ctx context.Context, postIDs []string) (map[string]models.MarkCounts, error)
	Remove(ctx context.Context, s *models.Session, postID string) error
	Onboarded(ctx context.Context) bool
	SetOnboarded(ctx context.Context, v bool) error
}

type boardService struct {
	posts  posts.Repository
	marks  marks.Repository
	store  *storage.Store
	logger logging.Logger
	now    func() time.Time

	anonymous *models.Session
}

type BoardOption func(*boardService)

// WithAnonymous lets callers without a session act as the given local
// identity. Used with the on-device backend.
func WithAnonymous(userID, username string) BoardOption {
	return func(b *boardService) {
		b.anonymous = &models.Session{UserID: userID, Username: username}
	}
}

func WithBoardLogger(l logging.Logger) BoardOption {
	return func(b *boardService) { b.logger = l.With("component", "board") }
}

func WithBoardClock(now func() time.Time) BoardOption {
	return func(b *boardService) { b.now = now }
}

func NewBoardService(p posts.Repository, m marks.Repository, store *storage.Store, opts ...BoardOption) BoardService {
	b := &boardService{
		posts:  p,
		marks:  m,
		store:  store,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *boardService) actor(s *models.Session) (*models.Session, error) {
	if s != nil {
		return s, nil
	}
	if b.anonymous != nil {
		return b.anonymous, nil
	}
	return nil, common.ErrNoSession
}

// Compose trims content and stores it as a new post by the session user.
func (b *boardService) Compose(ctx context.Context, s *models.Session, content string) (*models.Post, error) {
	s, err := b.actor(s)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: post is empty", common.ErrValidation)
	}
	if n := utf8.RuneCountInString(content); n > models.MaxContentLength {
		return nil, fmt.Errorf("%w: post is %d characters, max %d", common.ErrValidation, n, models.MaxContentLength)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("post id: %w", err)
	}
	p := &models.Post{
		ID:        id.String(),
		AuthorID:  s.UserID,
		Author:    s.Username,
		Content:   content,
		CreatedAt: b.now().UTC(),
	}
	if err := b.posts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	b.logger.Debug(ctx, "post created", "id", p.ID)
	return p, nil
}

// Feed returns the newest posts the user has not marked in any way.
func (b *boardService) Feed(ctx context.Context, s *models.Session) ([]models.Post, error) {
	s, err := b.actor(s)
	if err != nil {
		return nil, err
	}
	items, err := b.posts.ListUnmarked(ctx, s.UserID, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	return items, nil
}

func (b *boardService) Show(ctx context.Context, postID string) (*models.Post, models.MarkCounts, error) {
	p, err := b.posts.Get(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	counts, err := b.marks.Counts(ctx, []string{p.ID})
	if err != nil {
		return nil, nil, fmt.Errorf("load counts: %w", err)
	}
	c := counts[p.ID]
	if c == nil {
		c = models.MarkCounts{}
	}
	return p, c, nil
}

// Toggle flips the user's mark of type t on the post and reports whether
// the mark is set afterwards.
func (b *boardService) Toggle(ctx context.Context, s *models.Session, postID string, t models.MarkType) (bool, error) {
	s, err := b.actor(s)
	if err != nil {
		return false, err
	}
	if _, err := models.ParseMarkType(string(t)); err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	if _, err := b.posts.Get(ctx, postID); err != nil {
		return false, err
	}
	on, err := b.marks.Toggle(ctx, postID, s.UserID, t)
	if err != nil {
		return false, fmt.Errorf("toggle mark: %w", err)
	}
	return on, nil
}

// Marked groups the user's marks into the visible reaction types, in
// display order. Ignored posts are left out.
func (b *boardService) Marked(ctx context.Context, s *models.Session) ([]models.MarkGroup, error) {
	s, err := b.actor(s)
	if err != nil {
		return nil, err
	}
	items, err := b.marks.ListByUser(ctx, s.UserID, marks.MarkedLimit)
	if err != nil {
		return nil, fmt.Errorf("load marks: %w", err)
	}

	groups := make([]models.MarkGroup, 0, len(models.VisibleMarkTypes))
	index := make(map[models.MarkType]int, len(models.VisibleMarkTypes))
	for i, t := range models.VisibleMarkTypes {
		groups = append(groups, models.MarkGroup{Type: t, Title: t.Title()})
		index[t] = i
	}
	for _, it := range items {
		i, ok := index[it.MarkType]
		if !ok {
			continue
		}
		groups[i].Posts = append(groups[i].Posts, it)
	}
	return groups, nil
}

func (b *boardService) Counts(ctx context.Context, postIDs []string) (map[string]models.MarkCounts, error) {
	if len(postIDs) == 0 {
		return map[string]models.MarkCounts{}, nil
	}
	return b.marks.Counts(ctx, postIDs)
}

// Remove deletes a post written by the session user, together with its marks.
func (b *boardService) Remove(ctx context.Context, s *models.Session, postID string) error {
	s, err := b.actor(s)
	if err != nil {
		return err
	}
	p, err := b.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p.AuthorID != "" && p.AuthorID != s.UserID {
		return fmt.Errorf("%w: post belongs to another user", common.ErrValidation)
	}
	if err := b.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (b *boardService) Onboarded(ctx context.Context) bool {
	return b.store.GetBool(ctx, storage.KeyHasOnboarded, false)
}

func (b *boardService) SetOnboarded(ctx context.Context, v bool) error {
	return b.store.SetBool(ctx, storage.KeyHasOnboarded, v)
}
