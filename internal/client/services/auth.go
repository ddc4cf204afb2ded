// Package services contains application services for the IdeaBoard client.
// This file defines the authentication service: register, login, logout and
// session restore.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
	"github.com/dmitrijs2005/ideaboard/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/ideaboard/internal/client/repositories/users"
	"github.com/dmitrijs2005/ideaboard/internal/client/storage"
	"github.com/dmitrijs2005/ideaboard/internal/common"
	"github.com/dmitrijs2005/ideaboard/internal/cryptox"
	"github.com/dmitrijs2005/ideaboard/internal/dbx"
	"github.com/dmitrijs2005/ideaboard/internal/logging"
	"github.com/dmitrijs2005/ideaboard/internal/schema"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a user, or overwrite the credentials of an existing one.
//   - Login: verify credentials and open a 14-day session.
//   - Logout: delete the session remotely and forget it locally.
//   - CurrentSession: the live session, or nil when there is none.
//   - VerifyCredentials: recompute the stored hash without opening a session.
//   - Ping, Migrate: database checks used by the CLI.
//
// Usernames are trimmed and lowercased before use.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte, remember bool) (*models.Session, error)
	Logout(ctx context.Context) error
	CurrentSession(ctx context.Context) (*models.Session, error)
	CurrentUserID(ctx context.Context) (string, error)
	VerifyCredentials(ctx context.Context, username string, password []byte) (*CredentialCheck, error)
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
}

// CredentialCheck describes what is stored for a user and whether a
// password matches it.
type CredentialCheck struct {
	Username string
	Algo     string
	SaltLen  int
	HashLen  int
	Match    bool
}

type authService struct {
	exec     dbx.Executor
	users    users.Repository
	sessions sessions.Repository
	store    *storage.Store
	hashers  *cryptox.Registry
	cache    *SessionCache
	logger   logging.Logger

	now          func() time.Time
	verifyWrites bool
}

// AuthOption customizes the service built by NewAuthService.
type AuthOption func(*authService)

// WithVerifyWrites makes Register re-read the stored credentials and fail
// with common.ErrIntegrity when they came back empty.
func WithVerifyWrites(on bool) AuthOption {
	return func(a *authService) { a.verifyWrites = on }
}

func WithAuthLogger(l logging.Logger) AuthOption {
	return func(a *authService) { a.logger = l.With("component", "auth") }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) AuthOption {
	return func(a *authService) { a.now = now }
}

// WithHashers overrides the password hashers.
func WithHashers(r *cryptox.Registry) AuthOption {
	return func(a *authService) { a.hashers = r }
}

// NewAuthService builds the service over the remote executor and the local
// store used to remember sessions.
func NewAuthService(exec dbx.Executor, store *storage.Store, opts ...AuthOption) AuthService {
	a := &authService{
		exec:     exec,
		users:    users.NewRemoteRepository(exec),
		sessions: sessions.NewRemoteRepository(exec),
		store:    store,
		hashers:  cryptox.DefaultRegistry(),
		cache:    &SessionCache{},
		logger:   logging.Discard(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register hashes password with the default algorithm and upserts the user
// by username. An existing user's credentials are overwritten.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	username = normalizeUsername(username)
	if username == "" || len(password) == 0 {
		return fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	creds, err := a.hashers.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := a.now().UTC()

	existing, err := a.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if err := a.users.UpdateCredentials(ctx, existing.ID, creds.Algo, creds.Salt, creds.Hash, now); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		a.logger.Info(ctx, "credentials replaced", "username", username)
	case errors.Is(err, common.ErrorNotFound):
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("user id: %w", err)
		}
		u := &models.User{
			ID:           id.String(),
			Username:     username,
			PasswordAlgo: creds.Algo,
			PasswordSalt: creds.Salt,
			PasswordHash: creds.Hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := a.users.Create(ctx, u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		a.logger.Info(ctx, "user registered", "username", username)
	default:
		return fmt.Errorf("look up user: %w", err)
	}

	if a.verifyWrites {
		return a.verifyCredentials(ctx, username)
	}
	return nil
}

func (a *authService) verifyCredentials(ctx context.Context, username string) error {
	u, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: user %q missing after write", common.ErrIntegrity, username)
	}
	if err != nil {
		return fmt.Errorf("verify write: %w", err)
	}
	if u.PasswordSalt == "" || u.PasswordHash == "" {
		a.logger.Warn(ctx, "register write anomaly", "username", username,
			"salt_len", len(u.PasswordSalt), "hash_len", len(u.PasswordHash))
		return fmt.Errorf("%w: empty credentials stored", common.ErrIntegrity)
	}
	return nil
}

// Login verifies the password by the stored algorithm tag. Unknown users,
// mismatches and unknown algorithms all yield common.ErrUnauthorized.
func (a *authService) Login(ctx context.Context, username string, password []byte, remember bool) (*models.Session, error) {
	username = normalizeUsername(username)

	u, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	ok, err := a.hashers.Verify(u.PasswordAlgo, password, u.PasswordSalt, u.PasswordHash)
	if err != nil {
		a.logger.Warn(ctx, "password verification failed", "username", username, "algo", u.PasswordAlgo, "error", err)
	}
	if !ok {
		a.logger.Debug(ctx, "hash mismatch", "username", username, "algo", u.PasswordAlgo,
			"salt_len", len(u.PasswordSalt), "hash_len", len(u.PasswordHash))
		return nil, common.ErrUnauthorized
	}

	now := a.now().UTC()
	s := &models.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(common.SessionValidity),
	}
	if err := a.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	a.cache.Set(s)

	if remember {
		if err := a.persist(ctx, s); err != nil {
			return nil, fmt.Errorf("remember session: %w", err)
		}
	}
	a.logger.Info(ctx, "login ok", "username", u.Username)
	return s, nil
}

func (a *authService) persist(ctx context.Context, s *models.Session) error {
	if err := a.store.SetJSON(ctx, storage.KeySessionToken, s.Token); err != nil {
		return err
	}
	return a.store.SetJSON(ctx, storage.KeySessionUser, models.SessionUser{ID: s.UserID, Username: s.Username})
}

func (a *authService) forget(ctx context.Context) error {
	a.cache.Clear()
	return a.store.Remove(ctx, storage.KeySessionToken, storage.KeySessionUser)
}

// Logout deletes the session row for the persisted (or cached) token and
// always clears local state, even when the remote delete fails.
func (a *authService) Logout(ctx context.Context) error {
	var token string
	if !a.store.GetJSON(ctx, storage.KeySessionToken, &token) || token == "" {
		if s := a.cache.Get(); s != nil {
			token = s.Token
		}
	}

	var deleteErr error
	if token != "" {
		if err := a.sessions.Delete(ctx, token); err != nil {
			deleteErr = fmt.Errorf("delete session: %w", err)
		}
	}

	if err := a.forget(ctx); err != nil {
		return fmt.Errorf("clear local session: %w", err)
	}
	return deleteErr
}

// CurrentSession returns the cached session, or restores the persisted one
// after checking that its token is still live remotely. A persisted session
// that is no longer live is removed from local storage.
func (a *authService) CurrentSession(ctx context.Context) (*models.Session, error) {
	now := a.now().UTC()

	if s := a.cache.Get(); s != nil {
		if !s.Expired(now) {
			return s, nil
		}
		a.cache.Clear()
	}

	var token string
	var user models.SessionUser
	if !a.store.GetJSON(ctx, storage.KeySessionToken, &token) || token == "" {
		return nil, nil
	}
	if !a.store.GetJSON(ctx, storage.KeySessionUser, &user) || user.ID == "" {
		return nil, nil
	}

	row, err := a.sessions.FindActive(ctx, token, now)
	if errors.Is(err, common.ErrorNotFound) {
		a.logger.Debug(ctx, "stored session is no longer valid", "username", user.Username)
		if err := a.forget(ctx); err != nil {
			return nil, fmt.Errorf("clear stale session: %w", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}

	s := &models.Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}
	a.cache.Set(s)
	return s, nil
}

func (a *authService) CurrentUserID(ctx context.Context) (string, error) {
	s, err := a.CurrentSession(ctx)
	if err != nil || s == nil {
		return "", err
	}
	return s.UserID, nil
}

// VerifyCredentials checks password against the stored credentials of
// username and reports the stored shape. No session is created. An unknown
// user yields common.ErrorNotFound; a malformed or unknown stored hash is
// returned as an error together with the check.
func (a *authService) VerifyCredentials(ctx context.Context, username string, password []byte) (*CredentialCheck, error) {
	username = normalizeUsername(username)

	u, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("user %q: %w", username, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	check := &CredentialCheck{
		Username: u.Username,
		Algo:     u.PasswordAlgo,
		SaltLen:  len(u.PasswordSalt),
		HashLen:  len(u.PasswordHash),
	}
	check.Match, err = a.hashers.Verify(u.PasswordAlgo, password, u.PasswordSalt, u.PasswordHash)
	if err != nil {
		return check, fmt.Errorf("verify: %w", err)
	}
	return check, nil
}

// Ping runs SELECT 1 against the remote database.
func (a *authService) Ping(ctx context.Context) error {
	res, err := a.exec.Execute(ctx, "SELECT 1 as ok", nil)
	if err != nil {
		return err
	}
	if row := res.First(); row == nil || row.Int64("ok") != 1 {
		return fmt.Errorf("unexpected ping result: %v", res.Rows)
	}
	return nil
}

// Migrate creates the remote tables if they do not exist.
func (a *authService) Migrate(ctx context.Context) error {
	return schema.Apply(ctx, a.exec)
}
