package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofrs/flock"

	"github.com/dmitrijs2005/ideaboard/internal/client/config"
	"github.com/dmitrijs2005/ideaboard/internal/client/repositories/marks"
	"github.com/dmitrijs2005/ideaboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ideaboard/internal/client/repositories/posts"
	"github.com/dmitrijs2005/ideaboard/internal/client/services"
	"github.com/dmitrijs2005/ideaboard/internal/client/storage"
	"github.com/dmitrijs2005/ideaboard/internal/dbx"
	"github.com/dmitrijs2005/ideaboard/internal/filex"
	"github.com/dmitrijs2005/ideaboard/internal/libsql"
	"github.com/dmitrijs2005/ideaboard/internal/logging"
	"github.com/dmitrijs2005/ideaboard/internal/sqlexec"
)

// Local identity used for the on-device board when nobody is logged in.
const (
	LocalUserID   = "local"
	LocalUsername = "me"
)

// ErrStoreLocked is returned by Open when another process holds the local store.
var ErrStoreLocked = errors.New("local store is in use by another process")

// Client bundles everything the CLI talks to: the remote executor, the
// local store and the services built on top of them.
type Client struct {
	Backend string
	Exec    dbx.Executor
	Store   *storage.Store
	Auth    services.AuthService
	Board   services.BoardService

	local  *sql.DB
	remote *sqlexec.DB
	lock   *flock.Flock
}

// NewExecutor builds the remote executor selected by cfg.Backend. The libsql
// client is returned even when url or token are empty; it fails with
// common.ErrConfiguration on first use.
func NewExecutor(ctx context.Context, cfg *config.Config, logger logging.Logger) (dbx.Executor, error) {
	if cfg.Backend == config.BackendSQL {
		db, err := sqlexec.Open(ctx, cfg.SQLDriver, cfg.SQLDSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return libsql.NewClient(cfg.DatabaseURL, cfg.DatabaseToken,
		libsql.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		libsql.WithLogger(logger),
	), nil
}

// lockStore takes an exclusive lock next to the local store file.
func lockStore(path string) (*flock.Flock, error) {
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", lock.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStoreLocked, path)
	}
	return lock, nil
}

// Open locks and initializes the local store, then connects the services
// for cfg. The lock is taken before migrations run.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Client, error) {
	if _, err := filex.EnsureParentDir(cfg.StorePath); err != nil {
		return nil, err
	}

	lock, err := lockStore(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "local store locked", "path", lock.Path())

	db, err := InitDatabase(ctx, cfg.StorePath)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	store := storage.New(metadata.NewSQLiteRepository(db), "")

	exec, err := NewExecutor(ctx, cfg, logger)
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("connect %s backend: %w", cfg.Backend, err)
	}

	c := &Client{Backend: cfg.Backend, Exec: exec, Store: store, local: db, lock: lock}
	if s, ok := exec.(*sqlexec.DB); ok {
		c.remote = s
	}

	c.Auth = services.NewAuthService(exec, store,
		services.WithAuthLogger(logger),
		services.WithVerifyWrites(cfg.Debug),
	)

	if cfg.Backend == config.BackendLocal {
		c.Board = services.NewBoardService(posts.NewLocalRepository(store), marks.NewLocalRepository(store), store,
			services.WithBoardLogger(logger),
			services.WithAnonymous(LocalUserID, LocalUsername),
		)
	} else {
		c.Board = services.NewBoardService(posts.NewRemoteRepository(exec), marks.NewRemoteRepository(exec), store,
			services.WithBoardLogger(logger),
		)
	}
	return c, nil
}

// Close releases the local store, its lock and, for the sql backend, the
// connection pool.
func (c *Client) Close() error {
	var errs []error
	if c.remote != nil {
		errs = append(errs, c.remote.Close())
	}
	if c.local != nil {
		errs = append(errs, c.local.Close())
	}
	if c.lock != nil {
		errs = append(errs, c.lock.Unlock())
	}
	return errors.Join(errs...)
}
