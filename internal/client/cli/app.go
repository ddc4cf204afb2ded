package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/ideaboard/internal/client/client"
	"github.com/dmitrijs2005/ideaboard/internal/client/config"
	"github.com/dmitrijs2005/ideaboard/internal/client/models"
	"github.com/dmitrijs2005/ideaboard/internal/client/services"
	"github.com/dmitrijs2005/ideaboard/internal/client/storage"
	"github.com/dmitrijs2005/ideaboard/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds the reachability check done at start.
const pingTimeout = 5 * time.Second

type App struct {
	config       *config.Config
	authService  services.AuthService
	boardService services.BoardService
	store        *storage.Store
	logger       logging.Logger
	closeFn      func() error

	session *models.Session
	Mode    Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local store and the configured backend.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	cl, err := client.Open(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		config:       c,
		authService:  cl.Auth,
		boardService: cl.Board,
		store:        cl.Store,
		logger:       logger,
		closeFn:      cl.Close,
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}, nil
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) getStatus() string {
	s := "anonymous"
	if a.session != nil {
		s = a.session.Username
	}
	if a.Mode != "" {
		s = s + " " + string(a.Mode)
	}
	return fmt.Sprintf("(%s)", s)
}

// Run restores the remembered session, then serves commands until the user
// quits or input ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closeFn != nil {
			if err := a.closeFn(); err != nil {
				a.logger.Error(ctx, "close", "error", err)
			}
		}
	}()

	fmt.Fprintln(a.out, "Welcome to IdeaBoard (type 'help' for commands)")
	a.start(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) start(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.authService.Ping(pctx)
	cancel()
	if err != nil {
		a.logger.Debug(ctx, "database unreachable", "error", err)
		a.setMode(ctx, ModeOffline)
	} else {
		a.setMode(ctx, ModeOnline)
	}

	if a.Mode == ModeOnline {
		s, err := a.authService.CurrentSession(ctx)
		if err != nil {
			a.logger.Warn(ctx, "could not restore session", "error", err)
		}
		a.session = s
	}

	if !a.boardService.Onboarded(ctx) {
		fmt.Fprintln(a.out, "Post your ideas, then mark the ones you see as a shitpost, a spark or something you're gonna implement.")
		if err := a.boardService.SetOnboarded(ctx, true); err != nil {
			a.logger.Warn(ctx, "could not save onboarding flag", "error", err)
		}
	}
}
