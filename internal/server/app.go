// Package server initializes and runs the auth server. It wires the
// configuration, storage backend, services, and HTTP endpoint together and
// handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"time"

	"github.com/dkotlyar/passfort/internal/logging"
	"github.com/dkotlyar/passfort/internal/server/config"
	"github.com/dkotlyar/passfort/internal/server/ephemeral"
	"github.com/dkotlyar/passfort/internal/server/flows"
	"github.com/dkotlyar/passfort/internal/server/hashing"
	"github.com/dkotlyar/passfort/internal/server/httpapi"
	"github.com/dkotlyar/passfort/internal/server/notifier"
	"github.com/dkotlyar/passfort/internal/server/sessions"
	"github.com/dkotlyar/passfort/internal/server/shared/db"
	"github.com/dkotlyar/passfort/internal/server/users"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	userService    *users.Service
	sessionService *sessions.Service
	flowService    *flows.Service
	tokenRepo      ephemeral.Repository
}

func NewApp(c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	m, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	hasher := hashing.NewBcryptHasher(0)
	notify := notifier.NewSMTPNotifier(c.SMTPAddr, c.SMTPFrom)

	us := users.NewService(m.Users(), hasher)
	ss := sessions.NewService(m.Conn(), m.Users(), m.Sessions(), hasher, c)
	fs := flows.NewService(m.Users(), m.EphemeralTokens(), notify, hasher, ss, logger, c)

	return &App{
		config:         c,
		logger:         logger,
		userService:    us,
		sessionService: ss,
		flowService:    fs,
		tokenRepo:      m.EphemeralTokens(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddr, app.logger,
		app.userService, app.sessionService, app.flowService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startTokenPurger periodically removes expired single-use tokens. Expiry is
// already enforced by every read, so the sweep is table hygiene only.
func (app *App) startTokenPurger(ctx context.Context) {

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := app.tokenRepo.Purge(ctx); err != nil {
				app.logger.Warn(ctx, "token purge failed", "error", err.Error())
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startTokenPurger(ctx)
	}()

	wg.Wait()
}
