// Package app wires the synchronization engine to its collaborators: the
// socket, the REST client, the optional transcript archive, the optional
// status endpoint, and the console.
package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/auth"
	"github.com/vovakirdan/wirechat-client/internal/config"
	"github.com/vovakirdan/wirechat-client/internal/console"
	"github.com/vovakirdan/wirechat-client/internal/core"
	"github.com/vovakirdan/wirechat-client/internal/rest"
	"github.com/vovakirdan/wirechat-client/internal/status"
	"github.com/vovakirdan/wirechat-client/internal/store"
	"github.com/vovakirdan/wirechat-client/internal/store/sqlite"
	"github.com/vovakirdan/wirechat-client/internal/transport/ws"
)

// App owns the session's long-lived pieces.
type App struct {
	cfg     config.Config
	log     *zerolog.Logger
	engine  *core.Engine
	archive store.Archive
	status  *stdhttp.Server
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	api := rest.New(cfg.ServerURL, cfg.HTTPTimeout, logger)

	var archive store.Archive
	if cfg.ArchivePath != "" {
		a, err := sqlite.New(cfg.ArchivePath)
		if err != nil {
			return nil, fmt.Errorf("init archive: %w", err)
		}
		archive = a
		logger.Info().Str("path", cfg.ArchivePath).Msg("transcript archive enabled")
	}

	if cfg.Token != "" && auth.Expired(cfg.Token, time.Now()) {
		logger.Warn().Msg("configured token is expired; the server may refuse login")
	}

	engine := core.NewEngine(api, archive, logger, core.Options{
		Room:         cfg.Room,
		Token:        cfg.Token,
		LoginAckWarn: cfg.LoginAckWarn,
	})

	a := &App{
		cfg:     cfg,
		log:     logger,
		engine:  engine,
		archive: archive,
	}
	if cfg.StatusAddr != "" {
		a.status = status.NewServer(cfg.StatusAddr, engine, logger)
	}
	return a, nil
}

// Engine exposes the presentation boundary.
func (a *App) Engine() *core.Engine {
	return a.engine
}

// Run connects and blocks until context cancellation, connection loss, or
// the user quitting the console.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.engine.Start(ctx)

	sock, err := ws.Dial(ctx, a.cfg.SocketURL, a.engine, a.log)
	if err != nil {
		a.cleanup()
		return err
	}
	a.engine.BindSocket(sock)

	if a.status != nil {
		go func() {
			if err := a.status.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
				a.log.Warn().Err(err).Msg("status endpoint failed")
			}
		}()
	}

	runErr := make(chan error, 2)
	go func() {
		runErr <- sock.Run(ctx)
	}()
	go func() {
		runErr <- console.New(a.engine, a.log).Run(ctx)
	}()

	var result error
	select {
	case result = <-runErr:
	case <-ctx.Done():
	}
	cancel()
	_ = sock.Close()

	if a.status != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 3*time.Second)
		defer stop()
		_ = a.status.Shutdown(shutdownCtx)
	}

	a.cleanup()
	return result
}

func (a *App) cleanup() {
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close archive")
		}
	}
}
