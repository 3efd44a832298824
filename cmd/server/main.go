package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/easylaw/auth-service/auth"
	"github.com/easylaw/auth-service/guard"
	"github.com/easylaw/auth-service/internal/config"
	"github.com/easylaw/auth-service/server"
	"github.com/easylaw/auth-service/token"
	"github.com/easylaw/auth-service/users"
	"github.com/easylaw/auth-service/users/postgres"
	"github.com/easylaw/auth-service/users/repofake"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}

func run(logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger = loggerWithLevel(logger, cfg.LogLevel)
	displayAppname("auth service")

	ctx := context.Background()
	store, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	signer, err := token.NewHMACSigner(cfg.JWT.Secret, cfg.JWT.Algorithm)
	if err != nil {
		return err
	}
	authority := token.NewAuthority(signer, time.Duration(cfg.JWT.ExpireMinutes)*time.Minute)

	service, err := auth.NewService(store, authority, cfg.AdminEmail)
	if err != nil {
		return err
	}

	srv, err := server.New(service, guard.New(authority), logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: cfg.ListenAddr(), Handler: srv.Router()}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	return shutdown(httpServer)
}

// buildStore picks the persistence backend: postgres when a database is
// configured, the in-memory store in development mode.
func buildStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (users.Store, func(), error) {
	if cfg.DatabaseURI == "" {
		logger.Warn().Msg("no DATABASE_URI set; using the in-memory store (development only)")
		return repofake.NewFakeUserRepo(), func() {}, nil
	}

	if err := postgres.Migrate(ctx, cfg.DatabaseURI); err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURI)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[buildStore] pgxpool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, errors.Wrap(err, "[buildStore] ping")
	}
	return postgres.NewStore(pool), pool.Close, nil
}

func listenAndServe(httpServer *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func loggerWithLevel(logger zerolog.Logger, level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return logger.Level(parsed)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
