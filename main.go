// Package main provides the main entry point for the counter API
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirphl/counter-api/app/handlers"
	"github.com/amirphl/counter-api/app/router"
	businessflow "github.com/amirphl/counter-api/business_flow"
	"github.com/amirphl/counter-api/config"
	"github.com/amirphl/counter-api/database"
	"github.com/amirphl/counter-api/logger"
	"github.com/amirphl/counter-api/repository"
	"github.com/rs/zerolog"
)

// Application represents the main application structure
type Application struct {
	config    *config.Config
	log       zerolog.Logger
	logCloser io.Closer
	db        *database.Database
	router    router.Router
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// runServer boots the application and blocks until SIGINT or SIGTERM
func runServer(cfg *config.Config) error {
	app, err := initializeApplication(cfg)
	if err != nil {
		return err
	}
	defer app.close()

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.router.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errChan:
		if err != nil {
			app.log.Error().Err(err).Msg("Server stopped unexpectedly")
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case sig := <-sigChan:
		app.log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		app.log.Error().Err(err).Msg("Error during shutdown")
		return err
	}

	app.log.Info().Msg("Server stopped")
	return nil
}

// initializeApplication wires configuration, storage, flows, handlers and routes
func initializeApplication(cfg *config.Config) (*Application, error) {
	log, logCloser, err := logger.New(cfg.Logging, cfg.AppEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Info().Str("env", cfg.AppEnv).Msg("Starting counter API")

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = logCloser.Close()
		return nil, err
	}

	countRepo := repository.NewCountRecordRepository(db.DB)
	countFlow := businessflow.NewCountFlow(countRepo, db.DB, log)
	countHandler := handlers.NewCountHandler(countFlow, log, cfg.Server.RequestTimeout)

	return &Application{
		config:    cfg,
		log:       log,
		logCloser: logCloser,
		db:        db,
		router:    router.NewFiberRouter(cfg, log, countHandler, db),
	}, nil
}

func (a *Application) close() {
	if err := a.db.Close(); err != nil {
		a.log.Error().Err(err).Msg("Failed to close database")
	}
	if err := a.logCloser.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}
