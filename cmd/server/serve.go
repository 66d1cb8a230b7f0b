package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bdgeo/location-api/internal/location"
	"github.com/bdgeo/location-api/internal/routes"
	"github.com/bdgeo/location-api/pkg/config"
	"github.com/bdgeo/location-api/pkg/logger"
	"github.com/bdgeo/location-api/pkg/metrics"
	searchBleve "github.com/bdgeo/location-api/pkg/search/bleve"
	"github.com/bdgeo/location-api/pkg/store"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func serve(s *config.Settings) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, s.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := applyMigrations(ctx, s, db); err != nil {
		return err
	}

	repo := location.NewRepository(db)
	if s.Database.IsMemory() {
		// Nothing persists between runs, start from the bundled data
		if err := seedDefault(ctx, db); err != nil {
			return err
		}
	}

	idx, err := searchBleve.New()
	if err != nil {
		return err
	}
	defer idx.Close()
	indexed, err := location.BuildIndex(ctx, repo, idx)
	if err != nil {
		return err
	}
	if indexed == 0 {
		logger.Log(logger.LevelWarn, nil, nil, "No locations in the database. Run the seed command to load them.")
	}
	logger.Log(logger.LevelInfo, map[string]string{"documents": strconv.Itoa(indexed)}, nil, "Search index built")

	router, err := routes.SetupRouter(s, routes.Dependencies{
		DB:        db,
		Locations: repo,
		Searcher:  idx,
		Metrics:   metrics.New(),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log(logger.LevelInfo, map[string]string{
			"address":  s.ListenAddr,
			"database": s.Database.Redacted(),
			"debug":    strconv.FormatBool(s.Debug),
		}, nil, "Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log(logger.LevelInfo, nil, nil, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// applyMigrations brings the schema up to date. File backed databases
// are migrated under the base directory lock.
func applyMigrations(ctx context.Context, s *config.Settings, db *store.DB) error {
	if s.Database.IsMemory() {
		return ignoreNoChange(store.NewMigratorForDB(db).Up(ctx))
	}

	mig, err := store.NewMigrator(s.Database)
	if err != nil {
		return err
	}
	return store.WithLock(ctx, lockPath(s), func(ctx context.Context) error {
		return ignoreNoChange(mig.Up(ctx))
	})
}

func ignoreNoChange(err error) error {
	if errors.Is(err, store.ErrNoChange) {
		return nil
	}
	return err
}
