package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bdgeo/location-api/internal/location"
	"github.com/bdgeo/location-api/pkg/client"
	"github.com/bdgeo/location-api/pkg/config"
	"github.com/bdgeo/location-api/pkg/email"
	"github.com/bdgeo/location-api/pkg/logger"
	"github.com/bdgeo/location-api/pkg/store"
)

const (
	lockFileName   = ".location-api.lock"
	commandTimeout = 5 * time.Minute
)

func lockPath(s *config.Settings) string {
	return filepath.Join(s.BaseDir, lockFileName)
}

func migrateCmd(s *config.Settings, args []string) error {
	if len(args) != 1 {
		return errors.New("migrate requires 'up' or 'down'")
	}
	if s.Database.IsMemory() {
		return errors.New("an in-memory database is migrated by serve itself")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	mig, err := store.NewMigrator(s.Database)
	if err != nil {
		return err
	}

	var run func(context.Context) error
	var done string
	switch args[0] {
	case "up":
		run, done = mig.Up, "Migrations applied"
	case "down":
		run, done = mig.Down, "Migrations rolled back"
	default:
		return fmt.Errorf("unknown migrate action %q; use up|down", args[0])
	}

	err = store.WithLock(ctx, lockPath(s), run)
	if errors.Is(err, store.ErrNoChange) {
		done = "No migrations to apply"
	} else if err != nil {
		return err
	}

	version, dirty, err := mig.Version(ctx)
	if err != nil {
		return err
	}
	logger.Log(logger.LevelInfo, map[string]string{
		"version": strconv.FormatUint(uint64(version), 10),
		"dirty":   strconv.FormatBool(dirty),
	}, nil, done)
	return nil
}

func seedCmd(s *config.Settings, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("file", "", "JSON dataset to load instead of the bundled one")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if s.Database.IsMemory() {
		return errors.New("seeding an in-memory database has no lasting effect")
	}

	dataset, err := readDataset(*file)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	db, err := store.Open(ctx, s.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return store.WithLock(ctx, lockPath(s), func(ctx context.Context) error {
		res, err := location.Seed(ctx, db, dataset)
		if err != nil {
			return err
		}
		logger.Log(logger.LevelInfo, map[string]string{
			"divisions": strconv.Itoa(res.Divisions),
			"districts": strconv.Itoa(res.Districts),
			"upazilas":  strconv.Itoa(res.Upazilas),
			"unions":    strconv.Itoa(res.Unions),
		}, nil, "Locations seeded")
		return nil
	})
}

func readDataset(path string) (location.Dataset, error) {
	if path == "" {
		return location.DefaultDataset()
	}
	f, err := os.Open(path)
	if err != nil {
		return location.Dataset{}, err
	}
	defer f.Close()
	return location.LoadDataset(f)
}

func seedDefault(ctx context.Context, db *store.DB) error {
	dataset, err := location.DefaultDataset()
	if err != nil {
		return err
	}
	_, err = location.Seed(ctx, db, dataset)
	return err
}

func sendTestEmailCmd(s *config.Settings, args []string) error {
	if len(args) == 0 {
		return errors.New("sendtestemail requires at least one recipient")
	}

	mailer, err := client.ParseMailer(s)
	if err != nil {
		return err
	}

	hostname, _ := os.Hostname()
	msg := email.Message{
		To:      args,
		Subject: fmt.Sprintf("Test email from %s on %s", hostname, time.Now().Format(time.RFC3339)),
		Body:    "If you're reading this, it was successful.",
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return mailer.Send(ctx, msg)
}

// checkCmd prints the settings. Secrets carry json:"-" and never appear.
func checkCmd(s *config.Settings, out io.Writer) error {
	view := struct {
		*config.Settings
		DatabaseURL string   `json:"databaseURL"`
		Warnings    []string `json:"warnings"`
	}{
		Settings:    s,
		DatabaseURL: s.Database.Redacted(),
		Warnings:    s.Warnings,
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
