// Command migrate manages the database schema and loads the reference seed
// produced by cmd/seedref.
// Usage: go run ./cmd/migrate [-dir db/migrations] up|down|steps N|force V|version|seed [file]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"freightdesk/internal/config"
	"freightdesk/internal/repository/postgres"
)

const usage = "Usage: migrate [-dir path] [up|down|steps N|force V|version|seed [file]]"

const defaultSeedFile = "db/seeds/reference.sql"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dir := flag.String("dir", "db/migrations", "migrations directory")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if args[0] == "seed" {
		path := defaultSeedFile
		if len(args) > 1 {
			path = args[1]
		}
		return seed(&cfg.DB, path)
	}

	m, err := migrate.New("file://"+*dir, cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration up failed: %w", err)
		}
		log.Println("migrations applied successfully")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration down failed: %w", err)
		}
		log.Println("migrations reverted successfully")

	case "steps", "force":
		n, err := numberArg(args)
		if err != nil {
			return err
		}
		if args[0] == "force" {
			if err := m.Force(n); err != nil {
				return fmt.Errorf("forcing version %d: %w", n, err)
			}
			log.Printf("schema version forced to %d", n)
			return nil
		}
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration steps failed: %w", err)
		}
		log.Printf("applied %d migration steps", n)

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("unknown command: %s\n", args[0])
		fmt.Println(usage)
		os.Exit(1)
	}
	return nil
}

func numberArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a number argument", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid %s argument: %w", args[0], err)
	}
	return n, nil
}

// seed runs a SQL seed file. Files written by cmd/seedref carry their own
// transaction and upsert, so re-running is safe.
func seed(cfg *config.DBConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := db.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("applying seed %s: %w", path, err)
	}
	log.Printf("reference seed %s applied", path)
	return nil
}
