package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipify/backend/internal/database"
	"github.com/pageza/recipify/backend/internal/logging"
)

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS migrations (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "migrations", "Directory holding the *.up.sql and *.down.sql files")
	flag.Parse()

	log := logging.New(os.Getenv("LOG_LEVEL"))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	if _, err := db.Exec(createMigrationsTable); err != nil {
		log.WithError(err).Fatal("Failed to create migrations table")
	}

	if *rollback {
		err = rollbackLast(db, *dir, log)
	} else {
		err = applyPending(db, *dir, log)
	}
	if err != nil {
		log.WithError(err).Fatal("Migration failed")
	}
}

func applyPending(db *sql.DB, dir string, log *logrus.Logger) error {
	files, err := database.ListMigrations(dir, database.UpSuffix)
	if err != nil {
		return err
	}

	applied := 0
	for _, name := range files {
		var exists bool
		if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations WHERE name = $1)", name).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %s: %w", name, err)
		}
		if exists {
			log.WithField("migration", name).Debug("Migration already applied")
			continue
		}

		if err := runInTx(db, filepath.Join(dir, name), "INSERT INTO migrations (name) VALUES ($1)", name); err != nil {
			return err
		}
		applied++
		log.WithField("migration", name).Info("Applied migration")
	}

	log.WithField("applied", applied).Info("All migrations applied")
	return nil
}

func rollbackLast(db *sql.DB, dir string, log *logrus.Logger) error {
	var name string
	err := db.QueryRow("SELECT name FROM migrations ORDER BY applied_at DESC, id DESC LIMIT 1").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("No migrations to rollback")
		return nil
	}
	if err != nil {
		return fmt.Errorf("finding last migration: %w", err)
	}

	down := filepath.Join(dir, database.DownFor(name))
	if err := runInTx(db, down, "DELETE FROM migrations WHERE name = $1", name); err != nil {
		return err
	}

	log.WithField("migration", name).Info("Rolled back migration")
	return nil
}

// runInTx executes the SQL file at path and the bookkeeping statement in one
// transaction.
func runInTx(db *sql.DB, path, record, name string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(string(content)); err != nil {
		return fmt.Errorf("executing %s: %w", path, err)
	}
	if _, err := tx.Exec(record, name); err != nil {
		return fmt.Errorf("recording %s: %w", name, err)
	}
	return tx.Commit()
}
