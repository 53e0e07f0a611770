package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pageza/recipify/backend/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migration file suffixes.
const (
	UpSuffix   = ".up.sql"
	DownSuffix = ".down.sql"
)

// AllModels lists every table the application owns, parents first.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Recipe{},
		&models.SavedRecipe{},
		&models.Review{},
		&models.SimilarityEdge{},
	}
}

// RunMigrations brings the schema up to date. SQLite uses gorm auto-migration;
// postgres applies every pending *.up.sql file in migrationsDir in name order.
func RunMigrations(db *gorm.DB, migrationsDir string, log *logrus.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info("Using GORM auto-migration for SQLite")
		return db.AutoMigrate(AllModels()...)
	}

	files, err := ListMigrations(migrationsDir, UpSuffix)
	if err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, name := range files {
		var count int64
		if err := db.Table("migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.WithField("migration", name).Debug("Skipping migration (already applied)")
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", name).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.WithField("migration", name).Info("Applied migration")
	}

	return nil
}

// ListMigrations returns the file names in dir with the given suffix, sorted.
func ListMigrations(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

// DownFor maps an up migration file name to its rollback file name.
func DownFor(upName string) string {
	return strings.TrimSuffix(upName, UpSuffix) + DownSuffix
}
