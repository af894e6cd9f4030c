package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/matprat/matprat/backend/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrNoEnumTypes is returned for enum operations on dialects without enums.
var ErrNoEnumTypes = errors.New("enum types are only available on postgres")

var enumLabel = regexp.MustCompile(`^[a-z][a-z0-9_ ]{0,62}$`)

// RunMigrations brings the schema up to date. SQLite (tests) uses gorm
// auto-migration; Postgres runs the embedded SQL files in name order and
// records each in schema_migrations.
func RunMigrations(db *gorm.DB, log logrus.FieldLogger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Debug("Using GORM auto-migration for SQLite")
		return db.AutoMigrate(models.AllModels()...)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, path := range names {
		name := strings.TrimPrefix(path, "migrations/")

		var count int64
		if err := db.Table("schema_migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.WithField("migration", name).Debug("Skipping migration (already applied)")
			continue
		}

		content, err := migrationFiles.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO schema_migrations (name) VALUES (?)", name).Error; err != nil {
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

// AddEnumValues appends missing labels to a Postgres enum type. It returns
// the labels that were added.
func AddEnumValues(ctx context.Context, db *gorm.DB, typeName string, labels []string) ([]string, error) {
	if db.Dialector.Name() != "postgres" {
		return nil, ErrNoEnumTypes
	}
	if !enumLabel.MatchString(typeName) {
		return nil, fmt.Errorf("invalid enum type name %q", typeName)
	}

	var existing []string
	if err := db.WithContext(ctx).Raw(`
		SELECT e.enumlabel FROM pg_enum e
		JOIN pg_type t ON e.enumtypid = t.oid
		WHERE t.typname = ?`, typeName).Scan(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to read enum %s: %w", typeName, err)
	}
	have := make(map[string]bool, len(existing))
	for _, l := range existing {
		have[l] = true
	}

	var added []string
	for _, label := range labels {
		if have[label] {
			continue
		}
		if !enumLabel.MatchString(label) {
			return added, fmt.Errorf("invalid enum label %q", label)
		}
		// ALTER TYPE cannot take bind parameters; labels are validated above.
		stmt := fmt.Sprintf("ALTER TYPE %s ADD VALUE IF NOT EXISTS '%s'", typeName, label)
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return added, fmt.Errorf("failed to add %q to %s: %w", label, typeName, err)
		}
		have[label] = true
		added = append(added, label)
	}
	return added, nil
}
