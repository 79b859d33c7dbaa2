package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"planora/app/utils/logger"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// Migration is one versioned schema change with its rollback
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	Checksum  string
	AppliedAt time.Time
}

// Status is a migration and whether it is applied
type Status struct {
	Migration
	Applied bool
	// Drifted is true when the applied checksum no longer matches the file
	Drifted bool
}

// Migrator applies embedded SQL migrations tracked in schema_migrations
type Migrator struct {
	db           *sql.DB
	logger       *slog.Logger
	migrationsFS fs.FS
}

// NewMigrator creates a new migration manager
func NewMigrator(db *sql.DB, logger *slog.Logger, migrationsFS fs.FS) *Migrator {
	return &Migrator{
		db:           db,
		logger:       logger.With("component", "migrator"),
		migrationsFS: migrationsFS,
	}
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		checksum VARCHAR(64) NOT NULL
	)`

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// LoadMigrations reads NNN_name.up.sql / NNN_name.down.sql pairs, sorted by
// version. A missing down file or a duplicate version is an error.
func LoadMigrations(migrationsFS fs.FS) ([]Migration, error) {
	byVersion := make(map[int]Migration)

	err := fs.WalkDir(migrationsFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, upSuffix) {
			return nil
		}

		filename := path.Base(p)
		versionPart, name, ok := strings.Cut(strings.TrimSuffix(filename, upSuffix), "_")
		if !ok || name == "" {
			return fmt.Errorf("invalid migration filename %q", filename)
		}

		version, err := strconv.Atoi(versionPart)
		if err != nil {
			return fmt.Errorf("invalid migration version in %q: %w", filename, err)
		}
		if existing, dup := byVersion[version]; dup {
			return fmt.Errorf("duplicate migration version %d: %s and %s", version, existing.Name, name)
		}

		upContent, err := fs.ReadFile(migrationsFS, p)
		if err != nil {
			return fmt.Errorf("failed to read up migration %s: %w", p, err)
		}

		downPath := strings.TrimSuffix(p, upSuffix) + downSuffix
		downContent, err := fs.ReadFile(migrationsFS, downPath)
		if err != nil {
			return fmt.Errorf("failed to read down migration %s: %w", downPath, err)
		}

		byVersion[version] = Migration{
			Version:  version,
			Name:     name,
			UpSQL:    string(upContent),
			DownSQL:  string(downContent),
			Checksum: checksum(string(upContent)),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, mg := range byVersion {
		migrations = append(migrations, mg)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func (m *Migrator) appliedMigrations(ctx context.Context) (map[int]Migration, []int, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version, name, checksum, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]Migration)
	var order []int
	for rows.Next() {
		var mg Migration
		if err := rows.Scan(&mg.Version, &mg.Name, &mg.Checksum, &mg.AppliedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[mg.Version] = mg
		order = append(order, mg.Version)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating migration rows: %w", err)
	}

	return applied, order, nil
}

// Up runs all pending migrations
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return err
	}

	all, err := LoadMigrations(m.migrationsFS)
	if err != nil {
		return err
	}

	applied, _, err := m.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	count := 0
	defer func() {
		logger.LogDuration(m.logger, start, "migrate_up", "applied", count)
	}()

	for _, mg := range all {
		if prev, ok := applied[mg.Version]; ok {
			if prev.Checksum != mg.Checksum {
				m.logger.Warn("Applied migration differs from file", "version", mg.Version, "name", mg.Name)
			}
			continue
		}

		if err := m.apply(ctx, mg.UpSQL, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
				mg.Version, mg.Name, mg.Checksum)
			return err
		}); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", mg.Version, err)
		}

		count++
		m.logger.Info("Applied migration", "version", mg.Version, "name", mg.Name)
	}

	return nil
}

// Down rolls back the last applied migration
func (m *Migrator) Down(ctx context.Context) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return err
	}

	_, order, err := m.appliedMigrations(ctx)
	if err != nil {
		return err
	}
	if len(order) == 0 {
		m.logger.Info("No migrations to roll back")
		return nil
	}
	last := order[len(order)-1]

	all, err := LoadMigrations(m.migrationsFS)
	if err != nil {
		return err
	}

	var target *Migration
	for i := range all {
		if all[i].Version == last {
			target = &all[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration %d not found in filesystem", last)
	}

	if err := m.apply(ctx, target.DownSQL, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, target.Version)
		return err
	}); err != nil {
		return fmt.Errorf("failed to rollback migration %d: %w", target.Version, err)
	}

	m.logger.Info("Rolled back migration", "version", target.Version, "name", target.Name)
	return nil
}

// apply runs script and record in one transaction
func (m *Migrator) apply(ctx context.Context, script string, record func(*sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	if err := record(tx); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

// Status reports every known migration and whether it is applied
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return nil, err
	}

	all, err := LoadMigrations(m.migrationsFS)
	if err != nil {
		return nil, err
	}

	applied, _, err := m.appliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	return statuses(all, applied), nil
}

func statuses(all []Migration, applied map[int]Migration) []Status {
	out := make([]Status, 0, len(all))
	for _, mg := range all {
		st := Status{Migration: mg}
		if prev, ok := applied[mg.Version]; ok {
			st.Applied = true
			st.AppliedAt = prev.AppliedAt
			st.Drifted = prev.Checksum != mg.Checksum
		}
		out = append(out, st)
	}
	return out
}

func checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
