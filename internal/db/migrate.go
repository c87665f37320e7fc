package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

//go:embed migrations
var migrationFiles embed.FS

// Migration is one reversible schema step loaded from the embedded SQL files.
type Migration struct {
	Version string
	Name    string
	Up      string
	Down    string
}

// ID is the version and name joined, e.g. "0002_created_at_server_defaults".
func (m Migration) ID() string {
	return m.Version + "_" + m.Name
}

type schemaMigration struct {
	Version   string    `gorm:"primaryKey;size:32"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

// LoadMigrations reads the migrations for a dialect ordered by version.
func LoadMigrations(dialect string) ([]Migration, error) {
	dir := path.Join("migrations", dialect)
	entries, err := fs.ReadDir(migrationFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for dialect %q: %w", dialect, err)
	}

	byID := map[string]*Migration{}
	for _, entry := range entries {
		file := entry.Name()
		var direction string
		switch {
		case strings.HasSuffix(file, ".up.sql"):
			direction = "up"
		case strings.HasSuffix(file, ".down.sql"):
			direction = "down"
		default:
			continue
		}
		id := strings.TrimSuffix(file, "."+direction+".sql")
		version, name, ok := strings.Cut(id, "_")
		if !ok {
			return nil, fmt.Errorf("migration file %q has no version prefix", file)
		}

		body, err := fs.ReadFile(migrationFiles, path.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		m, exists := byID[id]
		if !exists {
			m = &Migration{Version: version, Name: name}
			byID[id] = m
		}
		if direction == "up" {
			m.Up = string(body)
		} else {
			m.Down = string(body)
		}
	}

	migrations := make([]Migration, 0, len(byID))
	for id, m := range byID {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("migration %s needs both up and down files", id)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// Migrator applies and reverts schema migrations, recording progress in
// the schema_migrations table. Each step runs in its own transaction; MySQL
// commits DDL implicitly so a failed step there may need manual repair.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator builds a Migrator for the dialect the connection speaks.
func NewMigrator(db *gorm.DB) (*Migrator, error) {
	migrations, err := LoadMigrations(db.Dialector.Name())
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, migrations: migrations}, nil
}

// Migrate brings the schema up to the latest version.
func Migrate(ctx context.Context, db *gorm.DB) ([]string, error) {
	m, err := NewMigrator(db)
	if err != nil {
		return nil, err
	}
	return m.Up(ctx)
}

// Applied returns the versions already recorded, oldest first.
func (m *Migrator) Applied(ctx context.Context) ([]string, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&schemaMigration{}); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	var versions []string
	if err := m.db.WithContext(ctx).Model(&schemaMigration{}).
		Order("version").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return versions, nil
}

// Up applies every pending migration and returns the IDs it applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	var ran []string
	for _, mig := range m.migrations {
		if done[mig.Version] {
			continue
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := execScript(tx, mig.Up); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{
				Version:   mig.Version,
				Name:      mig.Name,
				AppliedAt: tx.NowFunc(),
			}).Error
		})
		if err != nil {
			return ran, fmt.Errorf("apply %s: %w", mig.ID(), err)
		}
		ran = append(ran, mig.ID())
	}
	return ran, nil
}

// Down reverts up to steps applied migrations, newest first. A steps value
// of zero or less reverts everything.
func (m *Migrator) Down(ctx context.Context, steps int) ([]string, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	byVersion := make(map[string]Migration, len(m.migrations))
	for _, mig := range m.migrations {
		byVersion[mig.Version] = mig
	}

	if steps <= 0 || steps > len(applied) {
		steps = len(applied)
	}

	var reverted []string
	for i := len(applied) - 1; i >= len(applied)-steps; i-- {
		mig, ok := byVersion[applied[i]]
		if !ok {
			return reverted, fmt.Errorf("applied migration %s has no source", applied[i])
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := execScript(tx, mig.Down); err != nil {
				return err
			}
			return tx.Where("version = ?", mig.Version).Delete(&schemaMigration{}).Error
		})
		if err != nil {
			return reverted, fmt.Errorf("revert %s: %w", mig.ID(), err)
		}
		reverted = append(reverted, mig.ID())
	}
	return reverted, nil
}

// execScript runs each statement of a script. Statements end with a
// semicolon at the end of a line; lines starting with "--" are skipped.
func execScript(tx *gorm.DB, script string) error {
	for _, stmt := range splitStatements(script) {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func splitStatements(script string) []string {
	var (
		stmts   []string
		current strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSpace(current.String())
			stmts = append(stmts, strings.TrimSuffix(stmt, ";"))
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts
}

func firstLine(stmt string) string {
	line, _, _ := strings.Cut(stmt, "\n")
	return line
}
