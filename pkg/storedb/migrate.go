package storedb

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/granite-tools/packmgr/internal/errx"
)

type migrator struct {
	db     *sql.DB
	schema string
	log    *zap.Logger
}

func (m *migrator) run(ctx context.Context, migrations []Migration) error {
	if _, err := m.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_versions (
  schema_name TEXT NOT NULL,
  version INTEGER NOT NULL,
  name TEXT NOT NULL,
  applied_at TEXT NOT NULL,
  PRIMARY KEY (schema_name, version)
)`); err != nil {
		return errx.Wrap(ErrCreateVersionTable, err)
	}

	ordered := slices.Clone(migrations)
	slices.SortFunc(ordered, func(a, b Migration) int { return a.Version - b.Version })
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Version == ordered[i-1].Version {
			return errx.With(ErrDuplicateMigration, ": %s/%d", m.schema, ordered[i].Version)
		}
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}
	for _, mig := range ordered {
		if applied[mig.Version] {
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return err
		}
		m.log.Debug("applied migration",
			zap.String("schema", m.schema),
			zap.Int("version", mig.Version),
			zap.String("name", mig.Name))
	}
	return nil
}

func (m *migrator) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_versions WHERE schema_name = ?`, m.schema)
	if err != nil {
		return nil, errx.Wrap(ErrReadVersions, err)
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, errx.Wrap(ErrReadVersions, err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errx.Wrap(ErrReadVersions, err)
	}
	return applied, nil
}

// apply runs one migration and its bookkeeping row in a single transaction;
// sqlite rolls schema changes back with it.
func (m *migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return errx.With(ErrApplyMigration, ": begin %s/%d %s: %w", m.schema, mig.Version, mig.Name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		return errx.With(ErrApplyMigration, ": %s/%d %s: %w", m.schema, mig.Version, mig.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_versions(schema_name, version, name, applied_at) VALUES (?, ?, ?, ?)`,
		m.schema, mig.Version, mig.Name, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return errx.With(ErrRecordMigration, ": %s/%d %s: %w", m.schema, mig.Version, mig.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return errx.With(ErrCommitMigration, ": %s/%d %s: %w", m.schema, mig.Version, mig.Name, err)
	}
	return nil
}
