// Package storedb opens local sqlite databases and brings their schema up to
// date. Each caller owns a named schema; several schemas may share one file.
package storedb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/granite-tools/packmgr/internal/errx"
)

// Migration is one forward-only schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// OpenOptions configures Open.
type OpenOptions struct {
	Path       string
	Schema     string
	Migrations []Migration
	Logger     *zap.Logger
}

var pragmas = []string{
	"PRAGMA busy_timeout = 10000",
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
}

// Open creates the database file if needed and applies pending migrations
// while holding an exclusive lock beside it, so concurrent CLI invocations
// migrate once.
func Open(ctx context.Context, opts OpenOptions) (*sql.DB, error) {
	if opts.Path == "" {
		return nil, ErrDBPathRequired
	}
	if opts.Schema == "" {
		return nil, ErrSchemaRequired
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
		return nil, errx.Wrap(ErrOpenDB, err)
	}
	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, errx.Wrap(ErrOpenDB, err)
	}
	db.SetMaxOpenConns(1)

	err = withFileLock(opts.Path+".lock", func() error {
		for _, p := range pragmas {
			if _, err := db.ExecContext(ctx, p); err != nil {
				return errx.With(ErrConfigureDB, ": %s: %w", p, err)
			}
		}
		m := &migrator{db: db, schema: opts.Schema, log: log}
		return m.run(ctx, opts.Migrations)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
