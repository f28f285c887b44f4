// Package history keeps receipts of remote package operations in a local
// sqlite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/storedb"
)

const schemaName = "history"

var migrations = []storedb.Migration{
	{
		Version: 1,
		Name:    "create_receipts",
		SQL: `
CREATE TABLE IF NOT EXISTS receipts (
  id TEXT PRIMARY KEY,
  server TEXT NOT NULL,
  command TEXT NOT NULL,
  package TEXT NOT NULL DEFAULT '',
  success INTEGER NOT NULL,
  message TEXT NOT NULL DEFAULT '',
  duration INTEGER NOT NULL DEFAULT -1,
  details BLOB,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipts_package ON receipts(package);
CREATE INDEX IF NOT EXISTS idx_receipts_created_at ON receipts(created_at);
`,
	},
}

// DefaultPath is the history database under the user's state directory.
func DefaultPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "packmgr", "history.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "packmgr", "history.db")
}

// Store persists receipts.
type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// Open opens or creates the store at path.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := storedb.Open(ctx, storedb.OpenOptions{
		Path:       path,
		Schema:     schemaName,
		Migrations: migrations,
		Logger:     log,
	})
	if err != nil {
		return nil, errx.Wrap(ErrOpenStore, err)
	}
	return &Store{db: db, log: log, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores r under a fresh ID and returns the stored receipt.
func (s *Store) Record(ctx context.Context, r Receipt) (Receipt, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	if len(r.ProgressErrors) == 0 {
		r.ProgressErrors = nil
	}
	if len(r.StackTrace) == 0 {
		r.StackTrace = nil
	}

	var blob []byte
	if len(r.ProgressErrors) > 0 || len(r.StackTrace) > 0 {
		var err error
		blob, err = cbor.Marshal(details{ProgressErrors: r.ProgressErrors, StackTrace: r.StackTrace})
		if err != nil {
			return Receipt{}, errx.Wrap(ErrEncodeDetails, err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO receipts(id, server, command, package, success, message, duration, details, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Server, r.Command, r.Package, r.Success, r.Message, r.Duration, blob, r.CreatedAt.UnixMilli())
	if err != nil {
		return Receipt{}, errx.Wrap(ErrRecordReceipt, err)
	}
	s.log.Debug("recorded receipt",
		zap.String("id", r.ID),
		zap.String("command", r.Command),
		zap.String("package", r.Package),
		zap.Bool("success", r.Success))
	return r, nil
}

// Query filters List. Zero fields match everything.
type Query struct {
	Package string
	Command string
	Limit   int
}

const selectReceipts = `SELECT id, server, command, package, success, message, duration, details, created_at FROM receipts`

// List returns matching receipts, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Receipt, error) {
	stmt := selectReceipts + ` WHERE (? = '' OR package = ?) AND (? = '' OR command = ?) ORDER BY created_at DESC, rowid DESC`
	args := []any{q.Package, q.Package, q.Command, q.Command}
	if q.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errx.Wrap(ErrQueryReceipts, err)
	}
	defer rows.Close()

	var out []Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.Wrap(ErrQueryReceipts, err)
	}
	return out, nil
}

// Get returns one receipt by ID.
func (s *Store) Get(ctx context.Context, id string) (Receipt, error) {
	row := s.db.QueryRowContext(ctx, selectReceipts+` WHERE id = ?`, id)
	r, err := scanReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Receipt{}, errx.With(ErrReceiptMissing, ": %s", id)
	}
	return r, err
}

// Prune deletes receipts created before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM receipts WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, errx.Wrap(ErrQueryReceipts, err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row scanner) (Receipt, error) {
	var (
		r       Receipt
		blob    []byte
		created int64
	)
	if err := row.Scan(&r.ID, &r.Server, &r.Command, &r.Package, &r.Success, &r.Message, &r.Duration, &blob, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Receipt{}, err
		}
		return Receipt{}, errx.Wrap(ErrQueryReceipts, err)
	}
	r.CreatedAt = time.UnixMilli(created).UTC()

	if len(blob) > 0 {
		var d details
		if err := cbor.Unmarshal(blob, &d); err != nil {
			return Receipt{}, errx.Wrap(ErrDecodeDetails, err)
		}
		r.ProgressErrors = d.ProgressErrors
		r.StackTrace = d.StackTrace
	}
	return r, nil
}
