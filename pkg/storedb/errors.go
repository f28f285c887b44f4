package storedb

import "errors"

// Open errors
var (
	ErrDBPathRequired  = errors.New("database path is required")
	ErrSchemaRequired  = errors.New("schema name is required")
	ErrOpenDB          = errors.New("open database")
	ErrConfigureDB     = errors.New("configure database")
	ErrOpenInitLock    = errors.New("open database init lock")
	ErrAcquireInitLock = errors.New("acquire database init lock")
	ErrReleaseInitLock = errors.New("release database init lock")
)

// Migration errors
var (
	ErrCreateVersionTable = errors.New("create schema_versions table")
	ErrReadVersions       = errors.New("read applied schema versions")
	ErrDuplicateMigration = errors.New("duplicate migration version")
	ErrApplyMigration     = errors.New("apply migration")
	ErrRecordMigration    = errors.New("record migration")
	ErrCommitMigration    = errors.New("commit migration")
)
