package vault

import "errors"

var (
	ErrOpenArchive     = errors.New("open package archive")
	ErrReadEntry       = errors.New("read archive entry")
	ErrParseProperties = errors.New("parse package properties")
	ErrMissingFilter   = errors.New("package has no workspace filter")
	ErrWriteArchive    = errors.New("write package archive")
)
