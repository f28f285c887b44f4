package validation

import "errors"

var (
	ErrReadPolicy        = errors.New("read policy")
	ErrParsePolicy       = errors.New("parse policy")
	ErrInvalidStrictness = errors.New("invalid strictness")
)
