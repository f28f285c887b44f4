package filter

import "errors"

var (
	ErrSpecMissingRoot = errors.New("filter spec must begin with an absolute path representing the first filter root")
	ErrSpecInvalidLine = errors.New("invalid filter spec line")
	ErrInvalidPattern  = errors.New("invalid rule pattern")
	ErrDecodeXML       = errors.New("decode filter xml")
	ErrEncodeXML       = errors.New("encode filter xml")
	ErrMissingRootPath = errors.New("filter root path is required")
	ErrUnknownModifier = errors.New("unknown rule modifier")
)
