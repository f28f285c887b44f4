package deploy

import "errors"

var (
	ErrInvalidPhase   = errors.New("invalid deployment phase transition")
	ErrUploadRejected = errors.New("upload rejected by server")
	ErrNoPackage      = errors.New("package file or id is required")
)
