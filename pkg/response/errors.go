package response

import "errors"

var (
	ErrDecodeJSON          = errors.New("decode json response")
	ErrInvalidListResult   = errors.New("invalid list result")
	ErrDownloadToDirectory = errors.New("cannot download to a directory")
	ErrWriteDownload       = errors.New("write download")
)
