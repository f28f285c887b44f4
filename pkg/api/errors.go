package api

import "errors"

var (
	ErrUnsupportedCommand = errors.New("command not supported by service")
	ErrUnexpectedStatus   = errors.New("unexpected response status")
	ErrMalformedResponse  = errors.New("failed to parse service response")
	ErrReadResponse       = errors.New("read service response")
	ErrUnsupportedCharset = errors.New("unsupported response charset")
	ErrServiceTimeout     = errors.New("service timeout exceeded")

	ErrInvalidPID        = errors.New("invalid package id")
	ErrInvalidPackPath   = errors.New("invalid package installation path")
	ErrInvalidACHandling = errors.New("invalid acHandling mode")
	ErrInvalidMetaInf    = errors.New("invalid package META-INF")

	ErrInvalidConfig = errors.New("invalid configuration")
)
