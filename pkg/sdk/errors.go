package sdk

import "errors"

// Session errors (Login, CheckAvailability, WaitForService)
var (
	ErrLogin        = errors.New("failed to login using provided credentials")
	ErrUnauthorized = errors.New("401 unauthorized")
)

// Request errors
var (
	ErrBuildRequest  = errors.New("build request")
	ErrSendRequest   = errors.New("send request")
	ErrOpenPackage   = errors.New("open package file")
	ErrPackIDMissing = errors.New("package id is required")
	ErrCreateDir     = errors.New("create download directory")
)
