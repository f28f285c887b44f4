package main

import "errors"

// Config errors
var (
	ErrReadConfig    = errors.New("read config file")
	ErrInitLogger    = errors.New("initialize logger")
	ErrInvalidOutput = errors.New("invalid output format")
	ErrReadPassword  = errors.New("read password")
)

// Package errors
var (
	ErrResolvePackage = errors.New("resolve package")
	ErrIdentify       = errors.New("identify package")
	ErrInvalidFilter  = errors.New("invalid filter")
)

// Server errors
var (
	ErrCreateClient   = errors.New("create client")
	ErrLoginRejected  = errors.New("login rejected")
	ErrWaitForService = errors.New("wait for service")
	ErrNotOnServer    = errors.New("package not found on server")
)

// Validate errors
var (
	ErrLoadPolicy = errors.New("load policy")
)

// History errors
var (
	ErrOpenHistory = errors.New("open history")
)
