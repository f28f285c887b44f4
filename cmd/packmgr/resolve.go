package main

import (
	"os"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/vault"
)

// resolvePackage accepts either a package file or a "group:name[:version]"
// id. For files the returned path is set.
func resolvePackage(arg string) (*api.PackID, string, error) {
	if fi, err := os.Stat(arg); err == nil && fi.Mode().IsRegular() {
		id, err := identifyFile(arg, false)
		if err != nil {
			return nil, "", err
		}
		return id, arg, nil
	}
	id, err := api.ParsePID(arg)
	if err != nil {
		return nil, "", errx.With(ErrResolvePackage, ": %q is neither a package file nor a package id: %w", arg, err)
	}
	return id, "", nil
}

func identifyFile(path string, strict bool) (*api.PackID, error) {
	a, err := vault.Open(path)
	if err != nil {
		return nil, errx.Wrap(ErrIdentify, err)
	}
	defer a.Close()

	id, err := a.Identify(strict)
	if err != nil {
		return nil, errx.Wrap(ErrIdentify, err)
	}
	if id == nil {
		return nil, errx.With(ErrIdentify, ": %s has no package properties", path)
	}
	return id, nil
}
