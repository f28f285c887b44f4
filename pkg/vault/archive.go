// Package vault reads content package archives: a zip file carrying
// META-INF/vault metadata and repository content under jcr_root/.
package vault

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/filter"
)

const (
	// ContentRoot prefixes every repository content entry.
	ContentRoot = "jcr_root/"

	// DefaultGroup is assumed for a package identified by file name only.
	DefaultGroup = "my_packages"
)

// Archive is an open package file.
type Archive struct {
	path  string
	zr    *zip.ReadCloser
	files map[string]*zip.File
}

// Open opens the package archive at path.
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errx.With(ErrOpenArchive, " %s: %w", path, err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	return &Archive{path: path, zr: zr, files: files}, nil
}

func (a *Archive) Close() error {
	return a.zr.Close()
}

// Path is the file the archive was opened from.
func (a *Archive) Path() string {
	return a.path
}

// EntryNames lists every entry in archive order. Directory entries end with
// "/".
func (a *Archive) EntryNames() ([]string, error) {
	names := make([]string, 0, len(a.zr.File))
	for _, f := range a.zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// Properties returns the entries of META-INF/vault/properties.xml. The
// boolean is false when the archive has no properties entry.
func (a *Archive) Properties() (map[string]string, bool, error) {
	data, ok, err := a.read(PropertiesPath)
	if err != nil || !ok {
		return nil, false, err
	}
	props, err := ParseProperties(bytes.NewReader(data))
	if err != nil {
		return nil, true, err
	}
	return props, true, nil
}

// Identify resolves the package id from its properties: group, name and
// version first, then an installation path property. Without strict, a
// package that cannot be identified that way is named after its file.
// A strict identification that finds nothing returns a nil id and no error.
func (a *Archive) Identify(strict bool) (*api.PackID, error) {
	props, _, err := a.Properties()
	if err != nil {
		return nil, err
	}
	if id := identifyProperties(props); id != nil {
		return id, nil
	}
	if strict {
		return nil, nil
	}
	return api.PackIDFromPath(api.PackagesRoot + DefaultGroup + "/" + filepath.Base(a.path))
}

func identifyProperties(props map[string]string) *api.PackID {
	if props == nil {
		return nil
	}
	if id, err := api.NewPackID(props[PropGroup], props[PropName], props[PropVersion]); err == nil {
		return id
	}
	if p := props[PropPath]; strings.HasPrefix(p, api.PackagesRoot) {
		if id, err := api.PackIDFromPath(p); err == nil {
			return id
		}
	}
	return nil
}

// MetaInf reads the workspace filter and declared access control handling.
// A missing or unreadable filter, malformed properties or an unknown
// acHandling value make the metadata invalid.
func (a *Archive) MetaInf() (*api.MetaInf, error) {
	data, ok, err := a.read(filter.FilterXMLPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errx.Wrap(api.ErrInvalidMetaInf, ErrMissingFilter)
	}
	f, err := filter.ParseXML(bytes.NewReader(data))
	if err != nil {
		return nil, errx.Wrap(api.ErrInvalidMetaInf, err)
	}

	props, _, err := a.Properties()
	if err != nil {
		if errors.Is(err, ErrParseProperties) {
			return nil, errx.Wrap(api.ErrInvalidMetaInf, err)
		}
		return nil, err
	}

	meta := &api.MetaInf{Filter: f, Properties: props}
	if raw := strings.TrimSpace(props[PropACHandling]); raw != "" {
		mode, err := api.ParseACHandling(raw)
		if err != nil {
			return nil, errx.Wrap(api.ErrInvalidMetaInf, err)
		}
		meta.ACHandling = mode
	}
	return meta, nil
}

func (a *Archive) read(name string) ([]byte, bool, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, true, errx.With(ErrReadEntry, " %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, true, errx.With(ErrReadEntry, " %s: %w", name, err)
	}
	return data, true, nil
}
