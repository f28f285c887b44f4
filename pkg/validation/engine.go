// Package validation decides whether a content package may be deployed
// under a site's policy.
package validation

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/vault"
)

// Package is what the validator needs from a package archive.
type Package interface {
	Identify(strict bool) (*api.PackID, error)
	EntryNames() ([]string, error)
	MetaInf() (*api.MetaInf, error)
}

// Validator applies one policy to any number of packages. It holds no
// mutable state and is safe for concurrent use.
type Validator struct {
	opts Options
	log  *zap.Logger
}

func NewValidator(opts Options, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{opts: opts, log: log}
}

// ValidateFile opens the archive at path and validates it. An archive that
// cannot be opened fails identification.
func (v *Validator) ValidateFile(path string) Result {
	a, err := vault.Open(path)
	if err != nil {
		v.log.Debug("open package failed", zap.String("path", path), zap.Error(err))
		return failedToID(err)
	}
	defer a.Close()

	result := v.Validate(a)
	v.log.Debug("validated package", zap.String("path", path), zap.String("result", result.String()))
	return result
}

// Validate runs the checks in order and returns the first failure.
func (v *Validator) Validate(pkg Package) Result {
	id, err := pkg.Identify(true)
	if err != nil {
		v.log.Debug("identify failed", zap.Error(err))
		return failedToID(err)
	}
	if id == nil {
		v.log.Debug("package has no identity")
		return failedToID(nil)
	}
	log := v.log.With(zap.Stringer("package", id))

	if v.opts.ForbiddenExtensions != nil {
		if result := v.checkForbiddenExtensions(pkg); !result.OK() {
			log.Debug("forbidden extension", zap.String("entry", result.ForbiddenEntry), zap.Error(result.Cause))
			return result
		}
	}

	meta, err := pkg.MetaInf()
	if err != nil {
		log.Debug("read meta-inf failed", zap.Error(err))
		if errors.Is(err, api.ErrInvalidMetaInf) {
			return invalidMetaInf(err)
		}
		return failedToOpen(err)
	}

	checks := []struct {
		name string
		fn   func(*api.MetaInf) Result
	}{
		{"acHandling", v.checkACHandling},
		{"forbidden root prefix", v.checkForbiddenRootPrefixes},
		{"denied path inclusion", v.checkDeniedPaths},
		{"filter coverage", func(m *api.MetaInf) Result { return CheckFilter(v.opts, m.Filter) }},
	}
	for _, check := range checks {
		result := check.fn(meta)
		log.Debug("check", zap.String("check", check.name), zap.String("result", result.String()))
		if !result.OK() {
			return result
		}
	}
	return Success()
}

func (v *Validator) checkForbiddenExtensions(pkg Package) Result {
	var exts []string
	for _, ext := range v.opts.ForbiddenExtensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}

	names, err := pkg.EntryNames()
	if err != nil {
		return failedToOpen(err)
	}
	for _, name := range names {
		if !strings.HasPrefix(name, vault.ContentRoot) || strings.HasSuffix(name, "/") {
			continue
		}
		for _, ext := range exts {
			if strings.HasSuffix(name, ext) {
				return forbiddenExtension(name)
			}
		}
	}
	return Success()
}

func (v *Validator) checkACHandling(meta *api.MetaInf) Result {
	if meta.ACHandling != api.ACHandlingUnset && v.opts.acHandlingForbidden(meta.ACHandling) {
		return forbiddenACHandling(meta.ACHandling)
	}
	return Success()
}

func (v *Validator) checkForbiddenRootPrefixes(meta *api.MetaInf) Result {
	for _, prefix := range v.opts.ForbiddenFilterRootPrefixes {
		trimmed := strings.TrimSpace(prefix)
		if trimmed == "" {
			continue
		}
		normalized := "/" + strings.Trim(trimmed, "/")
		for _, root := range meta.Filter.Roots {
			if normalized == "/" || root.Path == normalized || strings.HasPrefix(root.Path, normalized+"/") {
				return forbiddenRootPrefix(prefix, root)
			}
		}
	}
	return Success()
}

func (v *Validator) checkDeniedPaths(meta *api.MetaInf) Result {
	for _, path := range v.opts.PathsDeniedForInclusion {
		if root, ok := meta.Filter.Contains(path); ok {
			return deniedPathInclusion(path, root)
		}
	}
	return Success()
}

var _ Package = (*vault.Archive)(nil)
