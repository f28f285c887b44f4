package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/filter"
	"github.com/granite-tools/packmgr/pkg/vault"
)

type fakePackage struct {
	id         *api.PackID
	idErr      error
	entries    []string
	entriesErr error
	meta       *api.MetaInf
	metaErr    error

	entriesCalled bool
	metaCalled    bool
}

func (p *fakePackage) Identify(bool) (*api.PackID, error) { return p.id, p.idErr }

func (p *fakePackage) EntryNames() ([]string, error) {
	p.entriesCalled = true
	return p.entries, p.entriesErr
}

func (p *fakePackage) MetaInf() (*api.MetaInf, error) {
	p.metaCalled = true
	return p.meta, p.metaErr
}

func recapPackage(t *testing.T) *fakePackage {
	t.Helper()
	id, err := api.NewPackID("adamcin", "recap", "0.8.0")
	require.NoError(t, err)
	return &fakePackage{
		id: id,
		entries: []string{
			"META-INF/vault/properties.xml",
			"META-INF/vault/filter.xml",
			"jcr_root/libs/recap/",
			"jcr_root/libs/recap/install/",
			"jcr_root/libs/recap/install/recap-graniteclient-0.8.0.jar",
			"jcr_root/libs/recap/components/addressbook/.content.xml",
		},
		meta: &api.MetaInf{
			Filter: filter.New(
				filter.NewRoot("/libs/recap"),
				filter.NewRoot("/etc/recap", filter.Exclude("/etc/recap/data(/.*)?")),
			),
			ACHandling: api.ACHandlingIgnore,
		},
	}
}

func TestValidateSuccess(t *testing.T) {
	v := NewValidator(Options{}, zaptest.NewLogger(t))
	assert.Equal(t, Success(), v.Validate(recapPackage(t)))
}

func TestValidateFailedToID(t *testing.T) {
	v := NewValidator(Options{ForbiddenExtensions: []string{".jar"}}, nil)

	pkg := recapPackage(t)
	pkg.id = nil
	result := v.Validate(pkg)
	assert.Equal(t, ReasonFailedToID, result.Reason)
	assert.Nil(t, result.Cause)
	assert.False(t, pkg.entriesCalled, "identification failure short-circuits")
	assert.False(t, pkg.metaCalled)

	cause := errors.New("corrupt properties")
	pkg = recapPackage(t)
	pkg.idErr = cause
	result = v.Validate(pkg)
	assert.Equal(t, ReasonFailedToID, result.Reason)
	assert.Same(t, cause, result.Cause)
}

func TestValidateForbiddenExtensions(t *testing.T) {
	tests := []struct {
		name string
		exts []string
		want Reason
	}{
		{"unset", nil, ReasonSuccess},
		{"jar with dot", []string{".jar"}, ReasonForbiddenExtension},
		{"jar without dot", []string{" jar "}, ReasonForbiddenExtension},
		{"zip", []string{"zip"}, ReasonSuccess},
		{"blank only", []string{"", "  "}, ReasonSuccess},
		{"case sensitive", []string{".JAR"}, ReasonSuccess},
		{"xml under jcr_root", []string{".xml"}, ReasonForbiddenExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewValidator(Options{ForbiddenExtensions: tt.exts}, nil).Validate(recapPackage(t))
			assert.Equal(t, tt.want, result.Reason)
		})
	}

	result := NewValidator(Options{ForbiddenExtensions: []string{"jar"}}, nil).Validate(recapPackage(t))
	assert.Equal(t, "jcr_root/libs/recap/install/recap-graniteclient-0.8.0.jar", result.ForbiddenEntry)

	result = NewValidator(Options{ForbiddenExtensions: []string{".xml"}}, nil).Validate(recapPackage(t))
	assert.Equal(t, "jcr_root/libs/recap/components/addressbook/.content.xml", result.ForbiddenEntry,
		"only entries under jcr_root are scanned")
}

func TestValidateEntryListingFailure(t *testing.T) {
	pkg := recapPackage(t)
	pkg.entriesErr = errors.New("truncated central directory")

	result := NewValidator(Options{ForbiddenExtensions: []string{".jar"}}, nil).Validate(pkg)
	assert.Equal(t, ReasonFailedToOpen, result.Reason)
	assert.Same(t, pkg.entriesErr, result.Cause)
	assert.False(t, pkg.metaCalled)

	pkg = recapPackage(t)
	pkg.entriesErr = errors.New("unused")
	assert.True(t, NewValidator(Options{}, nil).Validate(pkg).OK(), "entries are only listed when extensions are forbidden")
}

func TestValidateMetaInfFailures(t *testing.T) {
	pkg := recapPackage(t)
	pkg.metaErr = errors.Join(api.ErrInvalidMetaInf, errors.New("no filter"))
	assert.Equal(t, ReasonInvalidMetaInf, NewValidator(Options{}, nil).Validate(pkg).Reason)

	pkg = recapPackage(t)
	pkg.metaErr = errors.New("disk read failed")
	result := NewValidator(Options{}, nil).Validate(pkg)
	assert.Equal(t, ReasonFailedToOpen, result.Reason)
	assert.Same(t, pkg.metaErr, result.Cause)
}

func TestValidateForbiddenACHandling(t *testing.T) {
	v := NewValidator(Options{ForbiddenACHandlingModes: api.ACHandlingModes()}, nil)
	result := v.Validate(recapPackage(t))
	assert.Equal(t, ReasonForbiddenACHandling, result.Reason)
	assert.Equal(t, api.ACHandlingIgnore, result.ForbiddenACHandling)

	pkg := recapPackage(t)
	pkg.meta.ACHandling = api.ACHandlingUnset
	assert.True(t, v.Validate(pkg).OK(), "a package declaring no mode passes")

	v = NewValidator(Options{ForbiddenACHandlingModes: []api.ACHandling{api.ACHandlingClear}}, nil)
	assert.True(t, v.Validate(recapPackage(t)).OK())
}

func TestValidateForbiddenRootPrefix(t *testing.T) {
	tests := []struct {
		name     string
		prefixes []string
		want     Reason
		root     string
	}{
		{"exact", []string{"/libs/recap"}, ReasonForbiddenFilterRootPrefix, "/libs/recap"},
		{"ancestor", []string{"libs/"}, ReasonForbiddenFilterRootPrefix, "/libs/recap"},
		{"segment only", []string{"/libs/rec"}, ReasonSuccess, ""},
		{"second root", []string{"  /etc//  "}, ReasonForbiddenFilterRootPrefix, "/etc/recap"},
		{"blank", []string{"", " "}, ReasonSuccess, ""},
		{"descendant", []string{"/libs/recap/install"}, ReasonSuccess, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewValidator(Options{ForbiddenFilterRootPrefixes: tt.prefixes}, nil).Validate(recapPackage(t))
			require.Equal(t, tt.want, result.Reason)
			if tt.root != "" {
				assert.Equal(t, tt.root, result.InvalidRoot.Path)
				assert.Contains(t, tt.prefixes, result.ForbiddenEntry, "the configured prefix is reported")
			}
		})
	}
}

func TestValidateDeniedPathInclusion(t *testing.T) {
	v := NewValidator(Options{PathsDeniedForInclusion: []string{"/etc/recap/data/x", "/libs/recap/install"}}, nil)
	result := v.Validate(recapPackage(t))
	require.Equal(t, ReasonDeniedPathInclusion, result.Reason)
	assert.Equal(t, "/libs/recap/install", result.ForbiddenEntry)
	assert.Equal(t, "/libs/recap", result.InvalidRoot.Path)

	v = NewValidator(Options{PathsDeniedForInclusion: []string{"/etc/recap/data/x", "/content"}}, nil)
	assert.True(t, v.Validate(recapPackage(t)).OK())
}

func TestValidateOrder(t *testing.T) {
	policy := filter.New(filter.NewRoot("/content"))
	opts := Options{
		ValidationFilter:            &policy,
		ForbiddenACHandlingModes:    []api.ACHandling{api.ACHandlingIgnore},
		ForbiddenFilterRootPrefixes: []string{"/libs"},
		PathsDeniedForInclusion:     []string{"/libs/recap/install"},
	}
	v := NewValidator(opts, nil)
	assert.Equal(t, ReasonForbiddenACHandling, v.Validate(recapPackage(t)).Reason)

	opts.ForbiddenACHandlingModes = nil
	v = NewValidator(opts, nil)
	assert.Equal(t, ReasonForbiddenFilterRootPrefix, v.Validate(recapPackage(t)).Reason)

	opts.ForbiddenFilterRootPrefixes = nil
	v = NewValidator(opts, nil)
	assert.Equal(t, ReasonDeniedPathInclusion, v.Validate(recapPackage(t)).Reason)

	opts.PathsDeniedForInclusion = nil
	v = NewValidator(opts, nil)
	assert.Equal(t, ReasonRootNotAllowed, v.Validate(recapPackage(t)).Reason)

	opts.AllowNonCoveredRoots = true
	v = NewValidator(opts, nil)
	assert.Equal(t, Success(), v.Validate(recapPackage(t)))
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	id, err := api.NewPackID("adamcin", "recap", "0.8.0")
	require.NoError(t, err)

	path := filepath.Join(dir, "recap-0.8.0.zip")
	require.NoError(t, vault.WriteFile(path, vault.Contents{
		ID:     *id,
		Filter: filter.New(filter.NewRoot("/libs/recap")),
		Files: map[string][]byte{
			"libs/recap/install/recap-graniteclient-0.8.0.jar": []byte("jar"),
		},
	}))

	v := NewValidator(Options{ForbiddenExtensions: []string{".jar"}}, zaptest.NewLogger(t))
	result := v.ValidateFile(path)
	assert.Equal(t, ReasonForbiddenExtension, result.Reason)

	v = NewValidator(Options{ForbiddenExtensions: []string{".zip"}}, nil)
	assert.Equal(t, Success(), v.ValidateFile(path))

	broken := filepath.Join(dir, "broken.zip")
	require.NoError(t, os.WriteFile(broken, []byte("not a zip"), 0o644))
	result = v.ValidateFile(broken)
	assert.Equal(t, ReasonFailedToID, result.Reason)
	assert.ErrorIs(t, result.Cause, vault.ErrOpenArchive)
}

func TestResultString(t *testing.T) {
	root := filter.NewRoot("/apps/site")
	covering := filter.NewRoot("/apps")
	assert.Equal(t, "SUCCESS", Success().String())
	assert.Equal(t, "ROOT_MISSING_RULES: /apps/site (covered by /apps)", rootMissingRules(root, covering).String())
	assert.Equal(t, "FORBIDDEN_ACHANDLING: MergePreserve", forbiddenACHandling(api.ACHandlingMergePreserve).String())
	assert.Equal(t, "FAILED_TO_ID", failedToID(nil).String())
}
