package api

import (
	"cmp"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/granite-tools/packmgr/internal/errx"
)

// PackagesRoot is the repository folder under which packages are installed.
const PackagesRoot = "/etc/packages/"

var pidPattern = regexp.MustCompile(`^([^:]+):([^:]+)(:([^:]*))?$`)

// PackID identifies a package by group, name and version.
type PackID struct {
	Group            string `json:"group"`
	Name             string `json:"name"`
	Version          string `json:"version"`
	InstallationPath string `json:"installationPath"`
}

// NewPackID builds a PackID. Group and name are required.
func NewPackID(group, name, version string) (*PackID, error) {
	group = strings.Trim(strings.TrimSpace(group), "/")
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)
	if group == "" || name == "" {
		return nil, errx.With(ErrInvalidPID, " group=%q name=%q", group, name)
	}

	installPath := PackagesRoot + group + "/" + name
	if version != "" {
		installPath += "-" + version
	}
	return &PackID{
		Group:            group,
		Name:             name,
		Version:          version,
		InstallationPath: installPath,
	}, nil
}

// ParsePID parses "group:name[:version]".
func ParsePID(pid string) (*PackID, error) {
	m := pidPattern.FindStringSubmatch(strings.TrimSpace(pid))
	if m == nil {
		return nil, errx.With(ErrInvalidPID, " %q", pid)
	}
	return NewPackID(m[1], m[2], m[4])
}

// PackIDFromPath recovers a PackID from an installation path such as
// "/etc/packages/my_packages/foo-1.0.zip". The version starts at the first
// dash-separated segment of the file name that begins with a digit.
func PackIDFromPath(p string) (*PackID, error) {
	if !strings.HasPrefix(p, PackagesRoot) {
		return nil, errx.With(ErrInvalidPackPath, " %q", p)
	}
	rel := strings.TrimPrefix(p, PackagesRoot)
	for _, ext := range []string{".zip", ".jar"} {
		rel = strings.TrimSuffix(rel, ext)
	}

	group, file := path.Split(rel)
	group = strings.Trim(group, "/")
	if group == "" || file == "" {
		return nil, errx.With(ErrInvalidPackPath, " %q", p)
	}

	name, version := splitNameVersion(file)
	return NewPackID(group, name, version)
}

func splitNameVersion(file string) (string, string) {
	segments := strings.Split(file, "-")
	for i := 1; i < len(segments); i++ {
		if segments[i] != "" && unicode.IsDigit(rune(segments[i][0])) {
			return strings.Join(segments[:i], "-"), strings.Join(segments[i:], "-")
		}
	}
	return file, ""
}

func (id PackID) String() string {
	return id.Group + ":" + id.Name + ":" + id.Version
}

// Equal compares every field including the installation path.
func (id PackID) Equal(other PackID) bool {
	return id == other
}

// Compare orders by group, then name, then version.
func (id PackID) Compare(other PackID) int {
	if c := strings.Compare(id.Group, other.Group); c != 0 {
		return c
	}
	if c := strings.Compare(id.Name, other.Name); c != 0 {
		return c
	}
	return CompareVersions(id.Version, other.Version)
}

// CompareVersions compares dotted or dashed version strings segment by
// segment, numerically when both segments are numbers. A version that is a
// prefix of another sorts first.
func CompareVersions(a, b string) int {
	if a == b {
		return 0
	}
	as, bs := versionSegments(a), versionSegments(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.ParseInt(as[i], 10, 64)
		bn, berr := strconv.ParseInt(bs[i], 10, 64)
		var c int
		if aerr == nil && berr == nil {
			c = cmp.Compare(an, bn)
		} else {
			c = strings.Compare(as[i], bs[i])
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(len(as), len(bs))
}

func versionSegments(v string) []string {
	if v == "" {
		return nil
	}
	return strings.FieldsFunc(v, func(r rune) bool { return r == '.' || r == '-' })
}
