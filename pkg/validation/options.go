package validation

import (
	"strings"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/filter"
)

// Strictness selects which rules of a covering policy root a package root
// must end with.
type Strictness int

const (
	// StrictnessAll requires every rule of the covering root.
	StrictnessAll Strictness = iota
	// StrictnessAbsoluteOnly requires only rules whose pattern starts with "/".
	StrictnessAbsoluteOnly
)

func (s Strictness) String() string {
	switch s {
	case StrictnessAbsoluteOnly:
		return "absolute-only"
	default:
		return "all"
	}
}

func ParseStrictness(s string) (Strictness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StrictnessAll, nil
	case "absolute-only", "absolute":
		return StrictnessAbsoluteOnly, nil
	}
	return StrictnessAll, errx.With(ErrInvalidStrictness, " %q", s)
}

func (s Strictness) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strictness) UnmarshalText(text []byte) error {
	v, err := ParseStrictness(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Options is a deployment policy.
type Options struct {
	// ValidationFilter is the policy filter package roots are checked
	// against. Nil skips the coverage check.
	ValidationFilter *filter.Filter
	// AllowNonCoveredRoots lets package roots outside every policy root pass.
	AllowNonCoveredRoots bool
	Strictness           Strictness
	// ForbiddenExtensions are file name suffixes not allowed under
	// jcr_root/. Nil disables the scan.
	ForbiddenExtensions         []string
	ForbiddenACHandlingModes    []api.ACHandling
	ForbiddenFilterRootPrefixes []string
	PathsDeniedForInclusion     []string
}

// comparedRules returns the rules that take part in the suffix comparison.
// Under absolute-only strictness relative patterns are dropped from both the
// covering root and the package root.
func (o Options) comparedRules(rules []filter.Rule) []filter.Rule {
	if o.Strictness != StrictnessAbsoluteOnly {
		return rules
	}
	var abs []filter.Rule
	for _, rule := range rules {
		if rule.IsAbsolute() {
			abs = append(abs, rule)
		}
	}
	return abs
}

func (o Options) acHandlingForbidden(mode api.ACHandling) bool {
	for _, forbidden := range o.ForbiddenACHandlingModes {
		if forbidden == mode {
			return true
		}
	}
	return false
}
