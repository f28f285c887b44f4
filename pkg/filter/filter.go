// Package filter models a package's workspace filter: an ordered list of
// roots, each scoped by an ordered list of include/exclude rules.
//
// Rule order is significant everywhere. Two filters are equal only when their
// roots and every root's rules appear in the same order.
package filter

import (
	"slices"
	"strings"
)

// Rule is a single include or exclude entry. Pattern is a regular expression
// body matched against the whole repository path.
type Rule struct {
	Include bool   `json:"include"`
	Pattern string `json:"pattern"`
}

// Include returns an include rule for pattern.
func Include(pattern string) Rule {
	return Rule{Include: true, Pattern: pattern}
}

// Exclude returns an exclude rule for pattern.
func Exclude(pattern string) Rule {
	return Rule{Include: false, Pattern: pattern}
}

// IsAbsolute reports whether the pattern is anchored at an absolute path.
func (r Rule) IsAbsolute() bool {
	return strings.HasPrefix(r.Pattern, "/")
}

// Spec renders the rule in simple spec form: "+pattern" or "-pattern".
func (r Rule) Spec() string {
	if r.Include {
		return "+" + r.Pattern
	}
	return "-" + r.Pattern
}

// Matches reports whether the pattern matches all of path. A pattern that
// does not compile, or whose match runs past MatchTimeout, matches nothing.
func (r Rule) Matches(path string) bool {
	re, err := compileAnchored(r.Pattern)
	if err != nil {
		return false
	}
	ok, err := re.MatchString(path)
	return err == nil && ok
}

// Root is an absolute repository path with the rules scoping it.
type Root struct {
	Path  string `json:"root"`
	Rules []Rule `json:"rules"`
}

// NewRoot builds a Root from a path and rules in declared order.
func NewRoot(path string, rules ...Rule) Root {
	return Root{Path: path, Rules: rules}
}

// Equal compares path and rules, order included.
func (r Root) Equal(other Root) bool {
	return r.Path == other.Path && slices.Equal(r.Rules, other.Rules)
}

// Covers reports whether path is the root path or one of its descendants.
func (r Root) Covers(path string) bool {
	return IsAncestorOrSelf(r.Path, path)
}

// Contains reports whether path is covered by the root and survives its
// rules. With no rules every covered path is contained. Otherwise the
// default is the opposite of the first rule's modifier and the last matching
// rule wins.
func (r Root) Contains(path string) bool {
	if !r.Covers(path) {
		return false
	}
	if len(r.Rules) == 0 {
		return true
	}
	result := !r.Rules[0].Include
	for _, rule := range r.Rules {
		if rule.Matches(path) {
			result = rule.Include
		}
	}
	return result
}

// Spec renders the root and its rules, one per line.
func (r Root) Spec() string {
	var sb strings.Builder
	sb.WriteString(r.Path)
	sb.WriteString("\n")
	for _, rule := range r.Rules {
		sb.WriteString(rule.Spec())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Filter is the ordered set of roots declared by a package or a policy.
type Filter struct {
	Roots []Root
}

// New builds a Filter from roots in declared order.
func New(roots ...Root) Filter {
	return Filter{Roots: roots}
}

// Equal compares roots in order.
func (f Filter) Equal(other Filter) bool {
	return slices.EqualFunc(f.Roots, other.Roots, Root.Equal)
}

// Covers reports whether any root covers path.
func (f Filter) Covers(path string) bool {
	for _, root := range f.Roots {
		if root.Covers(path) {
			return true
		}
	}
	return false
}

// CoveringRoot returns the most specific root covering path. Among roots
// with the same path the first declared wins.
func (f Filter) CoveringRoot(path string) (Root, bool) {
	best := -1
	for i, root := range f.Roots {
		if !root.Covers(path) {
			continue
		}
		if best < 0 || len(cleanPath(root.Path)) > len(cleanPath(f.Roots[best].Path)) {
			best = i
		}
	}
	if best < 0 {
		return Root{}, false
	}
	return f.Roots[best], true
}

// Contains returns the first root that includes path.
func (f Filter) Contains(path string) (Root, bool) {
	for _, root := range f.Roots {
		if root.Contains(path) {
			return root, true
		}
	}
	return Root{}, false
}

// Spec renders the filter in simple spec form.
func (f Filter) Spec() string {
	var sb strings.Builder
	for _, root := range f.Roots {
		sb.WriteString(root.Spec())
	}
	return sb.String()
}
