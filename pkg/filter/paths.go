package filter

import (
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds a single rule match against a path.
const MatchTimeout = 100 * time.Millisecond

type compiled struct {
	re  *regexp2.Regexp
	err error
}

// patterns caches anchored rule patterns by source text.
var patterns sync.Map

// IsAncestorOrSelf reports whether ancestor equals path or is one of its
// ancestors by whole path segments, so "/etc" is an ancestor of "/etc/map"
// but not of "/etc2".
func IsAncestorOrSelf(ancestor, path string) bool {
	ancestor = cleanPath(ancestor)
	path = cleanPath(path)
	if ancestor == "" || path == "" {
		return false
	}
	if ancestor == path {
		return true
	}
	if ancestor == "/" {
		return strings.HasPrefix(path, "/")
	}
	return strings.HasPrefix(path, ancestor+"/")
}

// cleanPath drops trailing slashes, keeping a lone "/".
func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

// compileAnchored compiles a rule pattern so it must match the whole input.
// Rule patterns come from Java-based tooling, so they are compiled with
// regexp2 rather than RE2. Results, failures included, are cached.
func compileAnchored(pattern string) (*regexp2.Regexp, error) {
	if c, ok := patterns.Load(pattern); ok {
		return c.(compiled).re, c.(compiled).err
	}
	re, err := regexp2.Compile(`\A(?:`+pattern+`)\z`, regexp2.None)
	if err == nil {
		re.MatchTimeout = MatchTimeout
	}
	c, _ := patterns.LoadOrStore(pattern, compiled{re: re, err: err})
	return c.(compiled).re, c.(compiled).err
}

// ValidatePattern reports whether pattern compiles as a rule pattern.
func ValidatePattern(pattern string) error {
	_, err := regexp2.Compile(pattern, regexp2.None)
	return err
}
