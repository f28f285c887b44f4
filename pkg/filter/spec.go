package filter

import (
	"regexp"
	"strings"

	"github.com/granite-tools/packmgr/internal/errx"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// ParseSpec reads the simple line-oriented filter format:
//
//	/etc            # a line starting with "/" opens a new root
//	-/etc/packages(/.*)?
//	+/etc/map(/.*)?
//
// Text after "#" is a comment. The first significant line must open a root,
// and every rule pattern must compile.
func ParseSpec(text string) (Filter, error) {
	var (
		roots    []Root
		current  *Root
		flushCur = func() {
			if current != nil {
				roots = append(roots, *current)
			}
		}
	)

	for i, line := range lineBreak.Split(text, -1) {
		lineNumber := i + 1
		significant := line
		if hash := strings.Index(line, "#"); hash >= 0 {
			significant = line[:hash]
		}
		trimmed := strings.TrimSpace(significant)

		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "/"):
			flushCur()
			current = &Root{Path: trimmed, Rules: []Rule{}}
		case current == nil:
			return Filter{}, errx.With(ErrSpecMissingRoot, ": line %d", lineNumber)
		case strings.HasPrefix(trimmed, "+"), strings.HasPrefix(trimmed, "-"):
			pattern := trimmed[1:]
			if err := ValidatePattern(pattern); err != nil {
				return Filter{}, errx.With(ErrInvalidPattern, ": line %d: %s: %w", lineNumber, pattern, err)
			}
			current.Rules = append(current.Rules, Rule{Include: trimmed[0] == '+', Pattern: pattern})
		default:
			return Filter{}, errx.With(ErrSpecInvalidLine, ": line %d: %s", lineNumber, line)
		}
	}
	flushCur()

	return Filter{Roots: roots}, nil
}
