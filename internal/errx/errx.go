// Package errx wraps sentinel errors with context while keeping both the
// sentinel and the underlying cause reachable through errors.Is.
package errx

import "fmt"

// Wrap returns an error that matches both sentinel and cause.
// A nil cause returns the sentinel unchanged.
func Wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// With formats extra context after the sentinel message. The format is
// appended verbatim, so callers supply their own separator (": %s", " %q").
func With(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w"+format, append([]any{sentinel}, args...)...)
}
