package main

// Exit codes beyond the generic failure of 1.
const (
	exitCommandFailed = 2
	exitInvalid       = 3
)

// exitCodeError ends the process with a specific code after the command has
// already reported its outcome.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return ""
}

func (e *exitCodeError) ExitCode() int {
	return e.code
}

func commandExit(code int) error {
	if code == 0 {
		return nil
	}
	return &exitCodeError{code: code}
}
