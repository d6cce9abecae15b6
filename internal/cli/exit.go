package cli

import "fmt"

// Exit codes for the jobdone CLI. These support shell composition:
// `task; jobdone -e $?` callers can distinguish delivery failure from
// misconfiguration.
const (
	// ExitSuccess indicates every configured channel succeeded
	ExitSuccess = 0

	// ExitDeliveryFailed indicates at least one channel failed after
	// exhausting its retries
	ExitDeliveryFailed = 1

	// ExitConfigError indicates a structural error before dispatch
	// (bad arguments or configuration); dispatch never started
	ExitConfigError = 2
)

// exitError is a custom error type that carries an exit code.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// NewExitError creates a new exit error with the given code.
func NewExitError(code int) error {
	return &exitError{code: code}
}

// ExitCode returns the exit code from an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if e, ok := err.(*exitError); ok {
		return e.code
	}
	return ExitConfigError
}
