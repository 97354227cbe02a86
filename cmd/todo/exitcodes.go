package main

import "fmt"

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable or invalid global config)
	ExitDataError   = 3 // Data error (unreadable/unwritable backing file, failed check)
	ExitNotFound    = 4 // No task matched (only with --strict)
	ExitIndexStale  = 5 // SQLite index does not match the backing file
)

// exitError carries an exit code out of a command's RunE.
// An empty message exits with the code without printing anything.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

// exitErrorf builds an exitError with a formatted message.
func exitErrorf(code int, format string, args ...any) error {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}

// exitSilently builds an exitError that prints nothing.
func exitSilently(code int) error {
	return &exitError{code: code}
}
