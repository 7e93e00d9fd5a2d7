package main

import "fmt"

// Exit codes for the sonarstep CLI.
const (
	ExitOK          = 0 // Every invocation routed to the success path.
	ExitInvalidArgs = 1 // Invalid arguments, config, or input files.
	ExitStepError   = 2 // At least one invocation routed to the error path.
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

// exitError creates an exitCodeError. If msg is empty, the error message is
// set to a generic description of the exit code.
func exitError(code int, format string, args ...any) *exitCodeError {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		switch code {
		case ExitStepError:
			msg = "sonarstep: step routed to error path"
		default:
			msg = "sonarstep: error"
		}
	}
	return &exitCodeError{code: code, msg: msg}
}
