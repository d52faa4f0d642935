package cli

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/summarize/prompt"
	"github.com/randalmurphal/summarize/summarize"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1 // backend failure or empty output
	ExitUsage    = 2 // missing input, bad flag, unsupported style, bad config
	ExitNotFound = 3 // input file does not exist
)

// exitError carries the message shown to the user and the exit code.
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string { return e.msg }

func (e *exitError) Unwrap() error { return e.err }

func usageError(format string, args ...any) error {
	return &exitError{code: ExitUsage, msg: fmt.Sprintf(format, args...)}
}

// classify turns any error from the command into a message and exit code.
func classify(err error) (string, int) {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.msg, ee.code
	}

	switch {
	case errors.Is(err, summarize.ErrFileNotFound):
		return err.Error(), ExitNotFound
	case errors.Is(err, prompt.ErrUnsupportedStyle):
		return fmt.Sprintf("%v (run 'summarize list' to see available styles)", err), ExitUsage
	default:
		return fmt.Sprintf("Error: %v", err), ExitFailure
	}
}
