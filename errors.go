package crontab

import (
	"errors"
	"fmt"

	"github.com/cespare/crontab/cron"
)

// ErrInvalidSpec is matched by every error returned from Parse.
var ErrInvalidSpec = errors.New("crontab: invalid specification")

// A SpecError reports a line of a specification that could not be parsed.
type SpecError struct {
	Line int    // significant line number, counting from 1
	Text string // the line as written, parameters included
	Err  error
}

func (e *SpecError) Error() string {
	cause := e.Err
	var pe *cron.ParseError
	if errors.As(cause, &pe) {
		// The line number and text are already part of this message.
		cause = pe.Err
	}
	return fmt.Sprintf("line %d: invalid input %q: %v", e.Line, e.Text, cause)
}

func (e *SpecError) Unwrap() error { return e.Err }

func (e *SpecError) Is(target error) bool { return target == ErrInvalidSpec }

// errBadTimezone is the cause of a SpecError for a rejected TZ= line.
var errBadTimezone = errors.New("invalid or unsupported timezone")
