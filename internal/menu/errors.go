package menu

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAvailable classifies environmental failures: network errors, timeouts,
	// menus that have not been published yet, expected page elements that are gone.
	// Callers should skip the menu for this run or try later.
	ErrNotAvailable = errors.New("menu not available")
	// ErrMalformed classifies violated parsing assumptions. These are data quality
	// bugs to report, retrying will not help.
	ErrMalformed = errors.New("malformed menu")
)

// Error is a classified source failure, compare it with errors.Is against
// ErrNotAvailable or ErrMalformed.
type Error struct {
	kind error
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %s", e.kind, e.msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.kind, e.msg, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Is(target error) bool {
	return target == e.kind
}

func NotAvailable(msg string, err error) error {
	return &Error{kind: ErrNotAvailable, msg: msg, err: err}
}

func Malformed(msg string, err error) error {
	return &Error{kind: ErrMalformed, msg: msg, err: err}
}

func NotAvailablef(format string, args ...any) error {
	return &Error{kind: ErrNotAvailable, msg: fmt.Sprintf(format, args...)}
}

func Malformedf(format string, args ...any) error {
	return &Error{kind: ErrMalformed, msg: fmt.Sprintf(format, args...)}
}

// Recoverable reports whether err is one of the two classified failure kinds.
func Recoverable(err error) bool {
	return errors.Is(err, ErrNotAvailable) || errors.Is(err, ErrMalformed)
}
