package entities

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoSuchElement is returned when a selector matches nothing
	ErrNoSuchElement = errors.New("no such element")

	// ErrStaleElement is returned when a handle is no longer attached to the document
	ErrStaleElement = errors.New("stale element reference")

	// ErrNotInteractable is returned when an element cannot receive input right now
	ErrNotInteractable = errors.New("element not interactable")

	// ErrUnexpectedAlert is returned when a native dialog blocks the page
	ErrUnexpectedAlert = errors.New("unexpected alert open")

	// ErrNoAlert is returned when no native dialog is showing
	ErrNoAlert = errors.New("no alert open")

	// ErrSessionLost is returned when the browser session is gone. It is never
	// absorbed by waits or guards.
	ErrSessionLost = errors.New("browser session lost")

	// ErrIndeterminatePage is returned when no page is rendered as current
	ErrIndeterminatePage = errors.New("current page is indeterminate")

	// ErrUnsupportedSelector is returned when a driver cannot evaluate a strategy
	ErrUnsupportedSelector = errors.New("unsupported selector strategy")
)

// IsSessionFatal reports whether err means the session cannot be used again.
func IsSessionFatal(err error) bool {
	return errors.Is(err, ErrSessionLost)
}

// IsTransient reports whether err is an expected resolution failure while the
// page is still changing.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNoSuchElement) ||
		errors.Is(err, ErrStaleElement) ||
		errors.Is(err, ErrNotInteractable) ||
		errors.Is(err, ErrUnexpectedAlert)
}

// TimeoutError reports a wait whose condition never held.
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
	// LastErr is the last transient error seen while polling, if any.
	LastErr error
}

func (e *TimeoutError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("timed out after %s waiting for %s (last error: %v)", e.Timeout, e.Condition, e.LastErr)
	}
	return fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Condition)
}

// OptionNotFoundError reports a select option that does not exist.
type OptionNotFoundError struct {
	Selector Selector
	Label    string
	Index    int
	ByIndex  bool
}

func (e *OptionNotFoundError) Error() string {
	if e.ByIndex {
		return fmt.Sprintf("option index %d not found in %s", e.Index, e.Selector)
	}
	return fmt.Sprintf("option %q not found in %s", e.Label, e.Selector)
}

// FilterNotSettledError reports a filter whose options never stabilized.
type FilterNotSettledError struct {
	Filter   FilterName
	Selector Selector
	Cause    error
}

func (e *FilterNotSettledError) Error() string {
	return fmt.Sprintf("filter %s (%s) did not settle: %v", e.Filter, e.Selector, e.Cause)
}

func (e *FilterNotSettledError) Unwrap() error {
	return e.Cause
}
