package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tebeka/selenium"

	"ui_automation/domain/entities"
)

var sentinels = []error{
	entities.ErrNoSuchElement,
	entities.ErrStaleElement,
	entities.ErrNotInteractable,
	entities.ErrUnexpectedAlert,
	entities.ErrNoAlert,
	entities.ErrSessionLost,
	entities.ErrUnsupportedSelector,
}

// WebDriver error codes, see the "errors" table of the W3C WebDriver spec.
var webDriverCodes = map[string]error{
	"no such element":           entities.ErrNoSuchElement,
	"stale element reference":   entities.ErrStaleElement,
	"element not interactable":  entities.ErrNotInteractable,
	"element click intercepted": entities.ErrNotInteractable,
	"invalid element state":     entities.ErrNotInteractable,
	"element not visible":       entities.ErrNotInteractable,
	"unexpected alert open":     entities.ErrUnexpectedAlert,
	"no such alert":             entities.ErrNoAlert,
	"invalid session id":        entities.ErrSessionLost,
	"no such window":            entities.ErrSessionLost,
	"session not created":       entities.ErrSessionLost,
	"invalid selector":          entities.ErrUnsupportedSelector,
}

// Message fragments reported by Playwright, the DevTools protocol and the
// HTTP transport, lower-cased. Order matters: the first match wins.
var messageFragments = []struct {
	fragment string
	err      error
}{
	{"no dialog is showing", entities.ErrNoAlert},
	{"no such alert", entities.ErrNoAlert},
	{"unexpected alert", entities.ErrUnexpectedAlert},
	{"stale element", entities.ErrStaleElement},
	{"not attached to the dom", entities.ErrStaleElement},
	{"element is not attached", entities.ErrStaleElement},
	{"jshandle is disposed", entities.ErrStaleElement},
	{"execution context was destroyed", entities.ErrStaleElement},
	{"cannot find context with specified id", entities.ErrStaleElement},
	{"could not find node with given id", entities.ErrStaleElement},
	{"no node with given id", entities.ErrStaleElement},
	{"node with given id does not belong to the document", entities.ErrStaleElement},
	{"target page, context or browser has been closed", entities.ErrSessionLost},
	{"browser has been closed", entities.ErrSessionLost},
	{"target closed", entities.ErrSessionLost},
	{"invalid session id", entities.ErrSessionLost},
	{"connection refused", entities.ErrSessionLost},
	{"broken pipe", entities.ErrSessionLost},
	{"websocket", entities.ErrSessionLost},
	{"is not a valid selector", entities.ErrUnsupportedSelector},
	{"unknown engine", entities.ErrUnsupportedSelector},
	{"invalid selector", entities.ErrUnsupportedSelector},
	{"no such element", entities.ErrNoSuchElement},
	{"element is not visible", entities.ErrNotInteractable},
	{"element is not enabled", entities.ErrNotInteractable},
	{"element is outside of the viewport", entities.ErrNotInteractable},
	{"intercepts pointer events", entities.ErrNotInteractable},
	{"not interactable", entities.ErrNotInteractable},
	{"click intercepted", entities.ErrNotInteractable},
}

// Classify maps a driver error onto the entities sentinels. The original
// error stays in the message; errors that already carry a sentinel, context
// errors and unknown errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err
		}
	}

	var wdErr *selenium.Error
	if errors.As(err, &wdErr) {
		if s, ok := webDriverCodes[wdErr.Err]; ok {
			return fmt.Errorf("%w: %s", s, wdErr.Message)
		}
	}

	msg := strings.ToLower(err.Error())
	for _, f := range messageFragments {
		if strings.Contains(msg, f.fragment) {
			return fmt.Errorf("%w: %v", f.err, err)
		}
	}
	return err
}
