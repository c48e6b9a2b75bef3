package interfaces

import (
	"context"

	"ui_automation/domain/entities"
)

// Session is a single browser session driving the console. Implementations
// translate driver failures into the sentinels in entities so callers can tell
// transient resolution problems from a lost session.
type Session interface {
	// FindElements resolves a selector against the active document. Zero
	// matches is not an error.
	FindElements(ctx context.Context, sel entities.Selector) ([]Element, error)

	// AlertText returns the text of the open native dialog, or ErrNoAlert
	AlertText(ctx context.Context) (string, error)

	// AcceptAlert clicks the default confirmation of the open dialog
	AcceptAlert(ctx context.Context) error

	// Navigate loads a URL
	Navigate(ctx context.Context, url string) error

	// Refresh reloads the current document
	Refresh(ctx context.Context) error

	// CurrentURL returns the URL of the active document
	CurrentURL(ctx context.Context) (string, error)

	// Close ends the session and releases the driver
	Close() error
}

// Element is a handle to a live node. A handle taken before a postback must
// not be reused afterwards; IsAttached reports whether it still belongs to the
// active document.
type Element interface {
	FindElements(ctx context.Context, sel entities.Selector) ([]Element, error)

	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)

	IsDisplayed(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
	IsAttached(ctx context.Context) (bool, error)
	// IsObstructed reports whether another node covers the element's center
	IsObstructed(ctx context.Context) (bool, error)

	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error

	// Options lists the entries of a <select>
	Options(ctx context.Context) ([]entities.Option, error)
	// SelectIndex selects an option of a <select> with simulated input
	SelectIndex(ctx context.Context, index int) error

	// Script variants bypass input simulation and fire the DOM events the
	// page listens to.
	ScriptClick(ctx context.Context) error
	ScriptSetValue(ctx context.Context, value string) error
	ScriptSelectIndex(ctx context.Context, index int) error

	ScrollIntoView(ctx context.Context) error
}
