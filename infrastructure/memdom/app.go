// Package memdom is an in-memory browser session over parsed HTML. A
// server-side App renders documents and answers events the way a postback
// application does: every response replaces the whole document, so handles
// taken before it become stale.
//
// Differences from a real browser that matter to callers:
//   - an <option> is selected only when it carries the selected attribute,
//     so a <select> may report no selection at all
//   - nodes carrying data-obstructed (or inside one) refuse simulated clicks
//     and typing, while script actions still reach them
//   - an open alert blocks every call except the alert calls
package memdom

import (
	"net/url"
	"time"
)

// EventKind is what the page sends to the App.
type EventKind int

const (
	// EventNavigate is a GET of Event.URL.
	EventNavigate EventKind = iota
	// EventClick is a click on a button or a __doPostBack link.
	EventClick
	// EventChange is a change on an auto-postback field.
	EventChange
)

func (k EventKind) String() string {
	switch k {
	case EventNavigate:
		return "navigate"
	case EventClick:
		return "click"
	case EventChange:
		return "change"
	}
	return "unknown"
}

// Event is a request from the page to the App.
type Event struct {
	Kind EventKind
	// URL is the absolute URL for navigation and the current URL otherwise.
	URL string
	// Target is the id (or postback target) of the element that fired.
	Target string
	// Argument is the __doPostBack argument, e.g. "Page$2".
	Argument string
	// Form holds the current field values keyed by name.
	Form url.Values
}

// Response is the App's answer. An empty HTML keeps the current document.
type Response struct {
	HTML string
	// URL replaces the current URL when set.
	URL string
	// Alert opens a native dialog with this text.
	Alert string
	// Delay postpones the response, modelling a slow server round trip.
	Delay time.Duration
}

// App is the server side of a memdom session. It is called with the
// session's lock held and must not call back into the session.
type App interface {
	Handle(ev Event) Response
}

// AppFunc adapts a function to App.
type AppFunc func(ev Event) Response

func (f AppFunc) Handle(ev Event) Response { return f(ev) }
