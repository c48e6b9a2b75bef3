package entities

// PollOutcome is the result of a wait. Whenever a wait also returns an
// error the outcome is TimedOut.
type PollOutcome int

const (
	TimedOut PollOutcome = iota
	Satisfied
)

func (o PollOutcome) String() string {
	if o == Satisfied {
		return "satisfied"
	}
	return "timed_out"
}

// AlertOutcome reports what happened when draining native dialogs.
type AlertOutcome int

const (
	AlertNotPresent AlertOutcome = iota
	AlertDismissed
	// AlertUnavailable means the session could not be reached at all.
	AlertUnavailable
)

func (o AlertOutcome) String() string {
	switch o {
	case AlertDismissed:
		return "dismissed"
	case AlertUnavailable:
		return "unavailable"
	default:
		return "not_present"
	}
}

// PageMove is the result of a pager transition.
type PageMove int

const (
	NoSuchPage PageMove = iota
	Moved
)

func (m PageMove) String() string {
	if m == Moved {
		return "moved"
	}
	return "no_such_page"
}

// PageCursor is the 1-based index of the rendered result page.
type PageCursor int
