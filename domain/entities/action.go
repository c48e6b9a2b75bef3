package entities

import "time"

// ActionKind represents the type of interaction the runner performs
type ActionKind string

const (
	ActionClick        ActionKind = "click"
	ActionSetText      ActionKind = "setText"
	ActionSelectOption ActionKind = "selectOption"
)

// Readiness is the pre-action wait applied to the target.
type Readiness int

const (
	ReadyNone Readiness = iota
	ReadyVisible
	ReadyClickable
)

// ActionOptions parameterizes a single interaction.
type ActionOptions struct {
	// Text is the value written by ActionSetText.
	Text string
	// Label selects an option by its visible text.
	Label string
	// Index selects an option by position when ByIndex is set.
	Index   int
	ByIndex bool

	Await Readiness
	// Timeout bounds the resolve and readiness waits; zero means the engine default.
	Timeout time.Duration
}
