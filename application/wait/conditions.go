package wait

import (
	"context"
	"fmt"
	"strings"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// absorb turns transient resolution errors into "not yet".
func absorb(ok bool, err error) (bool, error) {
	if err == nil {
		return ok, nil
	}
	if entities.IsTransient(err) {
		return false, nil
	}
	return false, err
}

func first(ctx context.Context, s interfaces.Session, sel entities.Selector) (interfaces.Element, error) {
	els, err := Locate(ctx, s, sel)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}

// PresentAndAtLeastOne holds once sel matches one or more elements.
func PresentAndAtLeastOne(sel entities.Selector) Condition {
	return Condition{
		Description: "presence of " + sel.String(),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			els, err := Locate(ctx, s, sel)
			return absorb(len(els) > 0, err)
		},
	}
}

// Visible holds once the first match of sel is displayed.
func Visible(sel entities.Selector) Condition {
	return Condition{
		Description: "visibility of " + sel.String(),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			el, err := first(ctx, s, sel)
			if err != nil || el == nil {
				return absorb(false, err)
			}
			return absorb(el.IsDisplayed(ctx))
		},
	}
}

// Invisible holds when sel matches nothing or every match is hidden. A match
// that detaches while being inspected counts as hidden.
func Invisible(sel entities.Selector) Condition {
	return Condition{
		Description: "invisibility of " + sel.String(),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			els, err := Locate(ctx, s, sel)
			if err != nil {
				return absorb(false, err)
			}
			for _, el := range els {
				shown, err := el.IsDisplayed(ctx)
				if err != nil {
					if entities.IsTransient(err) {
						continue
					}
					return false, err
				}
				if shown {
					return false, nil
				}
			}
			return true, nil
		},
	}
}

// Stale holds once el is no longer attached to the active document.
func Stale(el interfaces.Element) Condition {
	return Condition{
		Description: "staleness of previous element",
		Check: func(ctx context.Context, _ interfaces.Session) (bool, error) {
			if el == nil {
				return true, nil
			}
			attached, err := el.IsAttached(ctx)
			if err != nil {
				if entities.IsTransient(err) {
					return false, nil
				}
				return false, err
			}
			return !attached, nil
		},
	}
}

// TextEquals holds once the first match's trimmed text equals expected.
func TextEquals(sel entities.Selector, expected string) Condition {
	want := strings.TrimSpace(expected)
	return Condition{
		Description: fmt.Sprintf("text of %s to be %q", sel, want),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			el, err := first(ctx, s, sel)
			if err != nil || el == nil {
				return absorb(false, err)
			}
			text, err := el.Text(ctx)
			return absorb(strings.TrimSpace(text) == want, err)
		},
	}
}

// TextMatchesAny holds once the first match's text equals one of expected,
// ignoring case and surrounding whitespace.
func TextMatchesAny(sel entities.Selector, expected []string) Condition {
	return Condition{
		Description: fmt.Sprintf("text of %s to be one of %q", sel, expected),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			el, err := first(ctx, s, sel)
			if err != nil || el == nil {
				return absorb(false, err)
			}
			text, err := el.Text(ctx)
			return absorb(MatchesAnyLabel(text, expected), err)
		},
	}
}

// Clickable holds once the first match is displayed, enabled and uncovered.
func Clickable(sel entities.Selector) Condition {
	return Condition{
		Description: "clickability of " + sel.String(),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			el, err := first(ctx, s, sel)
			if err != nil || el == nil {
				return absorb(false, err)
			}
			return absorb(isClickable(ctx, el))
		},
	}
}

// ElementClickable is Clickable for an already resolved handle.
func ElementClickable(el interfaces.Element) Condition {
	return Condition{
		Description: "clickability of element",
		Check: func(ctx context.Context, _ interfaces.Session) (bool, error) {
			return absorb(isClickable(ctx, el))
		},
	}
}

func isClickable(ctx context.Context, el interfaces.Element) (bool, error) {
	shown, err := el.IsDisplayed(ctx)
	if err != nil || !shown {
		return false, err
	}
	enabled, err := el.IsEnabled(ctx)
	if err != nil || !enabled {
		return false, err
	}
	covered, err := el.IsObstructed(ctx)
	if err != nil {
		return false, err
	}
	return !covered, nil
}

// SelectReady holds once a <select> is displayed, enabled and has options.
func SelectReady(sel entities.Selector) Condition {
	return Condition{
		Description: "readiness of select " + sel.String(),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			el, err := first(ctx, s, sel)
			if err != nil || el == nil {
				return absorb(false, err)
			}
			shown, err := el.IsDisplayed(ctx)
			if err != nil || !shown {
				return absorb(false, err)
			}
			enabled, err := el.IsEnabled(ctx)
			if err != nil || !enabled {
				return absorb(false, err)
			}
			opts, err := el.Options(ctx)
			return absorb(len(opts) > 0, err)
		},
	}
}

// OptionsStable holds once two consecutive polls see the same non-zero
// option count.
func OptionsStable(sel entities.Selector) Condition {
	previous := -1
	return Condition{
		Description: "stable options of " + sel.String(),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			el, err := first(ctx, s, sel)
			if err != nil || el == nil {
				previous = -1
				return absorb(false, err)
			}
			opts, err := el.Options(ctx)
			if err != nil {
				previous = -1
				return absorb(false, err)
			}
			count := len(opts)
			stable := count > 0 && count == previous
			previous = count
			return stable, nil
		},
	}
}

// SelectSettled holds once a <select> is displayed, enabled and two
// consecutive ready polls see the same non-zero option count. A poll where
// the select is missing, hidden or disabled forgets the previous count, so a
// refill is always read twice after it completes.
func SelectSettled(sel entities.Selector) Condition {
	previous := -1
	return Condition{
		Description: "settled options of " + sel.String(),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			el, err := first(ctx, s, sel)
			if err != nil || el == nil {
				previous = -1
				return absorb(false, err)
			}
			ready, err := isReadySelect(ctx, el)
			if err != nil || !ready {
				previous = -1
				return absorb(false, err)
			}
			opts, err := el.Options(ctx)
			if err != nil {
				previous = -1
				return absorb(false, err)
			}
			count := len(opts)
			stable := count > 0 && count == previous
			previous = count
			return stable, nil
		},
	}
}

func isReadySelect(ctx context.Context, el interfaces.Element) (bool, error) {
	shown, err := el.IsDisplayed(ctx)
	if err != nil || !shown {
		return false, err
	}
	return el.IsEnabled(ctx)
}

// HasSelection holds once a <select> reports a selected option.
func HasSelection(sel entities.Selector) Condition {
	return SelectedTextMatchesAny(sel, nil)
}

// SelectedTextMatchesAny holds once the selected option's label is one of
// labels. An empty labels list accepts any selection.
func SelectedTextMatchesAny(sel entities.Selector, labels []string) Condition {
	desc := "a selection in " + sel.String()
	if len(labels) > 0 {
		desc = fmt.Sprintf("selection of %s to be one of %q", sel, labels)
	}
	return Condition{
		Description: desc,
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			el, err := first(ctx, s, sel)
			if err != nil || el == nil {
				return absorb(false, err)
			}
			opts, err := el.Options(ctx)
			if err != nil {
				return absorb(false, err)
			}
			for _, o := range opts {
				if !o.Selected {
					continue
				}
				return len(labels) == 0 || MatchesAnyLabel(o.Label, labels), nil
			}
			return false, nil
		},
	}
}

// All holds when every condition holds.
func All(conds ...Condition) Condition {
	names := make([]string, len(conds))
	for i, c := range conds {
		names[i] = c.Description
	}
	return Condition{
		Description: strings.Join(names, " and "),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			for _, c := range conds {
				ok, err := absorb(c.Check(ctx, s))
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		},
	}
}

// Any holds when at least one condition holds.
func Any(conds ...Condition) Condition {
	names := make([]string, len(conds))
	for i, c := range conds {
		names[i] = c.Description
	}
	return Condition{
		Description: strings.Join(names, " or "),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			for _, c := range conds {
				ok, err := absorb(c.Check(ctx, s))
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		},
	}
}

// Not inverts c. Errors are not inverted.
func Not(c Condition) Condition {
	return Condition{
		Description: "not " + c.Description,
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			ok, err := c.Check(ctx, s)
			if err != nil {
				return absorb(false, err)
			}
			return !ok, nil
		},
	}
}

// MatchesAnyLabel compares text against labels ignoring case and surrounding
// whitespace.
func MatchesAnyLabel(text string, labels []string) bool {
	text = strings.TrimSpace(text)
	for _, l := range labels {
		if strings.EqualFold(text, strings.TrimSpace(l)) {
			return true
		}
	}
	return false
}
