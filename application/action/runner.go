package action

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ui_automation/application/wait"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Runner performs interactions with one synchronization and retry policy:
// resolve, wait for readiness, run the primary strategy, and on failure run
// the scripted fallback exactly once.
type Runner struct {
	engine *wait.Engine
	logger *logrus.Logger
}

func NewRunner(engine *wait.Engine) *Runner {
	return &Runner{engine: engine, logger: engine.Logger()}
}

func (r *Runner) Engine() *wait.Engine { return r.engine }

// target is what an action works on. sel is zero for handles passed in by
// the caller, which cannot be re-resolved.
type target struct {
	sel entities.Selector
	el  interfaces.Element
}

func (t target) String() string {
	if t.sel.IsZero() {
		return "element"
	}
	return t.sel.String()
}

// Perform runs one action against the first element matching sel. It returns
// only once the action completed or failed.
func (r *Runner) Perform(ctx context.Context, kind entities.ActionKind, sel entities.Selector, opts entities.ActionOptions) error {
	el, err := r.engine.First(ctx, sel, opts.Timeout)
	if err != nil {
		return fmt.Errorf("%s %s: %w", kind, sel, err)
	}
	return r.run(ctx, kind, target{sel: sel, el: el}, opts)
}

func (r *Runner) Click(ctx context.Context, sel entities.Selector) error {
	return r.Perform(ctx, entities.ActionClick, sel, entities.ActionOptions{Await: entities.ReadyClickable})
}

// SetText replaces the field's content with text.
func (r *Runner) SetText(ctx context.Context, sel entities.Selector, text string) error {
	return r.Perform(ctx, entities.ActionSetText, sel, entities.ActionOptions{Text: text, Await: entities.ReadyVisible})
}

func (r *Runner) SelectLabel(ctx context.Context, sel entities.Selector, label string) error {
	return r.Perform(ctx, entities.ActionSelectOption, sel, entities.ActionOptions{Label: label, Await: entities.ReadyVisible})
}

func (r *Runner) SelectIndex(ctx context.Context, sel entities.Selector, index int) error {
	return r.Perform(ctx, entities.ActionSelectOption, sel, entities.ActionOptions{Index: index, ByIndex: true, Await: entities.ReadyVisible})
}

// SelectOrIndex selects by label and falls back to index when the label does
// not exist.
func (r *Runner) SelectOrIndex(ctx context.Context, sel entities.Selector, label string, index int) error {
	err := r.SelectLabel(ctx, sel, label)
	var notFound *entities.OptionNotFoundError
	if errors.As(err, &notFound) {
		r.logger.Warnf("Option %q missing in %s, selecting index %d", label, sel, index)
		return r.SelectIndex(ctx, sel, index)
	}
	return err
}

// SetSlider moves a range input to value. Range inputs take no keystrokes,
// so the value is set by script, which fires the field's change handler.
// When that handler posts back the read-back is skipped and the caller waits
// for whatever the new page should show.
func (r *Runner) SetSlider(ctx context.Context, sel entities.Selector, value string) error {
	el, err := r.engine.First(ctx, sel, 0)
	if err != nil {
		return fmt.Errorf("%s %s: %w", entities.ActionSetText, sel, err)
	}
	t := target{sel: sel, el: el}
	if err := r.ready(ctx, t, entities.ActionOptions{Await: entities.ReadyVisible}); err != nil {
		return fmt.Errorf("%s %s: %w", entities.ActionSetText, sel, err)
	}
	if err := el.ScriptSetValue(ctx, value); err != nil {
		return fmt.Errorf("%s %s: %w", entities.ActionSetText, sel, err)
	}
	if attached, err := el.IsAttached(ctx); err != nil || !attached {
		return nil
	}
	if err := verifyValue(ctx, el, value); err != nil {
		return fmt.Errorf("%s %s: %w", entities.ActionSetText, sel, err)
	}
	r.logger.Debugf("slider %s set to %s", sel, value)
	return nil
}

// ClickElement clicks a handle the caller already holds.
func (r *Runner) ClickElement(ctx context.Context, el interfaces.Element, timeout time.Duration) error {
	return r.run(ctx, entities.ActionClick, target{el: el}, entities.ActionOptions{Await: entities.ReadyClickable, Timeout: timeout})
}

func (r *Runner) run(ctx context.Context, kind entities.ActionKind, t target, opts entities.ActionOptions) error {
	primaryErr := r.ready(ctx, t, opts)
	if primaryErr == nil {
		primaryErr = r.primary(ctx, kind, t, opts)
		if primaryErr == nil {
			r.logger.Debugf("%s on %s", kind, t)
			return nil
		}
	}

	var notFound *entities.OptionNotFoundError
	if entities.IsSessionFatal(primaryErr) || errors.As(primaryErr, &notFound) || ctx.Err() != nil {
		return fmt.Errorf("%s %s: %w", kind, t, primaryErr)
	}

	r.logger.Warnf("%s on %s failed, retrying with script: %v", kind, t, primaryErr)

	if attached, err := t.el.IsAttached(ctx); (err != nil || !attached) && !t.sel.IsZero() {
		fresh, err := r.engine.First(ctx, t.sel, opts.Timeout)
		if err != nil {
			return fmt.Errorf("%s %s: re-resolve after %v: %w", kind, t, primaryErr, err)
		}
		t.el = fresh
	}

	if err := r.fallback(ctx, kind, t, opts); err != nil {
		return fmt.Errorf("%s %s: fallback failed after %v: %w", kind, t, primaryErr, err)
	}
	r.logger.Infof("%s on %s succeeded via script", kind, t)
	return nil
}

func (r *Runner) ready(ctx context.Context, t target, opts entities.ActionOptions) error {
	var cond wait.Condition
	switch opts.Await {
	case entities.ReadyClickable:
		cond = wait.ElementClickable(t.el)
	case entities.ReadyVisible:
		cond = elementVisible(t.el)
	default:
		return nil
	}
	cond.Description += " " + t.String()
	_, err := r.engine.Await(ctx, cond, opts.Timeout, 0)
	return err
}

func elementVisible(el interfaces.Element) wait.Condition {
	return wait.Condition{
		Description: "visibility of",
		Check: func(ctx context.Context, _ interfaces.Session) (bool, error) {
			shown, err := el.IsDisplayed(ctx)
			if err != nil && entities.IsTransient(err) {
				return false, nil
			}
			return shown, err
		},
	}
}

func (r *Runner) primary(ctx context.Context, kind entities.ActionKind, t target, opts entities.ActionOptions) error {
	switch kind {
	case entities.ActionClick:
		return t.el.Click(ctx)
	case entities.ActionSetText:
		if err := t.el.Clear(ctx); err != nil {
			return err
		}
		if err := t.el.SendKeys(ctx, opts.Text); err != nil {
			return err
		}
		return verifyValue(ctx, t.el, opts.Text)
	case entities.ActionSelectOption:
		idx, err := optionIndex(ctx, t, opts)
		if err != nil {
			return err
		}
		return t.el.SelectIndex(ctx, idx)
	}
	return fmt.Errorf("unknown action %q", kind)
}

func (r *Runner) fallback(ctx context.Context, kind entities.ActionKind, t target, opts entities.ActionOptions) error {
	switch kind {
	case entities.ActionClick:
		return t.el.ScriptClick(ctx)
	case entities.ActionSetText:
		if err := t.el.ScriptSetValue(ctx, opts.Text); err != nil {
			return err
		}
		return verifyValue(ctx, t.el, opts.Text)
	case entities.ActionSelectOption:
		idx, err := optionIndex(ctx, t, opts)
		if err != nil {
			return err
		}
		return t.el.ScriptSelectIndex(ctx, idx)
	}
	return fmt.Errorf("unknown action %q", kind)
}

// verifyValue reads a field back after writing it.
func verifyValue(ctx context.Context, el interfaces.Element, want string) error {
	got, err := el.Attribute(ctx, "value")
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("field reads %q after writing %q: %w", got, want, entities.ErrNotInteractable)
	}
	return nil
}

func optionIndex(ctx context.Context, t target, opts entities.ActionOptions) (int, error) {
	options, err := t.el.Options(ctx)
	if err != nil {
		return 0, err
	}
	notFound := &entities.OptionNotFoundError{Selector: t.sel, Label: opts.Label, Index: opts.Index, ByIndex: opts.ByIndex}
	if opts.ByIndex {
		if opts.Index < 0 || opts.Index >= len(options) {
			return 0, notFound
		}
		return opts.Index, nil
	}
	want := strings.TrimSpace(opts.Label)
	for _, o := range options {
		if strings.TrimSpace(o.Label) == want {
			return o.Index, nil
		}
	}
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o.Label), want) {
			return o.Index, nil
		}
	}
	return 0, notFound
}
