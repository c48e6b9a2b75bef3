package action

import (
	"context"
	"fmt"
	"strings"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Text returns the trimmed text of the first match of sel.
func (r *Runner) Text(ctx context.Context, sel entities.Selector) (string, error) {
	el, err := r.engine.First(ctx, sel, 0)
	if err != nil {
		return "", fmt.Errorf("read text of %s: %w", sel, err)
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", fmt.Errorf("read text of %s: %w", sel, err)
	}
	return strings.TrimSpace(text), nil
}

// Value returns the current value of a form field.
func (r *Runner) Value(ctx context.Context, sel entities.Selector) (string, error) {
	return r.Attribute(ctx, sel, "value")
}

// Attribute reads an attribute (or the live property of the same name) of
// the first match of sel.
func (r *Runner) Attribute(ctx context.Context, sel entities.Selector, name string) (string, error) {
	el, err := r.engine.First(ctx, sel, 0)
	if err != nil {
		return "", fmt.Errorf("read %s of %s: %w", name, sel, err)
	}
	v, err := el.Attribute(ctx, name)
	if err != nil {
		return "", fmt.Errorf("read %s of %s: %w", name, sel, err)
	}
	return v, nil
}

// Options lists the entries of a <select>.
func (r *Runner) Options(ctx context.Context, sel entities.Selector) ([]entities.Option, error) {
	el, err := r.engine.First(ctx, sel, 0)
	if err != nil {
		return nil, fmt.Errorf("read options of %s: %w", sel, err)
	}
	opts, err := el.Options(ctx)
	if err != nil {
		return nil, fmt.Errorf("read options of %s: %w", sel, err)
	}
	return opts, nil
}

// SelectedOption returns the selected entry of a <select>. ok is false when
// the browser reports no selection.
func (r *Runner) SelectedOption(ctx context.Context, sel entities.Selector) (opt entities.Option, ok bool, err error) {
	opts, err := r.Options(ctx, sel)
	if err != nil {
		return entities.Option{}, false, err
	}
	for _, o := range opts {
		if o.Selected {
			return o, true, nil
		}
	}
	return entities.Option{}, false, nil
}

// ScrollIntoView is best-effort: failures are logged, not returned.
func (r *Runner) ScrollIntoView(ctx context.Context, el interfaces.Element) {
	if err := el.ScrollIntoView(ctx); err != nil {
		r.logger.Warnf("Failed to scroll to element: %v", err)
	}
}
