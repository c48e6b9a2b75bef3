package wait

import (
	"context"
	"errors"
	"time"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Locate resolves sel once. A driver reporting "no such element" for a
// multi-element lookup is folded into an empty result.
func Locate(ctx context.Context, s interfaces.Session, sel entities.Selector) ([]interfaces.Element, error) {
	els, err := s.FindElements(ctx, sel)
	if errors.Is(err, entities.ErrNoSuchElement) {
		return nil, nil
	}
	return els, err
}

// LocateWithin resolves sel under a parent element.
func LocateWithin(ctx context.Context, parent interfaces.Element, sel entities.Selector) ([]interfaces.Element, error) {
	els, err := parent.FindElements(ctx, sel)
	if errors.Is(err, entities.ErrNoSuchElement) {
		return nil, nil
	}
	return els, err
}

// Resolve returns the current matches of sel without waiting.
func (e *Engine) Resolve(ctx context.Context, sel entities.Selector) ([]interfaces.Element, error) {
	return Locate(ctx, e.session, sel)
}

// First waits until sel matches at least one element and returns the first
// match in document order.
func (e *Engine) First(ctx context.Context, sel entities.Selector, timeout time.Duration) (interfaces.Element, error) {
	var found interfaces.Element
	cond := Condition{
		Description: "presence of " + sel.String(),
		Check: func(ctx context.Context, s interfaces.Session) (bool, error) {
			els, err := Locate(ctx, s, sel)
			if err != nil || len(els) == 0 {
				return false, err
			}
			found = els[0]
			return true, nil
		},
	}
	if _, err := e.Await(ctx, cond, timeout, 0); err != nil {
		return nil, err
	}
	return found, nil
}
