package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

const (
	// DefaultTimeout bounds the check for a dialog that may or may not open.
	DefaultTimeout = 2 * time.Second
	// SettleDelay is observed after accepting; the console re-renders right
	// after the dialog closes.
	SettleDelay  = 120 * time.Millisecond
	pollInterval = 100 * time.Millisecond
)

// Result of draining a native dialog.
type Result struct {
	Outcome entities.AlertOutcome
	// Text of the accepted dialog.
	Text string
}

// Guard detects and accepts native dialogs without failing when none is open.
type Guard struct {
	session interfaces.Session
	logger  *logrus.Logger
	settle  time.Duration
}

func NewGuard(session interfaces.Session, logger *logrus.Logger) *Guard {
	if logger == nil {
		logger = logrus.New()
	}
	return &Guard{session: session, logger: logger, settle: SettleDelay}
}

// DismissIfPresent waits up to timeout for a dialog and accepts it. No dialog
// is the common case and yields NotPresent. A session that cannot be reached
// yields Unavailable; this never returns an error.
func (g *Guard) DismissIfPresent(ctx context.Context, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)

	for {
		text, err := g.session.AlertText(ctx)
		switch {
		case err == nil:
			return g.accept(ctx, text)
		case entities.IsSessionFatal(err) || ctx.Err() != nil:
			g.logger.Warnf("Alert check failed, session unavailable: %v", err)
			return Result{Outcome: entities.AlertUnavailable}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Result{Outcome: entities.AlertNotPresent}
		}
		sleep := pollInterval
		if remaining < sleep {
			sleep = remaining
		}
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Result{Outcome: entities.AlertUnavailable}
		case <-timer.C:
		}
	}
}

func (g *Guard) accept(ctx context.Context, text string) Result {
	if err := g.session.AcceptAlert(ctx); err != nil {
		if errors.Is(err, entities.ErrNoAlert) {
			// closed by the page between the two calls
			return Result{Outcome: entities.AlertNotPresent}
		}
		if entities.IsSessionFatal(err) {
			g.logger.Warnf("Alert accept failed, session unavailable: %v", err)
			return Result{Outcome: entities.AlertUnavailable}
		}
		g.logger.Warnf("Failed to accept alert %q: %v", text, err)
		return Result{Outcome: entities.AlertNotPresent}
	}
	g.logger.Infof("Accepted alert: %s", text)

	timer := time.NewTimer(g.settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	return Result{Outcome: entities.AlertDismissed, Text: text}
}

// Drain accepts every dialog that shows up within timeout, one after another,
// and returns the accepted texts. An unavailable session is reported as
// ErrSessionLost.
func (g *Guard) Drain(ctx context.Context, timeout time.Duration) ([]string, error) {
	var texts []string
	for {
		res := g.DismissIfPresent(ctx, timeout)
		switch res.Outcome {
		case entities.AlertDismissed:
			texts = append(texts, res.Text)
			// chained dialogs open immediately, so only look briefly
			timeout = pollInterval
		case entities.AlertUnavailable:
			if ctx.Err() != nil {
				return texts, fmt.Errorf("draining alerts: %w", ctx.Err())
			}
			return texts, fmt.Errorf("draining alerts: %w", entities.ErrSessionLost)
		default:
			return texts, nil
		}
	}
}
