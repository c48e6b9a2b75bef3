package wait

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
	DefaultTimeout  = 12 * time.Second
	DefaultInterval = 250 * time.Millisecond
)

// Condition is a side-effect free predicate over the session. Conditions may
// keep state between polls of a single wait, so build a fresh one per call.
type Condition struct {
	Description string
	Check       func(ctx context.Context, s interfaces.Session) (bool, error)
}

func (c Condition) String() string {
	return c.Description
}

// Engine polls conditions against one session.
type Engine struct {
	session  interfaces.Session
	logger   *logrus.Logger
	timeout  time.Duration
	interval time.Duration
}

// NewEngine creates an engine. Non-positive durations use the defaults.
func NewEngine(session interfaces.Session, logger *logrus.Logger, timeout, interval time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		session:  session,
		logger:   logger,
		timeout:  timeout,
		interval: interval,
	}
}

func (e *Engine) Session() interfaces.Session { return e.session }
func (e *Engine) Logger() *logrus.Logger       { return e.logger }
func (e *Engine) Timeout() time.Duration       { return e.timeout }
func (e *Engine) Interval() time.Duration      { return e.interval }

// Await evaluates cond until it holds or timeout elapses, sleeping interval
// between evaluations. Transient errors count as "not yet"; a lost session,
// an unsupported selector or a done context end the wait immediately.
func (e *Engine) Await(ctx context.Context, cond Condition, timeout, interval time.Duration) (entities.PollOutcome, error) {
	if timeout <= 0 {
		timeout = e.timeout
	}
	if interval <= 0 {
		interval = e.interval
	}

	deadline := time.Now().Add(timeout)
	polls := 0
	var lastErr error

	for {
		polls++
		ok, err := cond.Check(ctx, e.session)
		switch {
		case err != nil && abortsWait(err):
			return entities.TimedOut, fmt.Errorf("waiting for %s: %w", cond.Description, err)
		case err != nil:
			lastErr = err
		case ok:
			return entities.Satisfied, nil
		}

		if ctx.Err() != nil {
			return entities.TimedOut, fmt.Errorf("waiting for %s: %w", cond.Description, ctx.Err())
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		sleep := interval
		if remaining < sleep {
			sleep = remaining
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return entities.TimedOut, fmt.Errorf("waiting for %s: %w", cond.Description, ctx.Err())
		case <-timer.C:
		}
	}

	e.logger.Debugf("Timed out after %s (%d polls) waiting for %s", timeout, polls, cond.Description)
	return entities.TimedOut, &entities.TimeoutError{
		Condition: cond.Description,
		Timeout:   timeout,
		LastErr:   lastErr,
	}
}

// Until waits with the engine defaults and reports only the error.
func (e *Engine) Until(ctx context.Context, cond Condition) error {
	_, err := e.Await(ctx, cond, 0, 0)
	return err
}

// UntilWithin waits at most timeout with the default interval.
func (e *Engine) UntilWithin(ctx context.Context, cond Condition, timeout time.Duration) error {
	_, err := e.Await(ctx, cond, timeout, 0)
	return err
}

func abortsWait(err error) bool {
	return entities.IsSessionFatal(err) ||
		errors.Is(err, entities.ErrUnsupportedSelector) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// IsTimeout reports whether err came from a wait that ran out of time.
func IsTimeout(err error) bool {
	var te *entities.TimeoutError
	return errors.As(err, &te)
}
