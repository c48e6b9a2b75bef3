package wait

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func countingCondition(trueAfter int, errFor func(call int) error) (Condition, *int) {
	calls := 0
	return Condition{
		Description: "counter",
		Check: func(context.Context, interfaces.Session) (bool, error) {
			calls++
			if errFor != nil {
				if err := errFor(calls); err != nil {
					return false, err
				}
			}
			return calls >= trueAfter, nil
		},
	}, &calls
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(nil, nil, 0, -time.Second)
	assert.Equal(t, DefaultTimeout, e.Timeout())
	assert.Equal(t, DefaultInterval, e.Interval())
	assert.NotNil(t, e.Logger())
}

func TestAwaitSatisfiedAfterPolls(t *testing.T) {
	e := NewEngine(nil, quietLogger(), time.Second, 5*time.Millisecond)
	cond, calls := countingCondition(3, nil)

	start := time.Now()
	outcome, err := e.Await(context.Background(), cond, 0, 0)

	require.NoError(t, err)
	assert.Equal(t, entities.Satisfied, outcome)
	assert.Equal(t, 3, *calls)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond, "must sleep between polls")
}

func TestAwaitTimesOutWithDescription(t *testing.T) {
	e := NewEngine(nil, quietLogger(), time.Second, time.Millisecond)
	cond, calls := countingCondition(1<<30, nil)

	outcome, err := e.Await(context.Background(), cond, 20*time.Millisecond, 5*time.Millisecond)

	assert.Equal(t, entities.TimedOut, outcome)
	var te *entities.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "counter", te.Condition)
	assert.Equal(t, 20*time.Millisecond, te.Timeout)
	assert.True(t, IsTimeout(err))
	assert.GreaterOrEqual(t, *calls, 2)
}

func TestAwaitAbsorbsTransientErrors(t *testing.T) {
	e := NewEngine(nil, quietLogger(), time.Second, time.Millisecond)
	cond, calls := countingCondition(4, func(call int) error {
		if call < 4 {
			return entities.ErrStaleElement
		}
		return nil
	})

	outcome, err := e.Await(context.Background(), cond, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, entities.Satisfied, outcome)
	assert.Equal(t, 4, *calls)
}

func TestAwaitKeepsLastTransientError(t *testing.T) {
	e := NewEngine(nil, quietLogger(), time.Second, time.Millisecond)
	cond, _ := countingCondition(1<<30, func(int) error { return entities.ErrNoSuchElement })

	_, err := e.Await(context.Background(), cond, 10*time.Millisecond, 0)
	var te *entities.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, te.LastErr, entities.ErrNoSuchElement)
}

func TestAwaitPropagatesSessionLoss(t *testing.T) {
	e := NewEngine(nil, quietLogger(), time.Second, time.Millisecond)
	cond, calls := countingCondition(10, func(int) error {
		return errors.Join(errors.New("invalid session id"), entities.ErrSessionLost)
	})

	outcome, err := e.Await(context.Background(), cond, 0, 0)
	assert.Equal(t, entities.TimedOut, outcome)
	assert.ErrorIs(t, err, entities.ErrSessionLost)
	assert.False(t, IsTimeout(err))
	assert.Equal(t, 1, *calls)
}

func TestAwaitStopsOnContextCancel(t *testing.T) {
	e := NewEngine(nil, quietLogger(), 10*time.Second, 5*time.Millisecond)
	cond, _ := countingCondition(1<<30, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := e.Await(ctx, cond, 0, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestUntilWithin(t *testing.T) {
	e := NewEngine(nil, quietLogger(), time.Second, time.Millisecond)
	cond, _ := countingCondition(2, nil)
	assert.NoError(t, e.UntilWithin(context.Background(), cond, 50*time.Millisecond))

	never, _ := countingCondition(1<<30, nil)
	assert.True(t, IsTimeout(e.UntilWithin(context.Background(), never, 10*time.Millisecond)))
}
