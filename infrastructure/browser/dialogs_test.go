package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/domain/entities"
)

func TestDialogQueueAcceptsInOrder(t *testing.T) {
	q := newDialogQueue()
	var accepted []string
	q.push("first", func() error { accepted = append(accepted, "first"); return nil })
	q.push("second", func() error { accepted = append(accepted, "second"); return nil })

	text, err := q.text()
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	require.NoError(t, q.acceptFirst())
	text, err = q.text()
	require.NoError(t, err)
	assert.Equal(t, "second", text)

	require.NoError(t, q.acceptFirst())
	assert.Equal(t, []string{"first", "second"}, accepted)
	assert.ErrorIs(t, q.acceptFirst(), entities.ErrNoAlert)
	_, err = q.text()
	assert.ErrorIs(t, err, entities.ErrNoAlert)
}

func TestDialogQueueRunFailsFastWhileBlocked(t *testing.T) {
	q := newDialogQueue()
	q.push("Record saved", func() error { return nil })

	called := false
	err := q.run(context.Background(), true, func() error { called = true; return nil })
	assert.ErrorIs(t, err, entities.ErrUnexpectedAlert)
	assert.False(t, called)

	q.clear()
	assert.NoError(t, q.run(context.Background(), false, func() error { return nil }))
}

func TestDialogQueueRunReturnsWhenActionOpensDialog(t *testing.T) {
	q := newDialogQueue()
	release := make(chan struct{})
	defer close(release)

	block := func() error {
		q.push("Are you sure?", func() error { return nil })
		<-release
		return nil
	}
	assert.NoError(t, q.run(context.Background(), true, block))
	assert.True(t, q.blocked())
}

func TestDialogQueueRunReadInterruptedByDialog(t *testing.T) {
	q := newDialogQueue()
	release := make(chan struct{})
	defer close(release)

	err := q.run(context.Background(), false, func() error {
		q.push("Session expiring", func() error { return nil })
		<-release
		return nil
	})
	assert.ErrorIs(t, err, entities.ErrUnexpectedAlert)
}

func TestDialogQueueRunClassifiesAndHonorsContext(t *testing.T) {
	q := newDialogQueue()

	err := q.run(context.Background(), false, func() error { return errors.New("JSHandle is disposed") })
	assert.ErrorIs(t, err, entities.ErrStaleElement)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	defer close(release)
	err = q.run(ctx, false, func() error { <-release; return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
