package browser

import (
	"context"
	"sync"

	"ui_automation/domain/entities"
)

type openDialog struct {
	message string
	accept  func() error
}

// dialogQueue tracks native dialogs reported by event-driven drivers. While a
// dialog is open the page's script is blocked, so calls that need the page
// fail fast with ErrUnexpectedAlert instead of hanging.
type dialogQueue struct {
	mu      sync.Mutex
	open    []openDialog
	changed chan struct{}
}

func newDialogQueue() *dialogQueue {
	return &dialogQueue{changed: make(chan struct{})}
}

func (d *dialogQueue) push(message string, accept func() error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = append(d.open, openDialog{message: message, accept: accept})
	close(d.changed)
	d.changed = make(chan struct{})
}

// clear forgets every dialog, for drivers that report dialogs closing.
func (d *dialogQueue) clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = nil
}

func (d *dialogQueue) blocked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.open) > 0
}

func (d *dialogQueue) text() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.open) == 0 {
		return "", entities.ErrNoAlert
	}
	return d.open[0].message, nil
}

func (d *dialogQueue) acceptFirst() error {
	d.mu.Lock()
	if len(d.open) == 0 {
		d.mu.Unlock()
		return entities.ErrNoAlert
	}
	dlg := d.open[0]
	d.open = d.open[1:]
	d.mu.Unlock()
	return dlg.accept()
}

func (d *dialogQueue) opened() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.changed
}

// run calls fn unless a dialog is open. When a dialog opens while fn is
// running, run stops waiting: an action (which likely opened it) counts as
// done, anything else fails with ErrUnexpectedAlert. fn keeps running until
// the dialog is accepted.
func (d *dialogQueue) run(ctx context.Context, action bool, fn func() error) error {
	if d.blocked() {
		return entities.ErrUnexpectedAlert
	}
	opened := d.opened()
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return Classify(err)
	case <-opened:
		if action {
			return nil
		}
		return entities.ErrUnexpectedAlert
	case <-ctx.Done():
		return ctx.Err()
	}
}
