package reset

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"ui_automation/application/action"
	"ui_automation/application/alert"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Locators are the reset flow's view of the filter screen.
type Locators struct {
	Reset  entities.Selector
	Search entities.Selector
	Grid   entities.Selector
}

// Coordinator restores a filtered grid to its default view. It guarantees
// that the filters are settled and readable afterwards, not that they hold
// any particular value; callers compare against defaults themselves.
type Coordinator struct {
	runner       *action.Runner
	engine       *wait.Engine
	guard        *alert.Guard
	loc          Locators
	timeout      time.Duration
	alertTimeout time.Duration
	logger       *logrus.Logger
}

func NewCoordinator(runner *action.Runner, guard *alert.Guard, loc Locators, timeout, alertTimeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = runner.Engine().Timeout()
	}
	return &Coordinator{
		runner:       runner,
		engine:       runner.Engine(),
		guard:        guard,
		loc:          loc,
		timeout:      timeout,
		alertTimeout: alertTimeout,
		logger:       runner.Engine().Logger(),
	}
}

// ordered returns specs in settle order: main category, sub category, status.
func ordered(specs []entities.FilterSpec) []entities.FilterSpec {
	out := append([]entities.FilterSpec(nil), specs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ResetFilters clicks reset, waits for the grid to be rendered again and
// settles every filter in dependency order before reading the state back.
func (c *Coordinator) ResetFilters(ctx context.Context, specs []entities.FilterSpec) (entities.FilterState, error) {
	specs = ordered(specs)

	if _, err := c.guard.Drain(ctx, c.alertTimeout); err != nil {
		return entities.FilterState{}, err
	}

	before, err := c.firstRow(ctx)
	if err != nil {
		return entities.FilterState{}, err
	}

	if err := c.runner.Click(ctx, c.loc.Reset); err != nil {
		if entities.IsSessionFatal(err) {
			return entities.FilterState{}, err
		}
		c.logger.Warnf("Reset button failed, restoring defaults by hand: %v", err)
		if err := c.selectDefaults(ctx, specs); err != nil {
			return entities.FilterState{}, err
		}
		before = nil
	}

	if _, err := c.guard.Drain(ctx, c.alertTimeout); err != nil {
		return entities.FilterState{}, err
	}

	if before != nil {
		if _, err := c.engine.Await(ctx, wait.Stale(before), c.timeout, 0); err != nil {
			if !wait.IsTimeout(err) {
				return entities.FilterState{}, err
			}
			c.logger.Debugf("Grid was not replaced after reset: %v", err)
		}
	}

	if err := c.awaitGrid(ctx); err != nil {
		return entities.FilterState{}, fmt.Errorf("grid after reset: %w", err)
	}

	for _, spec := range specs {
		if err := c.settle(ctx, spec); err != nil {
			return entities.FilterState{}, err
		}
		if err := c.ensureSelected(ctx, spec); err != nil {
			return entities.FilterState{}, err
		}
	}

	state, err := c.ReadState(ctx, specs)
	if err != nil {
		return entities.FilterState{}, err
	}
	c.logger.Infof("Filters after reset: main=%q sub=%q status=%q", state.MainCategory, state.SubCategory, state.Status)
	return state, nil
}

// ReadState reads the selected label of every filter. A filter with no
// selection reads as "".
func (c *Coordinator) ReadState(ctx context.Context, specs []entities.FilterSpec) (entities.FilterState, error) {
	var state entities.FilterState
	for _, spec := range specs {
		opt, _, err := c.runner.SelectedOption(ctx, spec.Selector)
		if err != nil {
			return entities.FilterState{}, fmt.Errorf("read %s: %w", spec.Name, err)
		}
		state.Set(spec.Name, opt.Label)
	}
	return state, nil
}

// Settle waits until a filter's option set is non-empty and stable.
func (c *Coordinator) Settle(ctx context.Context, spec entities.FilterSpec) error {
	return c.settle(ctx, spec)
}

func (c *Coordinator) settle(ctx context.Context, spec entities.FilterSpec) error {
	if _, err := c.engine.Await(ctx, wait.SelectSettled(spec.Selector), c.timeout, 0); err != nil {
		if entities.IsSessionFatal(err) {
			return err
		}
		return &entities.FilterNotSettledError{Filter: spec.Name, Selector: spec.Selector, Cause: err}
	}
	return nil
}

// ensureSelected selects the first option when the browser reports none. The
// selection may post back, so it waits for a selection to be observable.
func (c *Coordinator) ensureSelected(ctx context.Context, spec entities.FilterSpec) error {
	_, ok, err := c.runner.SelectedOption(ctx, spec.Selector)
	if err != nil {
		return c.notSettled(spec, err)
	}
	if ok {
		return nil
	}
	c.logger.Infof("No selection in %s, selecting first option", spec.Name)
	if err := c.runner.SelectIndex(ctx, spec.Selector, 0); err != nil {
		return c.notSettled(spec, err)
	}
	if _, err := c.engine.Await(ctx, wait.HasSelection(spec.Selector), c.timeout, 0); err != nil {
		return c.notSettled(spec, err)
	}
	return c.settle(ctx, spec)
}

func (c *Coordinator) notSettled(spec entities.FilterSpec, err error) error {
	if entities.IsSessionFatal(err) {
		return err
	}
	return &entities.FilterNotSettledError{Filter: spec.Name, Selector: spec.Selector, Cause: err}
}

// selectDefaults picks each filter's default label by hand, or its first
// option when no default label is offered.
func (c *Coordinator) selectDefaults(ctx context.Context, specs []entities.FilterSpec) error {
	for _, spec := range specs {
		if err := c.settle(ctx, spec); err != nil {
			return err
		}
		opts, err := c.runner.Options(ctx, spec.Selector)
		if err != nil {
			return c.notSettled(spec, err)
		}
		index := 0
		for _, o := range opts {
			if wait.MatchesAnyLabel(o.Label, spec.DefaultLabels) {
				index = o.Index
				break
			}
		}
		if err := c.runner.SelectIndex(ctx, spec.Selector, index); err != nil {
			return c.notSettled(spec, err)
		}
	}
	return nil
}

// awaitGrid waits for grid rows, escalating to a search and then a full
// refresh when the grid does not come back.
func (c *Coordinator) awaitGrid(ctx context.Context) error {
	grid := wait.PresentAndAtLeastOne(c.loc.Grid)
	err := c.engine.UntilWithin(ctx, grid, c.timeout)
	if err == nil || !wait.IsTimeout(err) {
		return err
	}

	if !c.loc.Search.IsZero() {
		c.logger.Warnf("Grid missing after reset, clicking search")
		if err := c.runner.Click(ctx, c.loc.Search); err != nil {
			if entities.IsSessionFatal(err) {
				return err
			}
			c.logger.Warnf("Search after reset failed: %v", err)
		} else {
			if _, err := c.guard.Drain(ctx, c.alertTimeout); err != nil {
				return err
			}
			if err := c.engine.UntilWithin(ctx, grid, c.timeout); err == nil || !wait.IsTimeout(err) {
				return err
			}
		}
	}

	c.logger.Warnf("Grid still missing, refreshing the page")
	if err := c.engine.Session().Refresh(ctx); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if _, err := c.guard.Drain(ctx, c.alertTimeout); err != nil {
		return err
	}
	return c.engine.UntilWithin(ctx, grid, c.timeout)
}

func (c *Coordinator) firstRow(ctx context.Context) (interfaces.Element, error) {
	rows, err := c.engine.Resolve(ctx, c.loc.Grid)
	if err != nil {
		return nil, fmt.Errorf("find grid: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Mismatches lists the filters whose label is not one of their accepted
// defaults. Filters without configured defaults always match.
func Mismatches(state entities.FilterState, specs []entities.FilterSpec) []entities.FilterName {
	var out []entities.FilterName
	for _, spec := range ordered(specs) {
		if len(spec.DefaultLabels) == 0 {
			continue
		}
		if !wait.MatchesAnyLabel(state.Get(spec.Name), spec.DefaultLabels) {
			out = append(out, spec.Name)
		}
	}
	return out
}

// MatchesDefaults reports whether every filter shows an accepted default.
func MatchesDefaults(state entities.FilterState, specs []entities.FilterSpec) bool {
	return len(Mismatches(state, specs)) == 0
}
