package pager

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ui_automation/application/action"
	"ui_automation/application/alert"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

const (
	DefaultTimeout = 20 * time.Second
	overlayTimeout = 5 * time.Second
	clickTimeout   = 5 * time.Second
)

// Locators are the pager's view of the grid screen.
type Locators struct {
	// Container matches pager containers; the first in document order is
	// authoritative when legacy markup renders more than one.
	Container entities.Selector
	// Grid matches the result rows.
	Grid entities.Selector
	// Overlay matches loading overlays that may cover the pager. Optional.
	Overlay entities.Selector
}

// Navigator moves a paginated grid between pages. Page n is current when it
// renders as a span and navigable when it renders as a link.
type Navigator struct {
	runner       *action.Runner
	engine       *wait.Engine
	guard        *alert.Guard
	loc          Locators
	timeout      time.Duration
	alertTimeout time.Duration
	logger       *logrus.Logger
}

func NewNavigator(runner *action.Runner, guard *alert.Guard, loc Locators, timeout, alertTimeout time.Duration) *Navigator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Navigator{
		runner:       runner,
		engine:       runner.Engine(),
		guard:        guard,
		loc:          loc,
		timeout:      timeout,
		alertTimeout: alertTimeout,
		logger:       runner.Engine().Logger(),
	}
}

// GoToPage clicks the link for page n and waits for the grid to re-render.
// NoSuchPage with a nil error means there is no link for n, either because n
// is already current or because the data set has fewer pages.
func (p *Navigator) GoToPage(ctx context.Context, n int) (entities.PageMove, error) {
	if _, err := p.guard.Drain(ctx, p.alertTimeout); err != nil {
		return entities.NoSuchPage, err
	}

	link, err := p.pageLink(ctx, n)
	if err != nil {
		return entities.NoSuchPage, fmt.Errorf("look up page %d: %w", n, err)
	}
	if link == nil {
		p.logger.Infof("No link for page %d", n)
		return entities.NoSuchPage, nil
	}

	before, err := p.firstRow(ctx)
	if err != nil {
		return entities.NoSuchPage, err
	}

	if !p.loc.Overlay.IsZero() {
		if _, err := p.engine.Await(ctx, wait.Invisible(p.loc.Overlay), overlayTimeout, 0); err != nil {
			if !wait.IsTimeout(err) {
				return entities.NoSuchPage, err
			}
			p.logger.Warnf("Overlay still visible before paging: %v", err)
		}
	}

	p.runner.ScrollIntoView(ctx, link)
	if err := p.runner.ClickElement(ctx, link, clickTimeout); err != nil {
		return entities.NoSuchPage, fmt.Errorf("click page %d: %w", n, err)
	}

	if _, err := p.guard.Drain(ctx, p.alertTimeout); err != nil {
		return entities.NoSuchPage, err
	}
	if before != nil {
		if _, err := p.engine.Await(ctx, wait.Stale(before), p.timeout, 0); err != nil {
			return entities.NoSuchPage, fmt.Errorf("page %d: grid did not re-render: %w", n, err)
		}
	}
	if _, err := p.engine.Await(ctx, wait.PresentAndAtLeastOne(p.loc.Grid), p.timeout, 0); err != nil {
		return entities.NoSuchPage, fmt.Errorf("page %d: %w", n, err)
	}

	p.logger.Infof("Moved to page %d", n)
	return entities.Moved, nil
}

// CurrentPage returns the page rendered as a non-link. ErrIndeterminatePage
// is returned when no pager or no current page is rendered.
func (p *Navigator) CurrentPage(ctx context.Context) (entities.PageCursor, error) {
	container, err := p.container(ctx)
	if err != nil {
		return 0, err
	}
	if container == nil {
		return 0, fmt.Errorf("no pager found: %w", entities.ErrIndeterminatePage)
	}
	spans, err := wait.LocateWithin(ctx, container, entities.Tag("span"))
	if err != nil {
		return 0, fmt.Errorf("read pager: %w", err)
	}
	for _, span := range spans {
		n, ok, err := pageNumber(ctx, span)
		if err != nil {
			return 0, fmt.Errorf("read pager: %w", err)
		}
		if ok {
			return entities.PageCursor(n), nil
		}
	}
	return 0, fmt.Errorf("no current page in pager: %w", entities.ErrIndeterminatePage)
}

// IsCurrentPage reports whether page n is rendered as current.
func (p *Navigator) IsCurrentPage(ctx context.Context, n int) (bool, error) {
	cur, err := p.CurrentPage(ctx)
	if errors.Is(err, entities.ErrIndeterminatePage) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return int(cur) == n, nil
}

// HasPageLink reports whether page n is rendered as a displayed link.
func (p *Navigator) HasPageLink(ctx context.Context, n int) (bool, error) {
	link, err := p.pageLink(ctx, n)
	return link != nil, err
}

func (p *Navigator) container(ctx context.Context) (interfaces.Element, error) {
	els, err := p.engine.Resolve(ctx, p.loc.Container)
	if err != nil {
		return nil, fmt.Errorf("find pager: %w", err)
	}
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}

func (p *Navigator) pageLink(ctx context.Context, n int) (interfaces.Element, error) {
	container, err := p.container(ctx)
	if err != nil || container == nil {
		return nil, err
	}
	links, err := wait.LocateWithin(ctx, container, entities.Tag("a"))
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		num, ok, err := pageNumber(ctx, link)
		if err != nil {
			return nil, err
		}
		if ok && num == n {
			return link, nil
		}
	}
	return nil, nil
}

func (p *Navigator) firstRow(ctx context.Context) (interfaces.Element, error) {
	rows, err := p.engine.Resolve(ctx, p.loc.Grid)
	if err != nil {
		return nil, fmt.Errorf("find grid: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// pageNumber reads a displayed pager entry. Entries such as "..." or "Next"
// are not page numbers.
func pageNumber(ctx context.Context, el interfaces.Element) (int, bool, error) {
	shown, err := el.IsDisplayed(ctx)
	if err != nil || !shown {
		return 0, false, err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}
