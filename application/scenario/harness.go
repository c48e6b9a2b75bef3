package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ui_automation/application/action"
	"ui_automation/application/alert"
	"ui_automation/application/navigation"
	"ui_automation/application/pageobject"
	"ui_automation/application/pager"
	"ui_automation/application/reset"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Config is what the suite needs to know about the console under test.
type Config struct {
	LoginURL       string
	Credentials    navigation.Credentials
	MainCategories []string

	MainDefaults   []string
	SubDefaults    []string
	StatusDefaults []string

	Timeout      time.Duration
	PagerTimeout time.Duration
	PollInterval time.Duration
	AlertTimeout time.Duration

	// Screens overrides the built-in page objects by screen name.
	Screens map[string]*pageobject.Page
}

// Harness wires the synchronization layer to one session and the console's
// page objects.
type Harness struct {
	cfg     Config
	session interfaces.Session
	engine  *wait.Engine
	runner  *action.Runner
	guard   *alert.Guard
	menu    *navigation.Menu
	pager   *pager.Navigator
	reset   *reset.Coordinator
	logger  *logrus.Logger

	authorize *pageobject.Page
	create    *pageobject.Page
	login     *pageobject.Page
	specs     []entities.FilterSpec

	loggedIn bool
}

func NewHarness(session interfaces.Session, logger *logrus.Logger, cfg Config) *Harness {
	screens := pageobject.Screens()
	for name, p := range cfg.Screens {
		screens[name] = p
	}

	engine := wait.NewEngine(session, logger, cfg.Timeout, cfg.PollInterval)
	runner := action.NewRunner(engine)
	guard := alert.NewGuard(session, logger)
	authorize := screens[pageobject.ScreenAuthorize]

	return &Harness{
		cfg:     cfg,
		session: session,
		engine:  engine,
		runner:  runner,
		guard:   guard,
		menu:    navigation.NewMenu(runner, guard, screens[pageobject.ScreenMenu], cfg.AlertTimeout),
		pager: pager.NewNavigator(runner, guard, pager.Locators{
			Container: authorize.MustField(pageobject.FieldPager),
			Grid:      authorize.MustField(pageobject.FieldGridRows),
			Overlay:   authorize.MustField(pageobject.FieldOverlay),
		}, cfg.PagerTimeout, cfg.AlertTimeout),
		reset: reset.NewCoordinator(runner, guard, reset.Locators{
			Reset:  authorize.MustField(pageobject.FieldReset),
			Search: authorize.MustField(pageobject.FieldSearch),
			Grid:   authorize.MustField(pageobject.FieldGridRows),
		}, cfg.Timeout, cfg.AlertTimeout),
		logger:    engine.Logger(),
		authorize: authorize,
		create:    screens[pageobject.ScreenCreate],
		login:     screens[pageobject.ScreenLogin],
		specs:     pageobject.FilterSpecs(authorize, cfg.MainDefaults, cfg.SubDefaults, cfg.StatusDefaults),
	}
}

func (h *Harness) Runner() *action.Runner       { return h.runner }
func (h *Harness) Pager() *pager.Navigator      { return h.pager }
func (h *Harness) Reset() *reset.Coordinator    { return h.reset }
func (h *Harness) Guard() *alert.Guard          { return h.guard }
func (h *Harness) Specs() []entities.FilterSpec { return h.specs }

// CleanState puts the session on a known screen before a case runs: drain
// dialogs, check the session, sign in if needed, open the screen and, for
// the authorize screen, reset its filters.
func (h *Harness) CleanState(ctx context.Context, screen string) error {
	if _, err := h.guard.Drain(ctx, h.cfg.AlertTimeout); err != nil {
		return err
	}
	if err := navigation.IsAlive(ctx, h.session); err != nil {
		return err
	}
	if !h.loggedIn {
		if err := navigation.Login(ctx, h.runner, h.guard, h.login, h.cfg.LoginURL, h.cfg.Credentials, h.cfg.AlertTimeout); err != nil {
			return err
		}
		h.loggedIn = true
	}

	switch screen {
	case pageobject.ScreenAuthorize:
		if err := h.menu.Open(ctx, pageobject.FieldLinkAuthorize, pageobject.AuthorizePolicyPath); err != nil {
			return err
		}
		ready := wait.All(
			wait.PresentAndAtLeastOne(h.authorize.MustField(pageobject.FieldMainCategory)),
			wait.PresentAndAtLeastOne(h.authorize.MustField(pageobject.FieldGridRows)),
		)
		if err := h.engine.Until(ctx, ready); err != nil {
			return fmt.Errorf("authorize screen: %w", err)
		}
		if _, err := h.reset.ResetFilters(ctx, h.specs); err != nil {
			return err
		}
	case pageobject.ScreenCreate:
		if err := h.menu.Open(ctx, pageobject.FieldLinkCreate, pageobject.CreatePolicyPath); err != nil {
			return err
		}
		if err := h.engine.Until(ctx, wait.Visible(h.create.MustField(pageobject.FieldPremium))); err != nil {
			return fmt.Errorf("create screen: %w", err)
		}
	}
	return nil
}

func (h *Harness) spec(name entities.FilterName) entities.FilterSpec {
	for _, s := range h.specs {
		if s.Name == name {
			return s
		}
	}
	return entities.FilterSpec{}
}

// selectFilter selects a label in an authorize-screen filter. A negative
// fallbackIndex disables the index fallback. The main category posts back,
// so selecting it also waits for the sub category to settle.
func (h *Harness) selectFilter(ctx context.Context, name entities.FilterName, label string, fallbackIndex int) error {
	spec := h.spec(name)
	postBack := name == entities.FilterMainCategory
	if err := h.selectOption(ctx, spec.Selector, label, fallbackIndex, postBack); err != nil {
		return err
	}
	if postBack {
		return h.reset.Settle(ctx, h.spec(entities.FilterSubCategory))
	}
	return nil
}

// selectOption selects label in sel. When the select posts back and the
// selection actually changed, it waits for the old page to go away.
func (h *Harness) selectOption(ctx context.Context, sel entities.Selector, label string, fallbackIndex int, postBack bool) error {
	before, err := h.engine.First(ctx, sel, 0)
	if err != nil {
		return err
	}
	prev, hadPrev, err := h.runner.SelectedOption(ctx, sel)
	if err != nil {
		return err
	}

	if fallbackIndex >= 0 {
		err = h.runner.SelectOrIndex(ctx, sel, label, fallbackIndex)
	} else {
		err = h.runner.SelectLabel(ctx, sel, label)
	}
	if err != nil {
		return err
	}
	if !postBack {
		return nil
	}

	if hadPrev {
		cur, ok, err := h.runner.SelectedOption(ctx, sel)
		if err == nil && ok && cur.Index == prev.Index {
			// same option again: browsers fire no change event
			return nil
		}
	}
	if _, err := h.engine.Await(ctx, wait.Stale(before), h.cfg.Timeout, 0); err != nil && !wait.IsTimeout(err) {
		return err
	}
	return h.engine.Until(ctx, wait.SelectReady(sel))
}

// search clicks Search and waits for the grid.
func (h *Harness) search(ctx context.Context) error {
	before, err := h.engine.First(ctx, h.authorize.MustField(pageobject.FieldGridRows), 0)
	if err != nil {
		return err
	}
	if err := h.runner.Click(ctx, h.authorize.MustField(pageobject.FieldSearch)); err != nil {
		return err
	}
	if _, err := h.guard.Drain(ctx, h.cfg.AlertTimeout); err != nil {
		return err
	}
	if _, err := h.engine.Await(ctx, wait.Stale(before), h.cfg.Timeout, 0); err != nil && !wait.IsTimeout(err) {
		return err
	}
	return h.engine.Until(ctx, wait.PresentAndAtLeastOne(h.authorize.MustField(pageobject.FieldGridRows)))
}

// mainCategoryCells reads the main category column of the visible grid page.
func (h *Harness) mainCategoryCells(ctx context.Context) ([]string, error) {
	cells, err := h.engine.Resolve(ctx, h.authorize.MustField(pageobject.FieldGridMainCell))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, c := range cells {
		text, err := c.Text(ctx)
		if err != nil {
			return nil, err
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}

func distinct(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
