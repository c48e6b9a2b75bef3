package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

const (
	playwrightActionTimeoutMS = 2000
	playwrightNavTimeoutMS    = 30000
)

// PlaywrightSession drives Chromium through Playwright. Native dialogs are
// captured by a page listener and left open until AcceptAlert.
type PlaywrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	dialogs *dialogQueue
	logger  *logrus.Logger
}

var _ interfaces.Session = (*PlaywrightSession)(nil)

// NewPlaywrightSession - starts playwright and opens a page
func NewPlaywrightSession(opts Options, logger *logrus.Logger) (*PlaywrightSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
	if opts.SlowMo > 0 {
		launch.SlowMo = playwright.Float(float64(opts.SlowMo.Milliseconds()))
	}
	if opts.ChromePath != "" {
		launch.ExecutablePath = playwright.String(opts.ChromePath)
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: 1280, Height: 900},
		JavaScriptEnabled: playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	s := &PlaywrightSession{
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
		dialogs: newDialogQueue(),
		logger:  logger,
	}
	page.OnDialog(func(dialog playwright.Dialog) {
		logger.Debugf("Dialog opened: %s", dialog.Message())
		s.dialogs.push(dialog.Message(), func() error { return dialog.Accept() })
	})
	return s, nil
}

func cssString(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

// playwrightSelector translates a selector into Playwright's selector syntax.
func playwrightSelector(sel entities.Selector) (string, error) {
	switch sel.By {
	case entities.ByID:
		return "css=[id=" + cssString(sel.Value) + "]", nil
	case entities.ByCSS, entities.ByTagName:
		return "css=" + sel.Value, nil
	case entities.ByXPath:
		return "xpath=" + sel.Value, nil
	case entities.ByName:
		return "css=[name=" + cssString(sel.Value) + "]", nil
	case entities.ByClassName:
		return "css=[class~=" + cssString(sel.Value) + "]", nil
	case entities.ByLinkText:
		return "css=a:text-is(" + cssString(sel.Value) + ")", nil
	case entities.ByPartialLinkText:
		return "css=a:has-text(" + cssString(sel.Value) + ")", nil
	}
	return "", fmt.Errorf("%s: %w", sel, entities.ErrUnsupportedSelector)
}

func (s *PlaywrightSession) wrap(handles []playwright.ElementHandle) []interfaces.Element {
	out := make([]interfaces.Element, len(handles))
	for i, h := range handles {
		out[i] = &playwrightElement{s: s, h: h}
	}
	return out
}

func (s *PlaywrightSession) FindElements(ctx context.Context, sel entities.Selector) ([]interfaces.Element, error) {
	query, err := playwrightSelector(sel)
	if err != nil {
		return nil, err
	}
	var handles []playwright.ElementHandle
	err = s.dialogs.run(ctx, false, func() error {
		var err error
		handles, err = s.page.QuerySelectorAll(query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.wrap(handles), nil
}

func (s *PlaywrightSession) AlertText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.page.IsClosed() {
		return "", entities.ErrSessionLost
	}
	return s.dialogs.text()
}

func (s *PlaywrightSession) AcceptAlert(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify(s.dialogs.acceptFirst())
}

func (s *PlaywrightSession) Navigate(ctx context.Context, url string) error {
	s.logger.Infof("Navigating to: %s", url)
	return s.dialogs.run(ctx, true, func() error {
		_, err := s.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateLoad,
			Timeout:   playwright.Float(playwrightNavTimeoutMS),
		})
		return err
	})
}

func (s *PlaywrightSession) Refresh(ctx context.Context) error {
	return s.dialogs.run(ctx, true, func() error {
		_, err := s.page.Reload(playwright.PageReloadOptions{
			WaitUntil: playwright.WaitUntilStateLoad,
			Timeout:   playwright.Float(playwrightNavTimeoutMS),
		})
		return err
	})
}

func (s *PlaywrightSession) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.page.IsClosed() {
		return "", entities.ErrSessionLost
	}
	return s.page.URL(), nil
}

func (s *PlaywrightSession) Close() error {
	var errs []error
	if err := s.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

type playwrightElement struct {
	s *PlaywrightSession
	h playwright.ElementHandle
}

func (e *playwrightElement) read(ctx context.Context, fn func() error) error {
	return e.s.dialogs.run(ctx, false, fn)
}

func (e *playwrightElement) act(ctx context.Context, fn func() error) error {
	return e.s.dialogs.run(ctx, true, fn)
}

func (e *playwrightElement) eval(ctx context.Context, action bool, body string, arg any) (any, error) {
	var res any
	err := e.s.dialogs.run(ctx, action, func() error {
		var err error
		res, err = e.h.Evaluate(playwrightScript(body), arg)
		return err
	})
	return res, err
}

func (e *playwrightElement) FindElements(ctx context.Context, sel entities.Selector) ([]interfaces.Element, error) {
	query, err := playwrightSelector(sel)
	if err != nil {
		return nil, err
	}
	var handles []playwright.ElementHandle
	err = e.read(ctx, func() error {
		var err error
		handles, err = e.h.QuerySelectorAll(query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e.s.wrap(handles), nil
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.read(ctx, func() error {
		var err error
		text, err = e.h.InnerText()
		return err
	})
	return text, err
}

func (e *playwrightElement) Attribute(ctx context.Context, name string) (string, error) {
	res, err := e.eval(ctx, false, jsProperty, name)
	return asString(res), err
}

func (e *playwrightElement) IsDisplayed(ctx context.Context) (bool, error) {
	var shown bool
	err := e.read(ctx, func() error {
		var err error
		shown, err = e.h.IsVisible()
		return err
	})
	return shown, err
}

func (e *playwrightElement) IsEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := e.read(ctx, func() error {
		var err error
		enabled, err = e.h.IsEnabled()
		return err
	})
	return enabled, err
}

func (e *playwrightElement) IsAttached(ctx context.Context) (bool, error) {
	res, err := e.eval(ctx, false, jsIsConnected, nil)
	if errors.Is(err, entities.ErrStaleElement) {
		return false, nil
	}
	return asBool(res), err
}

func (e *playwrightElement) IsObstructed(ctx context.Context) (bool, error) {
	res, err := e.eval(ctx, false, jsIsObstructed, nil)
	return asBool(res), err
}

func (e *playwrightElement) Click(ctx context.Context) error {
	return e.act(ctx, func() error {
		return e.h.Click(playwright.ElementHandleClickOptions{Timeout: playwright.Float(playwrightActionTimeoutMS)})
	})
}

func (e *playwrightElement) Clear(ctx context.Context) error {
	return e.act(ctx, func() error {
		return e.h.Fill("", playwright.ElementHandleFillOptions{Timeout: playwright.Float(playwrightActionTimeoutMS)})
	})
}

func (e *playwrightElement) SendKeys(ctx context.Context, text string) error {
	return e.act(ctx, func() error {
		return e.h.Type(text, playwright.ElementHandleTypeOptions{Timeout: playwright.Float(playwrightActionTimeoutMS)})
	})
}

func (e *playwrightElement) Options(ctx context.Context) ([]entities.Option, error) {
	res, err := e.eval(ctx, false, jsOptions, nil)
	if err != nil {
		return nil, err
	}
	return decodeOptions(res)
}

func (e *playwrightElement) SelectIndex(ctx context.Context, index int) error {
	return e.act(ctx, func() error {
		_, err := e.h.SelectOption(playwright.SelectOptionValues{Indexes: &[]int{index}},
			playwright.ElementHandleSelectOptionOptions{Timeout: playwright.Float(playwrightActionTimeoutMS)})
		return err
	})
}

func (e *playwrightElement) ScriptClick(ctx context.Context) error {
	_, err := e.eval(ctx, true, jsClick, nil)
	return err
}

func (e *playwrightElement) ScriptSetValue(ctx context.Context, value string) error {
	_, err := e.eval(ctx, true, jsSetValue, value)
	return err
}

func (e *playwrightElement) ScriptSelectIndex(ctx context.Context, index int) error {
	_, err := e.eval(ctx, true, jsSelectIndex, index)
	return err
}

func (e *playwrightElement) ScrollIntoView(ctx context.Context) error {
	return e.act(ctx, func() error {
		return e.h.ScrollIntoViewIfNeeded(playwright.ElementHandleScrollIntoViewIfNeededOptions{Timeout: playwright.Float(playwrightActionTimeoutMS)})
	})
}
