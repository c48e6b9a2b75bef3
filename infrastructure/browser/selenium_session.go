package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// SeleniumSession drives Chrome through chromedriver or a remote WebDriver.
type SeleniumSession struct {
	wd      selenium.WebDriver
	service *selenium.Service
	logger  *logrus.Logger
}

var _ interfaces.Session = (*SeleniumSession)(nil)

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}
	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func chromeArgs(opts Options) []string {
	args := []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-dev-shm-usage",
		"--no-sandbox",
		"--window-size=1280,900",
	}
	if opts.Headless {
		args = append(args, "--headless=new")
	}
	if opts.UserDataDir != "" {
		args = append(args, fmt.Sprintf("--user-data-dir=%s", opts.UserDataDir))
	}
	return args
}

// NewSeleniumSession starts chromedriver, or connects to opts.RemoteURL when
// set, and opens a Chrome session.
func NewSeleniumSession(opts Options, logger *logrus.Logger) (*SeleniumSession, error) {
	var service *selenium.Service
	remote := opts.RemoteURL

	if remote == "" {
		driverPath, err := findChromeDriver(opts.DriverPath)
		if err != nil {
			return nil, fmt.Errorf("failed to find chromedriver: %w", err)
		}
		logger.Infof("Using ChromeDriver at: %s", driverPath)

		service, err = selenium.NewChromeDriverService(driverPath, opts.Port)
		if err != nil {
			return nil, fmt.Errorf("failed to start chromedriver: %w", err)
		}
		remote = fmt.Sprintf("http://localhost:%d/wd/hub", opts.Port)
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	chromeCaps := chrome.Capabilities{Args: chromeArgs(opts)}
	if chromeBinary := findChromeBinary(opts.ChromePath); chromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", chromeBinary)
		chromeCaps.Path = chromeBinary
	}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, remote)
	if err != nil {
		if service != nil {
			_ = service.Stop()
		}
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &SeleniumSession{wd: wd, service: service, logger: logger}, nil
}

func seleniumBy(sel entities.Selector) (string, string, error) {
	switch sel.By {
	case entities.ByID:
		return selenium.ByID, sel.Value, nil
	case entities.ByCSS:
		return selenium.ByCSSSelector, sel.Value, nil
	case entities.ByXPath:
		return selenium.ByXPATH, sel.Value, nil
	case entities.ByName:
		return selenium.ByName, sel.Value, nil
	case entities.ByTagName:
		return selenium.ByTagName, sel.Value, nil
	case entities.ByClassName:
		return selenium.ByClassName, sel.Value, nil
	case entities.ByLinkText:
		return selenium.ByLinkText, sel.Value, nil
	case entities.ByPartialLinkText:
		return selenium.ByPartialLinkText, sel.Value, nil
	}
	return "", "", fmt.Errorf("%s: %w", sel, entities.ErrUnsupportedSelector)
}

func (s *SeleniumSession) wrap(els []selenium.WebElement) []interfaces.Element {
	out := make([]interfaces.Element, len(els))
	for i, el := range els {
		out[i] = &seleniumElement{s: s, el: el}
	}
	return out
}

func (s *SeleniumSession) FindElements(ctx context.Context, sel entities.Selector) ([]interfaces.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	by, value, err := seleniumBy(sel)
	if err != nil {
		return nil, err
	}
	els, err := s.wd.FindElements(by, value)
	if err != nil {
		if err = Classify(err); errors.Is(err, entities.ErrNoSuchElement) {
			return nil, nil
		}
		return nil, err
	}
	return s.wrap(els), nil
}

func (s *SeleniumSession) AlertText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := s.wd.AlertText()
	return text, Classify(err)
}

func (s *SeleniumSession) AcceptAlert(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify(s.wd.AcceptAlert())
}

func (s *SeleniumSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Infof("Navigating to: %s", url)
	return Classify(s.wd.Get(url))
}

func (s *SeleniumSession) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify(s.wd.Refresh())
}

func (s *SeleniumSession) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u, err := s.wd.CurrentURL()
	return u, Classify(err)
}

func (s *SeleniumSession) Close() error {
	var firstErr error
	if err := s.wd.Quit(); err != nil {
		firstErr = fmt.Errorf("failed to quit webdriver: %w", err)
	}
	if s.service != nil {
		if err := s.service.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to stop chromedriver: %w", err)
		}
	}
	return firstErr
}

func (s *SeleniumSession) script(body string, el selenium.WebElement, arg any) (any, error) {
	res, err := s.wd.ExecuteScript(seleniumScript(body), []interface{}{el, arg})
	return res, Classify(err)
}

type seleniumElement struct {
	s  *SeleniumSession
	el selenium.WebElement
}

func (e *seleniumElement) FindElements(ctx context.Context, sel entities.Selector) ([]interfaces.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	by, value, err := seleniumBy(sel)
	if err != nil {
		return nil, err
	}
	els, err := e.el.FindElements(by, value)
	if err != nil {
		if err = Classify(err); errors.Is(err, entities.ErrNoSuchElement) {
			return nil, nil
		}
		return nil, err
	}
	return e.s.wrap(els), nil
}

func (e *seleniumElement) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := e.el.Text()
	return text, Classify(err)
}

func (e *seleniumElement) Attribute(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := e.el.GetAttribute(name)
	if err != nil && strings.Contains(err.Error(), "nil return value") {
		// absent attribute
		return "", nil
	}
	return v, Classify(err)
}

func (e *seleniumElement) IsDisplayed(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	shown, err := e.el.IsDisplayed()
	return shown, Classify(err)
}

func (e *seleniumElement) IsEnabled(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	enabled, err := e.el.IsEnabled()
	return enabled, Classify(err)
}

func (e *seleniumElement) IsAttached(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	res, err := e.s.script(jsIsConnected, e.el, nil)
	if err != nil {
		if errors.Is(err, entities.ErrStaleElement) {
			return false, nil
		}
		return false, err
	}
	return asBool(res), nil
}

func (e *seleniumElement) IsObstructed(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	res, err := e.s.script(jsIsObstructed, e.el, nil)
	return asBool(res), err
}

func (e *seleniumElement) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify(e.el.Click())
}

func (e *seleniumElement) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify(e.el.Clear())
}

func (e *seleniumElement) SendKeys(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify(e.el.SendKeys(text))
}

func (e *seleniumElement) Options(ctx context.Context) ([]entities.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := e.s.script(jsOptions, e.el, nil)
	if err != nil {
		return nil, err
	}
	return decodeOptions(res)
}

// SelectIndex clicks the option, which is how a user changes a <select>.
func (e *seleniumElement) SelectIndex(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts, err := e.el.FindElements(selenium.ByTagName, "option")
	if err != nil {
		return Classify(err)
	}
	if index < 0 || index >= len(opts) {
		return fmt.Errorf("option %d of %d: %w", index, len(opts), entities.ErrNoSuchElement)
	}
	return Classify(opts[index].Click())
}

func (e *seleniumElement) ScriptClick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.s.script(jsClick, e.el, nil)
	return err
}

func (e *seleniumElement) ScriptSetValue(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.s.script(jsSetValue, e.el, value)
	return err
}

func (e *seleniumElement) ScriptSelectIndex(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.s.script(jsSelectIndex, e.el, index)
	return err
}

func (e *seleniumElement) ScrollIntoView(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := e.s.script(jsScrollIntoView, e.el, nil); err != nil {
		e.s.logger.Warnf("Failed to scroll to element: %v", err)
		// Try alternative method
		if err := e.el.MoveTo(0, 0); err != nil {
			return Classify(err)
		}
	}
	return nil
}
