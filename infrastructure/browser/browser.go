package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ui_automation/domain/interfaces"
)

// Driver names accepted by Open.
const (
	DriverSelenium   = "selenium"
	DriverPlaywright = "playwright"
	DriverCDP        = "cdp"
)

// Options configures a browser session.
type Options struct {
	Headless    bool
	DriverPath  string // chromedriver, selenium only
	ChromePath  string
	RemoteURL   string // WebDriver hub or DevTools websocket
	UserDataDir string
	Port        int
	SlowMo      time.Duration // playwright only
}

// DefaultOptions returns options for a local headless Chrome.
func DefaultOptions() Options {
	return Options{Headless: true, Port: 9515}
}

// Open starts a session with the named driver.
func Open(driver string, opts Options, logger *logrus.Logger) (interfaces.Session, error) {
	var (
		session interfaces.Session
		err     error
	)
	switch strings.ToLower(driver) {
	case DriverSelenium, "":
		session, err = NewSeleniumSession(opts, logger)
	case DriverPlaywright:
		session, err = NewPlaywrightSession(opts, logger)
	case DriverCDP, "chromedp":
		session, err = NewCDPSession(opts, logger)
	default:
		return nil, fmt.Errorf("unknown browser driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}
