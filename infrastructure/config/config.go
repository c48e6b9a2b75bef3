package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"ui_automation/application/navigation"
	"ui_automation/application/pageobject"
	"ui_automation/application/scenario"
	"ui_automation/domain/entities"
	"ui_automation/infrastructure/browser"
)

const selectorPrefix = "SELECTOR_"

// Config is everything a run needs, read from the environment.
type Config struct {
	Driver    string
	BaseURL   string
	ReportDir string
	LogLevel  logrus.Level
	Browser   browser.Options
	Suite     scenario.Config
}

// Load reads an optional .env file (or the given files) and then the
// process environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (*Config, error) {
	var errs []error
	p := parser{errs: &errs}

	baseURL := getEnv("BASE_URL", "http://localhost/Admin/")
	loginURL, err := navigation.ResolveURL(baseURL, getEnv("LOGIN_PATH", "LoginPage.aspx"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid BASE_URL: %w", err))
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
		level = logrus.InfoLevel
	}

	screens, err := selectorOverrides(os.Environ())
	if err != nil {
		errs = append(errs, err)
	}

	opts := browser.DefaultOptions()
	opts.Headless = p.bool("HEADLESS", opts.Headless)
	opts.DriverPath = os.Getenv("BROWSER_DRIVER_PATH")
	opts.ChromePath = os.Getenv("CHROME_BINARY_PATH")
	opts.RemoteURL = os.Getenv("REMOTE_URL")
	opts.UserDataDir = os.Getenv("USER_DATA_DIR")
	opts.Port = p.int("WEBDRIVER_PORT", opts.Port)
	opts.SlowMo = p.duration("SLOW_MO", 0)

	cfg := &Config{
		Driver:    strings.ToLower(getEnv("DRIVER", browser.DriverSelenium)),
		BaseURL:   baseURL,
		ReportDir: getEnv("REPORT_DIR", "reports"),
		LogLevel:  level,
		Browser:   opts,
		Suite: scenario.Config{
			LoginURL: loginURL,
			Credentials: navigation.Credentials{
				Username: getEnv("ADMIN_USERNAME", "admin_user"),
				Password: getEnv("ADMIN_PASSWORD", "testadmin"),
			},
			MainCategories: list(getEnv("MAIN_CATEGORIES", "Life,Health,Motor,Property"), ","),
			MainDefaults:   labels("DEFAULT_LABELS_MAIN", "|-- Select Main Category --|Select Main Category"),
			SubDefaults:    labels("DEFAULT_LABELS_SUB", "All|-- All --|All Sub Categories"),
			StatusDefaults: labels("DEFAULT_LABELS_STATUS", "All"),
			Timeout:        p.duration("WAIT_TIMEOUT", 10*time.Second),
			PagerTimeout:   p.duration("PAGER_TIMEOUT", 20*time.Second),
			PollInterval:   p.duration("POLL_INTERVAL", 250*time.Millisecond),
			AlertTimeout:   p.duration("ALERT_TIMEOUT", 2*time.Second),
			Screens:        screens,
		},
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func list(raw, sep string) []string {
	var out []string
	for _, item := range strings.Split(raw, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// labels keeps empty entries: an empty label is a valid default.
func labels(key, fallback string) []string {
	parts := strings.Split(getEnv(key, fallback), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

type parser struct {
	errs *[]error
}

func (p parser) fail(key, raw string, err error) {
	*p.errs = append(*p.errs, fmt.Errorf("invalid %s %q: %w", key, raw, err))
}

// duration accepts Go durations ("750ms") or whole seconds ("10").
func (p parser) duration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	if d < 0 {
		p.fail(key, raw, errors.New("negative duration"))
		return fallback
	}
	return d
}

func (p parser) int(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return n
}

func (p parser) bool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return b
}

// selectorOverrides reads SELECTOR_<SCREEN>_<FIELD>=strategy:value entries.
// Field names match case-insensitively with underscores ignored, so
// SELECTOR_AUTHORIZE_GRID_ROWS overrides authorize.gridRows.
func selectorOverrides(environ []string) (map[string]*pageobject.Page, error) {
	screens := pageobject.Screens()
	overrides := map[string]map[string]entities.Selector{}

	for _, kv := range environ {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, selectorPrefix) {
			continue
		}
		screenName, fieldKey, ok := strings.Cut(strings.TrimPrefix(key, selectorPrefix), "_")
		if !ok {
			return nil, fmt.Errorf("invalid %s: want %s<SCREEN>_<FIELD>", key, selectorPrefix)
		}
		screenName = strings.ToLower(screenName)
		page, ok := screens[screenName]
		if !ok {
			return nil, fmt.Errorf("invalid %s: unknown screen %q", key, screenName)
		}
		field := matchField(page, fieldKey)
		if field == "" {
			return nil, fmt.Errorf("invalid %s: %w", key, pageobject.ErrUnknownField)
		}
		sel, err := entities.ParseSelector(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		if overrides[screenName] == nil {
			overrides[screenName] = map[string]entities.Selector{}
		}
		overrides[screenName][field] = sel
	}

	if len(overrides) == 0 {
		return nil, nil
	}
	out := make(map[string]*pageobject.Page, len(overrides))
	for screenName, fields := range overrides {
		page, err := screens[screenName].With(fields)
		if err != nil {
			return nil, err
		}
		out[screenName] = page
	}
	return out, nil
}

func matchField(page *pageobject.Page, key string) string {
	key = strings.ReplaceAll(key, "_", "")
	for _, name := range page.Names() {
		if strings.EqualFold(name, key) {
			return name
		}
	}
	return ""
}
