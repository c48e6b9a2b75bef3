package navigation

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ui_automation/application/action"
	"ui_automation/application/alert"
	"ui_automation/application/pageobject"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

const retryPause = 200 * time.Millisecond

// Menu opens console screens from the side bar. Links are followed by their
// href, so a collapsed submenu does not matter.
type Menu struct {
	runner       *action.Runner
	guard        *alert.Guard
	page         *pageobject.Page
	alertTimeout time.Duration
	logger       *logrus.Logger
}

func NewMenu(runner *action.Runner, guard *alert.Guard, page *pageobject.Page, alertTimeout time.Duration) *Menu {
	return &Menu{
		runner:       runner,
		guard:        guard,
		page:         page,
		alertTimeout: alertTimeout,
		logger:       runner.Engine().Logger(),
	}
}

// Open navigates to the screen behind linkField. When the link has no href,
// it builds fallbackRelative against the current URL; when that fails too it
// toggles the menu and tries again once more after a short pause.
func (m *Menu) Open(ctx context.Context, linkField, fallbackRelative string) error {
	link, err := m.page.Field(linkField)
	if err != nil {
		return err
	}
	if _, err := m.guard.Drain(ctx, m.alertTimeout); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		switch attempt {
		case 1:
			if toggle, err := m.page.Field(pageobject.FieldPolicyToggle); err == nil {
				if err := m.runner.Click(ctx, toggle); err != nil {
					if entities.IsSessionFatal(err) {
						return err
					}
					m.logger.Warnf("Failed to toggle menu: %v", err)
				}
			}
		case 2:
			timer := time.NewTimer(retryPause)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		ok, err := m.navigateViaHref(ctx, link, fallbackRelative)
		if err != nil {
			if entities.IsSessionFatal(err) {
				return err
			}
			m.logger.Warnf("Menu navigation to %s failed: %v", linkField, err)
			lastErr = err
			continue
		}
		if ok {
			m.logger.Infof("Opened %s", linkField)
			return nil
		}
	}
	if lastErr != nil {
		return fmt.Errorf("open %s: %w", linkField, lastErr)
	}
	return fmt.Errorf("open %s: no link and no fallback: %w", linkField, entities.ErrNoSuchElement)
}

func (m *Menu) navigateViaHref(ctx context.Context, link entities.Selector, fallbackRelative string) (bool, error) {
	session := m.runner.Engine().Session()
	current, err := session.CurrentURL(ctx)
	if err != nil {
		return false, err
	}

	els, err := wait.Locate(ctx, session, link)
	if err != nil {
		return false, err
	}
	if len(els) > 0 {
		href, err := els[0].Attribute(ctx, "href")
		if err != nil {
			return false, err
		}
		if href = strings.TrimSpace(href); href != "" {
			target, err := ResolveURL(current, href)
			if err != nil {
				return false, err
			}
			return true, session.Navigate(ctx, target)
		}
	}

	if fallbackRelative == "" {
		return false, nil
	}
	target, err := ResolveURL(current, fallbackRelative)
	if err != nil {
		return false, err
	}
	return true, session.Navigate(ctx, target)
}

// ResolveURL resolves ref against base the way a browser resolves an href.
func ResolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

// IsAlive pings the session. A nil error means it still answers.
func IsAlive(ctx context.Context, session interfaces.Session) error {
	if _, err := session.CurrentURL(ctx); err != nil {
		return fmt.Errorf("session check: %w", err)
	}
	return nil
}
