package navigation

import (
	"context"
	"fmt"
	"time"

	"ui_automation/application/action"
	"ui_automation/application/alert"
	"ui_automation/application/pageobject"
)

// Credentials for the console administrator.
type Credentials struct {
	Username string
	Password string
}

// Login loads loginURL, signs in and accepts the greeting dialog the console
// may show afterwards.
func Login(ctx context.Context, runner *action.Runner, guard *alert.Guard, page *pageobject.Page, loginURL string, creds Credentials, alertTimeout time.Duration) error {
	if err := runner.Engine().Session().Navigate(ctx, loginURL); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	if err := runner.SetText(ctx, page.MustField(pageobject.FieldUsername), creds.Username); err != nil {
		return fmt.Errorf("enter username: %w", err)
	}
	if err := runner.SetText(ctx, page.MustField(pageobject.FieldPassword), creds.Password); err != nil {
		return fmt.Errorf("enter password: %w", err)
	}
	if err := runner.Click(ctx, page.MustField(pageobject.FieldLogin)); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if _, err := guard.Drain(ctx, alertTimeout); err != nil {
		return err
	}
	runner.Engine().Logger().Infof("Logged in as %s", creds.Username)
	return nil
}
