package scenario_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/application/navigation"
	"ui_automation/application/pageobject"
	"ui_automation/application/scenario"
	"ui_automation/domain/entities"
	"ui_automation/infrastructure/memdom"
	"ui_automation/infrastructure/memdom/policyconsole"
)

const loginURL = "http://console.test/Admin/LoginPage.aspx"

var categories = []string{"Life", "Health", "Motor", "Property"}

func testConfig() scenario.Config {
	return scenario.Config{
		LoginURL:       loginURL,
		Credentials:    navigation.Credentials{Username: "admin_user", Password: "testadmin"},
		MainCategories: categories,
		MainDefaults:   []string{"", "-- Select Main Category --", "Select Main Category"},
		SubDefaults:    []string{"All", "-- All --", "All Sub Categories"},
		StatusDefaults: []string{"All"},
		Timeout:        2 * time.Second,
		PagerTimeout:   2 * time.Second,
		PollInterval:   5 * time.Millisecond,
		AlertTimeout:   40 * time.Millisecond,
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setup(t *testing.T, opts policyconsole.Options) (*scenario.Harness, *memdom.Session, *policyconsole.Console) {
	t.Helper()
	console := policyconsole.New(opts)
	logger := quietLogger()
	session := memdom.NewSession(console, logger)
	t.Cleanup(func() { _ = session.Close() })
	return scenario.NewHarness(session, logger, testConfig()), session, console
}

func requireAllPassed(t *testing.T, report *entities.RunReport) {
	t.Helper()
	require.NotEmpty(t, report.Results)
	for _, r := range report.Results {
		assert.Equal(t, entities.CaseStatusPassed, r.Status, "%s: %s", r.Name, r.Message)
	}
}

func TestDefaultSuitePasses(t *testing.T) {
	h, _, console := setup(t, policyconsole.Options{})
	suite := scenario.NewSuite(h, "memory", scenario.DefaultCases(categories))

	report, err := suite.Run(context.Background())
	require.NoError(t, err)
	requireAllPassed(t, report)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "memory", report.Driver)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	// CP_ValidPolicy_IsCreated and CP_Success_And_NoDuplicateOnSingleConfirm
	// each confirm once; the review case never confirms
	assert.Len(t, console.Policies(), 16)
}

func TestDefaultSuitePassesWithConsoleQuirks(t *testing.T) {
	tests := []struct {
		name string
		opts policyconsole.Options
	}{
		{"slow postbacks", policyconsole.Options{Delay: 20 * time.Millisecond}},
		{"reset dialog", policyconsole.Options{ResetAlert: "Filters have been reset"}},
		{"reset leaves no selection", policyconsole.Options{ResetLeavesNoSelection: true}},
		{"menu without links", policyconsole.Options{HideMenuLinks: true}},
		{"greeting after login", policyconsole.Options{LoginAlert: "Welcome back"}},
		{"validation in page", policyconsole.Options{DOMValidation: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := setup(t, tt.opts)
			report, err := scenario.NewSuite(h, "memory", scenario.DefaultCases(categories)).Run(context.Background())
			require.NoError(t, err)
			requireAllPassed(t, report)
		})
	}
}

func TestFailedCaseDoesNotStopRun(t *testing.T) {
	h, _, _ := setup(t, policyconsole.Options{})
	cases := []scenario.Case{
		{Name: "fails", Screen: pageobject.ScreenAuthorize, Run: func(context.Context, *scenario.Harness) error {
			return errors.New("grid looked wrong")
		}},
		{Name: "passes", Screen: pageobject.ScreenCreate, Run: func(context.Context, *scenario.Harness) error { return nil }},
	}

	report, err := scenario.NewSuite(h, "memory", cases).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, entities.CaseStatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Message, "grid looked wrong")
	assert.Equal(t, entities.CaseStatusPassed, report.Results[1].Status)

	total, passed, failed := report.Totals()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
}

func TestLostSessionAbortsRemainingCases(t *testing.T) {
	h, session, _ := setup(t, policyconsole.Options{})
	cases := []scenario.Case{
		{Name: "first", Screen: pageobject.ScreenAuthorize, Run: func(context.Context, *scenario.Harness) error { return nil }},
		{Name: "crash", Screen: pageobject.ScreenAuthorize, Run: func(ctx context.Context, h *scenario.Harness) error {
			session.Kill()
			_, err := h.Reset().ResetFilters(ctx, h.Specs())
			return err
		}},
		{Name: "never", Screen: pageobject.ScreenAuthorize, Run: func(context.Context, *scenario.Harness) error { return nil }},
	}

	report, err := scenario.NewSuite(h, "memory", cases).Run(context.Background())
	require.ErrorIs(t, err, entities.ErrSessionLost)
	require.Len(t, report.Results, 3)
	assert.Equal(t, entities.CaseStatusPassed, report.Results[0].Status)
	assert.Equal(t, entities.CaseStatusAborted, report.Results[1].Status)
	assert.Equal(t, entities.CaseStatusAborted, report.Results[2].Status)
}

func TestCanceledRunAbortsEveryCase(t *testing.T) {
	h, _, _ := setup(t, policyconsole.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := scenario.NewSuite(h, "memory", scenario.DefaultCases(categories)).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	for _, r := range report.Results {
		assert.Equal(t, entities.CaseStatusAborted, r.Status, r.Name)
	}
}

func TestSelectNarrowsSuite(t *testing.T) {
	h, _, _ := setup(t, policyconsole.Options{})
	suite := scenario.NewSuite(h, "memory", scenario.DefaultCases(categories))

	narrowed, err := suite.Select([]string{"PA_TC001_FilterByMainCategory", "pa_tc004_reset_returnstofirstpage"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"PA_TC001_FilterByMainCategory/Life",
		"PA_TC001_FilterByMainCategory/Health",
		"PA_TC001_FilterByMainCategory/Motor",
		"PA_TC001_FilterByMainCategory/Property",
		"PA_TC004_Reset_ReturnsToFirstPage",
	}, narrowed.Cases())
	assert.Len(t, suite.Cases(), len(scenario.DefaultCases(categories)), "Select does not modify the suite")

	_, err = suite.Select([]string{"nope"})
	assert.Error(t, err)
}

func TestResetWithSinglePageFailsPagingCase(t *testing.T) {
	h, _, _ := setup(t, policyconsole.Options{PageSize: 50})
	suite, err := scenario.NewSuite(h, "memory", scenario.DefaultCases(categories)).
		Select([]string{"PA_TC004_Reset_ReturnsToFirstPage"})
	require.NoError(t, err)

	report, err := suite.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, entities.CaseStatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Message, "single page")
}

func TestCreateScreenCasesAgainstSlowConsole(t *testing.T) {
	h, _, console := setup(t, policyconsole.Options{Delay: 30 * time.Millisecond})
	suite, err := scenario.NewSuite(h, "memory", scenario.DefaultCases(categories)).Select([]string{
		"CP_MainCategory_SingleSelection_And_Update",
		"CP_Tenure_LabelFollowsSlider",
		"CP_ReviewDialog_DisplaysSelectedValues",
		"CP_Success_And_NoDuplicateOnSingleConfirm",
		"CP_Reset_ReturnsDefaults",
	})
	require.NoError(t, err)

	report, err := suite.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 5)
	requireAllPassed(t, report)

	all := console.Policies()
	require.Len(t, all, 15)
	saved := all[14]
	assert.Equal(t, "Single Confirm Plan", saved.Name)
	assert.Equal(t, "Life", saved.MainCategory)
	assert.Equal(t, "Term Life", saved.SubCategory)
	assert.Equal(t, "5", saved.Tenure)
}

func TestCreateCasesFailOnForeignCatalog(t *testing.T) {
	// the console offers none of the configured categories
	h, _, _ := setup(t, policyconsole.Options{Catalog: []policyconsole.Category{
		{Name: "Travel", Subs: []string{"Domestic"}},
		{Name: "Marine", Subs: []string{"Cargo"}},
	}})
	suite, err := scenario.NewSuite(h, "memory", scenario.DefaultCases(categories)).
		Select([]string{"CP_MainCategory_OptionsListed", "CP_ReviewDialog_DisplaysSelectedValues"})
	require.NoError(t, err)

	report, err := suite.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, entities.CaseStatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Message, `does not offer "Life"`)
	assert.Equal(t, entities.CaseStatusFailed, report.Results[1].Status)
}
