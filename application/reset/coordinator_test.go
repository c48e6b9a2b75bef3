package reset_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/application/action"
	"ui_automation/application/alert"
	"ui_automation/application/navigation"
	"ui_automation/application/pageobject"
	"ui_automation/application/reset"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
	"ui_automation/infrastructure/memdom"
	"ui_automation/infrastructure/memdom/policyconsole"
)

const base = "http://console.test/Admin/"

var (
	mainDefaults   = []string{"", "-- Select Main Category --", "Select Main Category"}
	subDefaults    = []string{"All", "-- All --", "All Sub Categories"}
	statusDefaults = []string{"All"}
)

type fixture struct {
	session *memdom.Session
	runner  *action.Runner
	coord   *reset.Coordinator
	screen  *pageobject.Page
	specs   []entities.FilterSpec
}

func setup(t *testing.T, opts policyconsole.Options) *fixture {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := memdom.NewSession(policyconsole.New(opts), l)
	ctx := context.Background()

	runner := action.NewRunner(wait.NewEngine(s, l, 2*time.Second, 5*time.Millisecond))
	guard := alert.NewGuard(s, l)
	creds := navigation.Credentials{Username: "admin_user", Password: "testadmin"}
	require.NoError(t, navigation.Login(ctx, runner, guard, pageobject.LoginScreen(), base+policyconsole.LoginPath, creds, 20*time.Millisecond))
	require.NoError(t, s.Navigate(ctx, base+policyconsole.AuthorizePath))

	screen := pageobject.AuthorizePolicyScreen()
	return &fixture{
		session: s,
		runner:  runner,
		screen:  screen,
		specs:   pageobject.FilterSpecs(screen, mainDefaults, subDefaults, statusDefaults),
		coord: reset.NewCoordinator(runner, guard, reset.Locators{
			Reset:  screen.MustField(pageobject.FieldReset),
			Search: screen.MustField(pageobject.FieldSearch),
			Grid:   screen.MustField(pageobject.FieldGridRows),
		}, 2*time.Second, 20*time.Millisecond),
	}
}

// filter selects main, sub and status and searches.
func (f *fixture) filter(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	engine := f.runner.Engine()
	main := f.screen.MustField(pageobject.FieldMainCategory)
	before, err := engine.First(ctx, main, 0)
	require.NoError(t, err)
	require.NoError(t, f.runner.SelectLabel(ctx, main, "Life"))
	require.NoError(t, engine.Until(ctx, wait.Stale(before)), "main category posts back")
	require.NoError(t, engine.Until(ctx, wait.SelectedTextMatchesAny(main, []string{"Life"})))
	require.NoError(t, engine.Until(ctx, wait.SelectReady(f.screen.MustField(pageobject.FieldSubCategory))))
	require.NoError(t, f.runner.SelectLabel(ctx, f.screen.MustField(pageobject.FieldSubCategory), "Whole Life"))
	require.NoError(t, f.runner.SelectLabel(ctx, f.screen.MustField(pageobject.FieldStatus), "Approved"))
	require.NoError(t, f.runner.Click(ctx, f.screen.MustField(pageobject.FieldSearch)))
}

func TestResetRestoresDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts policyconsole.Options
	}{
		{"plain", policyconsole.Options{}},
		{"dialog after reset", policyconsole.Options{ResetAlert: "Filters have been reset"}},
		{"no selection after reset", policyconsole.Options{ResetLeavesNoSelection: true}},
		{"slow server", policyconsole.Options{Delay: 25 * time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.opts)
			f.filter(t)

			state, err := f.coord.ResetFilters(context.Background(), f.specs)
			require.NoError(t, err)
			assert.Equal(t, policyconsole.MainPlaceholder, state.MainCategory)
			assert.Equal(t, policyconsole.SubAll, state.SubCategory)
			assert.Equal(t, policyconsole.StatusAll, state.Status)
			assert.True(t, reset.MatchesDefaults(state, f.specs))
		})
	}
}

func TestResetIsIdempotent(t *testing.T) {
	f := setup(t, policyconsole.Options{})
	ctx := context.Background()

	first, err := f.coord.ResetFilters(ctx, f.specs)
	require.NoError(t, err)
	second, err := f.coord.ResetFilters(ctx, f.specs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResetAfterSessionLoss(t *testing.T) {
	f := setup(t, policyconsole.Options{})
	f.session.Kill()

	_, err := f.coord.ResetFilters(context.Background(), f.specs)
	require.ErrorIs(t, err, entities.ErrSessionLost)
}

func TestSettleReportsFilterThatNeverLoads(t *testing.T) {
	f := setup(t, policyconsole.Options{})
	missing := entities.FilterSpec{Name: entities.FilterStatus, Selector: entities.ID("ddlMissing")}

	err := f.coord.Settle(context.Background(), missing)
	var notSettled *entities.FilterNotSettledError
	require.ErrorAs(t, err, &notSettled)
	assert.Equal(t, entities.FilterStatus, notSettled.Filter)
}

func TestMismatches(t *testing.T) {
	specs := pageobject.FilterSpecs(pageobject.AuthorizePolicyScreen(), mainDefaults, subDefaults, statusDefaults)

	clean := entities.FilterState{MainCategory: "-- select main category --", SubCategory: " All ", Status: "All"}
	assert.Empty(t, reset.Mismatches(clean, specs))

	dirty := entities.FilterState{MainCategory: "Life", SubCategory: "-- All --", Status: "Approved"}
	assert.Equal(t, []entities.FilterName{entities.FilterMainCategory, entities.FilterStatus}, reset.Mismatches(dirty, specs))
	assert.False(t, reset.MatchesDefaults(dirty, specs))

	unconstrained := pageobject.FilterSpecs(pageobject.AuthorizePolicyScreen(), nil, nil, nil)
	assert.True(t, reset.MatchesDefaults(dirty, unconstrained))
}

func optionLabels(opts []entities.Option) []string {
	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = o.Label
	}
	return labels
}

// changeMain selects a main category, waits for the postback and settles
// the sub category.
func (f *fixture) changeMain(t *testing.T, label string) {
	t.Helper()
	ctx := context.Background()
	engine := f.runner.Engine()
	main := f.screen.MustField(pageobject.FieldMainCategory)
	before, err := engine.First(ctx, main, 0)
	require.NoError(t, err)
	require.NoError(t, f.runner.SelectLabel(ctx, main, label))
	require.NoError(t, engine.Until(ctx, wait.Stale(before)))
	require.NoError(t, f.coord.Settle(ctx, f.specs[entities.FilterSubCategory]))
}

func TestChangingMainCategoryRepopulatesSubCategory(t *testing.T) {
	for name, opts := range map[string]policyconsole.Options{
		"immediate": {},
		"slow":      {Delay: 30 * time.Millisecond},
	} {
		t.Run(name, func(t *testing.T) {
			f := setup(t, opts)
			ctx := context.Background()
			sub := f.screen.MustField(pageobject.FieldSubCategory)

			f.changeMain(t, "Life")
			lifeOpts, err := f.runner.Options(ctx, sub)
			require.NoError(t, err)
			assert.Contains(t, optionLabels(lifeOpts), "Term Life")

			f.changeMain(t, "Motor")
			motorOpts, err := f.runner.Options(ctx, sub)
			require.NoError(t, err)
			assert.NotEqual(t, optionLabels(lifeOpts), optionLabels(motorOpts))
			assert.Contains(t, optionLabels(motorOpts), "Four Wheeler")
			assert.NotContains(t, optionLabels(motorOpts), "Term Life")

			require.NoError(t, f.runner.Engine().Until(ctx, wait.HasSelection(sub)))
			_, selected, err := f.runner.SelectedOption(ctx, sub)
			require.NoError(t, err)
			assert.True(t, selected)
		})
	}
}
