package pager_test

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
	"ui_automation/application/pager"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
	"ui_automation/infrastructure/memdom"
	"ui_automation/infrastructure/memdom/policyconsole"
)

const base = "http://console.test/Admin/"

func openGrid(t *testing.T, opts policyconsole.Options) *pager.Navigator {
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
	return pager.NewNavigator(runner, guard, pager.Locators{
		Container: screen.MustField(pageobject.FieldPager),
		Grid:      screen.MustField(pageobject.FieldGridRows),
		Overlay:   screen.MustField(pageobject.FieldOverlay),
	}, 2*time.Second, 20*time.Millisecond)
}

func TestGoToPageMovesAndUpdatesCursor(t *testing.T) {
	p := openGrid(t, policyconsole.Options{})
	ctx := context.Background()

	cur, err := p.CurrentPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.PageCursor(1), cur)

	move, err := p.GoToPage(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, entities.Moved, move)

	onThird, err := p.IsCurrentPage(ctx, 3)
	require.NoError(t, err)
	assert.True(t, onThird)

	linked, err := p.HasPageLink(ctx, 1)
	require.NoError(t, err)
	assert.True(t, linked)
	linked, err = p.HasPageLink(ctx, 3)
	require.NoError(t, err)
	assert.False(t, linked, "the current page is not a link")
}

func TestGoToCurrentOrMissingPage(t *testing.T) {
	p := openGrid(t, policyconsole.Options{})
	ctx := context.Background()

	for _, n := range []int{1, 5, 9} {
		move, err := p.GoToPage(ctx, n)
		require.NoError(t, err)
		assert.Equal(t, entities.NoSuchPage, move, "page %d", n)

		cur, err := p.CurrentPage(ctx)
		require.NoError(t, err)
		assert.Equal(t, entities.PageCursor(1), cur, "cursor after page %d", n)
	}
}

func TestSinglePageGridIsIndeterminate(t *testing.T) {
	p := openGrid(t, policyconsole.Options{PageSize: 100})
	ctx := context.Background()

	_, err := p.CurrentPage(ctx)
	require.ErrorIs(t, err, entities.ErrIndeterminatePage)

	onFirst, err := p.IsCurrentPage(ctx, 1)
	require.NoError(t, err)
	assert.False(t, onFirst)

	move, err := p.GoToPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, entities.NoSuchPage, move)
}

func TestGoToPageThroughObstruction(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the click readiness timeout")
	}
	p := openGrid(t, policyconsole.Options{ObstructPager: true})
	ctx := context.Background()

	move, err := p.GoToPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, entities.Moved, move)

	onSecond, err := p.IsCurrentPage(ctx, 2)
	require.NoError(t, err)
	assert.True(t, onSecond)
}

func TestGoToPageWithSlowServer(t *testing.T) {
	p := openGrid(t, policyconsole.Options{Delay: 30 * time.Millisecond})
	ctx := context.Background()

	move, err := p.GoToPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, entities.Moved, move)

	onSecond, err := p.IsCurrentPage(ctx, 2)
	require.NoError(t, err)
	assert.True(t, onSecond)
}
