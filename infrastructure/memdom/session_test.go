package memdom

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/domain/entities"
)

// counterApp renders a page whose button posts back and increments a counter.
type counterApp struct {
	count  int
	events []Event
	alert  string
	delay  time.Duration
}

func (a *counterApp) Handle(ev Event) Response {
	a.events = append(a.events, ev)
	if ev.Kind == EventClick && ev.Target == "btnInc" {
		a.count++
	}
	if ev.Kind == EventChange && ev.Target == "ddl" {
		a.count = 100
	}
	page := fmt.Sprintf(`<html><body>
<form>
  <span id="count">%d</span>
  <input type="submit" id="btnInc" name="btnInc" value="Inc">
  <input type="number" id="amount" name="amount" value="abc">
  <input type="text" id="name" name="name" value="old">
  <input type="hidden" id="secret" value="x">
  <button id="covered" data-obstructed="true">Covered</button>
  <div style="display: none"><span id="ghost">boo</span></div>
  <select id="ddl" name="ddl" onchange="javascript:setTimeout('__doPostBack(\'ddl\',\'\')', 0)">
    <option value="">-- All --</option>
    <option value="h">Health</option>
  </select>
  <select id="plain" name="plain"><option>One</option><option selected>Two</option></select>
  <table id="grid"><tbody><tr><td>1</td><td>Health</td></tr></tbody></table>
  <a id="next" href="javascript:__doPostBack('grid','Page$2')">2</a>
  <a id="rel" href="Other.aspx">Other page</a>
</form></body></html>`, a.count)
	return Response{HTML: page, Alert: a.alert, Delay: a.delay}
}

func newTestSession(t *testing.T, app App) *Session {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := NewSession(app, l)
	require.NoError(t, s.Navigate(context.Background(), "http://console.local/Admin/Page.aspx"))
	return s
}

func one(t *testing.T, s *Session, sel entities.Selector) *Element {
	t.Helper()
	els, err := s.FindElements(context.Background(), sel)
	require.NoError(t, err)
	require.Len(t, els, 1, "selector %s", sel)
	return els[0].(*Element)
}

func TestQueriesByStrategy(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &counterApp{})

	for _, sel := range []entities.Selector{
		entities.ID("count"),
		entities.CSS("span#count"),
		entities.XPath("//span[@id='count']"),
		entities.Name("btnInc"),
		entities.LinkText("Other page"),
		{By: entities.ByPartialLinkText, Value: "Other"},
	} {
		els, err := s.FindElements(ctx, sel)
		require.NoError(t, err, sel.String())
		assert.Len(t, els, 1, sel.String())
	}

	rows, err := s.FindElements(ctx, entities.XPath("//table[@id='grid']/tbody/tr"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	cells, err := rows[0].FindElements(ctx, entities.XPath("./td[2]"))
	require.NoError(t, err)
	require.Len(t, cells, 1)
	text, err := cells[0].Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Health", text)

	none, err := s.FindElements(ctx, entities.ID("missing"))
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.FindElements(ctx, entities.XPath("//tr["))
	assert.ErrorIs(t, err, entities.ErrUnsupportedSelector)
}

func TestPostBackReplacesDocument(t *testing.T) {
	ctx := context.Background()
	app := &counterApp{}
	s := newTestSession(t, app)

	btn := one(t, s, entities.ID("btnInc"))
	before := one(t, s, entities.ID("count"))

	require.NoError(t, btn.Click(ctx))

	attached, err := before.IsAttached(ctx)
	require.NoError(t, err)
	assert.False(t, attached)
	_, err = before.Text(ctx)
	assert.ErrorIs(t, err, entities.ErrStaleElement)

	text, err := one(t, s, entities.ID("count")).Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", text)
	assert.Equal(t, "old", app.events[len(app.events)-1].Form.Get("name"))
}

func TestPostBackLinkCarriesArgument(t *testing.T) {
	app := &counterApp{}
	s := newTestSession(t, app)

	require.NoError(t, one(t, s, entities.ID("next")).Click(context.Background()))
	last := app.events[len(app.events)-1]
	assert.Equal(t, EventClick, last.Kind)
	assert.Equal(t, "grid", last.Target)
	assert.Equal(t, "Page$2", last.Argument)
}

func TestRelativeLinkNavigates(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &counterApp{})

	require.NoError(t, one(t, s, entities.ID("rel")).Click(ctx))
	u, err := s.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://console.local/Admin/Other.aspx", u)
}

func TestVisibilityRules(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &counterApp{})

	for id, want := range map[string]bool{"count": true, "secret": false, "ghost": false} {
		shown, err := one(t, s, entities.ID(id)).IsDisplayed(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, shown, id)
	}
	text, err := one(t, s, entities.ID("ghost")).Text(ctx)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestObstructedClickFailsButScriptClickWorks(t *testing.T) {
	ctx := context.Background()
	app := &counterApp{}
	s := newTestSession(t, app)
	covered := one(t, s, entities.ID("covered"))

	ob, err := covered.IsObstructed(ctx)
	require.NoError(t, err)
	assert.True(t, ob)

	assert.ErrorIs(t, covered.Click(ctx), entities.ErrNotInteractable)
	n := len(app.events)
	require.NoError(t, covered.ScriptClick(ctx))
	assert.Len(t, app.events, n+1)
}

func TestTypingIntoNumberField(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &counterApp{})
	amount := one(t, s, entities.ID("amount"))

	require.NoError(t, amount.Clear(ctx))
	require.NoError(t, amount.SendKeys(ctx, "5000"))
	v, _ := amount.Attribute(ctx, "value")
	assert.Equal(t, "5000", v)

	require.NoError(t, amount.Clear(ctx))
	require.NoError(t, amount.SendKeys(ctx, "abc"))
	v, _ = amount.Attribute(ctx, "value")
	assert.Empty(t, v)

	name := one(t, s, entities.ID("name"))
	require.NoError(t, name.SendKeys(ctx, "er"))
	v, _ = name.Attribute(ctx, "value")
	assert.Equal(t, "older", v, "typing appends without a clear")
}

func TestSelectsAndAutoPostBack(t *testing.T) {
	ctx := context.Background()
	app := &counterApp{}
	s := newTestSession(t, app)

	ddl := one(t, s, entities.ID("ddl"))
	opts, err := ddl.Options(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, "-- All --", opts[0].Label)
	assert.False(t, opts[0].Selected, "no selected attribute means no selection")

	plain := one(t, s, entities.ID("plain"))
	v, _ := plain.Attribute(ctx, "value")
	assert.Equal(t, "Two", v)
	require.NoError(t, plain.SelectIndex(ctx, 0))
	attached, _ := plain.IsAttached(ctx)
	assert.True(t, attached, "plain select does not post back")

	require.NoError(t, ddl.SelectIndex(ctx, 1))
	attached, _ = ddl.IsAttached(ctx)
	assert.False(t, attached)
	text, _ := one(t, s, entities.ID("count")).Text(ctx)
	assert.Equal(t, "100", text)

	assert.ErrorIs(t, one(t, s, entities.ID("plain")).SelectIndex(ctx, 9), entities.ErrNoSuchElement)
}

func TestAlertBlocksUntilAccepted(t *testing.T) {
	ctx := context.Background()
	app := &counterApp{alert: "Saved"}
	s := newTestSession(t, app)

	_, err := s.FindElements(ctx, entities.ID("count"))
	assert.ErrorIs(t, err, entities.ErrUnexpectedAlert)

	text, err := s.AlertText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Saved", text)
	require.NoError(t, s.AcceptAlert(ctx))

	_, err = s.AlertText(ctx)
	assert.ErrorIs(t, err, entities.ErrNoAlert)
	_, err = s.FindElements(ctx, entities.ID("count"))
	assert.NoError(t, err)
}

func TestDelayedResponse(t *testing.T) {
	ctx := context.Background()
	app := &counterApp{}
	s := newTestSession(t, app)
	clock := time.Now()
	s.now = func() time.Time { return clock }
	app.delay = time.Second

	before := one(t, s, entities.ID("count"))
	require.NoError(t, one(t, s, entities.ID("btnInc")).Click(ctx))

	attached, _ := before.IsAttached(ctx)
	assert.True(t, attached, "response not yet rendered")

	clock = clock.Add(time.Second)
	attached, _ = before.IsAttached(ctx)
	assert.False(t, attached)
}

func TestKilledSessionIsLost(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &counterApp{})
	el := one(t, s, entities.ID("count"))
	s.Kill()

	_, err := s.FindElements(ctx, entities.ID("count"))
	assert.ErrorIs(t, err, entities.ErrSessionLost)
	_, err = s.AlertText(ctx)
	assert.ErrorIs(t, err, entities.ErrSessionLost)
	_, err = el.IsAttached(ctx)
	assert.ErrorIs(t, err, entities.ErrSessionLost)
}
