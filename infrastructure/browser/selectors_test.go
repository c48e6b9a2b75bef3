package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"

	"ui_automation/domain/entities"
)

func TestSeleniumBy(t *testing.T) {
	by, value, err := seleniumBy(entities.Selector{By: entities.ByLinkText, Value: "Authorize Policy"})
	require.NoError(t, err)
	assert.Equal(t, selenium.ByLinkText, by)
	assert.Equal(t, "Authorize Policy", value)

	_, _, err = seleniumBy(entities.Selector{By: "shadow", Value: "x"})
	assert.ErrorIs(t, err, entities.ErrUnsupportedSelector)
}

func TestPlaywrightSelector(t *testing.T) {
	tests := []struct {
		sel  entities.Selector
		want string
	}{
		{entities.Selector{By: entities.ByID, Value: "ctl00_ddlMain"}, `css=[id="ctl00_ddlMain"]`},
		{entities.Selector{By: entities.ByCSS, Value: "table.grid tr"}, "css=table.grid tr"},
		{entities.Selector{By: entities.ByXPath, Value: "//a[text()='2']"}, "xpath=//a[text()='2']"},
		{entities.Selector{By: entities.ByName, Value: `q"1`}, `css=[name="q\"1"]`},
		{entities.Selector{By: entities.ByLinkText, Value: "Create Policy"}, `css=a:text-is("Create Policy")`},
		{entities.Selector{By: entities.ByPartialLinkText, Value: "Create"}, `css=a:has-text("Create")`},
	}
	for _, tt := range tests {
		t.Run(tt.sel.String(), func(t *testing.T) {
			got, err := playwrightSelector(tt.sel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCDPQuery(t *testing.T) {
	q, _, err := cdpQuery(entities.Selector{By: entities.ByID, Value: "grid"}, false)
	require.NoError(t, err)
	assert.Equal(t, `[id="grid"]`, q)

	q, _, err = cdpQuery(entities.Selector{By: entities.ByLinkText, Value: "Bob's"}, false)
	require.NoError(t, err)
	assert.Equal(t, `//a[normalize-space(.)="Bob's"]`, q)

	q, _, err = cdpQuery(entities.Selector{By: entities.ByPartialLinkText, Value: "Next"}, false)
	require.NoError(t, err)
	assert.Equal(t, `//a[contains(normalize-space(.),'Next')]`, q)

	q, _, err = cdpQuery(entities.Selector{By: entities.ByCSS, Value: "td a"}, true)
	require.NoError(t, err)
	assert.Equal(t, "td a", q)

	_, _, err = cdpQuery(entities.Selector{By: entities.ByXPath, Value: ".//a"}, true)
	assert.ErrorIs(t, err, entities.ErrUnsupportedSelector)
}

func TestCDPScriptInlinesArgument(t *testing.T) {
	fn, err := cdpScript(jsProperty, `va"lue`)
	require.NoError(t, err)
	assert.Contains(t, fn, `const arg = "va\"lue";`)
	assert.Contains(t, fn, "const el = this;")
}

func TestDecodeOptions(t *testing.T) {
	opts, err := decodeOptions(`[{"index":0,"label":"All","value":"","selected":false},{"index":1,"label":"Life","value":"L","selected":true}]`)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, entities.Option{Index: 1, Label: "Life", Value: "L", Selected: true}, opts[1])

	_, err = decodeOptions(nil)
	assert.ErrorIs(t, err, entities.ErrNotInteractable)
}
