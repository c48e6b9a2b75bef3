package browser

import (
	"encoding/json"
	"fmt"

	"ui_automation/domain/entities"
)

// Script bodies run with the element bound to el and one argument bound to
// arg. Each driver wraps them in its own calling convention.
const (
	jsClick = `el.click(); return true;`

	jsSetValue = `el.focus();
el.value = arg;
el.dispatchEvent(new Event('input', {bubbles: true}));
el.dispatchEvent(new Event('change', {bubbles: true}));
return true;`

	jsSelectIndex = `el.selectedIndex = arg;
el.dispatchEvent(new Event('input', {bubbles: true}));
el.dispatchEvent(new Event('change', {bubbles: true}));
return true;`

	jsScrollIntoView = `el.scrollIntoView({block: 'center', inline: 'nearest'}); return true;`

	jsIsConnected = `return el.isConnected;`

	jsIsObstructed = `const r = el.getBoundingClientRect();
if (r.width === 0 || r.height === 0) return false;
const x = r.left + r.width / 2, y = r.top + r.height / 2;
if (x < 0 || y < 0 || x > window.innerWidth || y > window.innerHeight) {
  el.scrollIntoView({block: 'center'});
  return false;
}
const top = document.elementFromPoint(x, y);
return !!top && top !== el && !el.contains(top);`

	jsIsDisplayed = `const s = window.getComputedStyle(el);
if (s.visibility === 'hidden' || s.display === 'none') return false;
return !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);`

	jsIsEnabled = `return !el.disabled;`

	jsText = `return el.innerText || '';`

	jsProperty = `if (arg === 'value' && 'value' in el) return String(el.value);
const v = el.getAttribute(arg);
return v === null ? '' : v;`

	jsOptions = `return JSON.stringify(Array.from(el.options || []).map((o, i) => ({
  index: i,
  label: (o.label || o.text || '').trim(),
  value: o.value,
  selected: i === el.selectedIndex,
})));`
)

// seleniumScript calls body with arguments[0] as el and arguments[1] as arg.
func seleniumScript(body string) string {
	return "return (function(el, arg) {\n" + body + "\n}).apply(null, arguments);"
}

// playwrightScript is evaluated on an element handle, which becomes el.
func playwrightScript(body string) string {
	return "(el, arg) => {\n" + body + "\n}"
}

// cdpScript is called on a remote object, which becomes this. arg is inlined
// as a JSON literal.
func cdpScript(body string, arg any) (string, error) {
	literal, err := json.Marshal(arg)
	if err != nil {
		return "", fmt.Errorf("encode script argument: %w", err)
	}
	return "function() {\nconst el = this;\nconst arg = " + string(literal) + ";\n" + body + "\n}", nil
}

type optionJSON struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

func decodeOptions(raw any) ([]entities.Option, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("options script returned %T: %w", raw, entities.ErrNotInteractable)
	}
	var parsed []optionJSON
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	opts := make([]entities.Option, len(parsed))
	for i, o := range parsed {
		opts[i] = entities.Option{Index: o.Index, Label: o.Label, Value: o.Value, Selected: o.Selected}
	}
	return opts, nil
}

func asBool(raw any) bool {
	b, _ := raw.(bool)
	return b
}

func asString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
