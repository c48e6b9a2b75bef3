package memdom

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Element is a handle into one parsed document. It goes stale as soon as the
// session replaces that document.
type Element struct {
	s    *Session
	doc  *html.Node
	node *html.Node
}

var _ interfaces.Element = (*Element)(nil)

var postBackRe = regexp.MustCompile(`__doPostBack\(\s*'([^']*)'\s*,\s*'([^']*)'\s*\)`)

// lock takes the session lock and validates the handle. The caller must
// unlock when err is nil.
func (e *Element) lock(ctx context.Context) error {
	e.s.mu.Lock()
	if err := e.s.usable(ctx); err != nil {
		e.s.mu.Unlock()
		return err
	}
	if e.doc != e.s.doc {
		e.s.mu.Unlock()
		return entities.ErrStaleElement
	}
	return nil
}

func (e *Element) unlock() { e.s.mu.Unlock() }

func (e *Element) describe() string {
	if id, ok := attr(e.node, "id"); ok {
		return fmt.Sprintf("<%s id=%q>", e.node.Data, id)
	}
	return "<" + e.node.Data + ">"
}

// interactable is the check a real browser applies before simulated input.
func (e *Element) interactable() error {
	if !displayed(e.node) {
		return fmt.Errorf("%s is not displayed: %w", e.describe(), entities.ErrNotInteractable)
	}
	if obstructed(e.node) {
		return fmt.Errorf("element click intercepted on %s: %w", e.describe(), entities.ErrNotInteractable)
	}
	return nil
}

func (e *Element) FindElements(ctx context.Context, sel entities.Selector) ([]interfaces.Element, error) {
	if err := e.lock(ctx); err != nil {
		return nil, err
	}
	defer e.unlock()
	return e.s.query(e.node, sel)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if err := e.lock(ctx); err != nil {
		return "", err
	}
	defer e.unlock()
	return visibleText(e.node), nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	if err := e.lock(ctx); err != nil {
		return "", err
	}
	defer e.unlock()
	if name == "value" {
		return fieldValue(e.node), nil
	}
	v, _ := attr(e.node, name)
	return v, nil
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	if err := e.lock(ctx); err != nil {
		return false, err
	}
	defer e.unlock()
	return displayed(e.node), nil
}

func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	if err := e.lock(ctx); err != nil {
		return false, err
	}
	defer e.unlock()
	return !disabled(e.node), nil
}

// IsAttached reports whether the handle still belongs to the active document.
func (e *Element) IsAttached(ctx context.Context) (bool, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if err := e.s.usable(ctx); err != nil {
		return false, err
	}
	return e.doc == e.s.doc, nil
}

func (e *Element) IsObstructed(ctx context.Context) (bool, error) {
	if err := e.lock(ctx); err != nil {
		return false, err
	}
	defer e.unlock()
	return obstructed(e.node), nil
}

func (e *Element) Click(ctx context.Context) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()
	if err := e.interactable(); err != nil {
		return err
	}
	return e.activate()
}

func (e *Element) ScriptClick(ctx context.Context) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()
	return e.activate()
}

// activate runs the default action of a click.
func (e *Element) activate() error {
	n := e.node
	if disabled(n) {
		return nil
	}
	id, _ := attr(n, "id")

	if n.Data == "option" {
		for p := n.Parent; p != nil; p = p.Parent {
			if p.Data == "select" {
				for i, o := range optionNodes(p) {
					if o == n {
						return e.selectIndex(p, i, false)
					}
				}
			}
		}
		return nil
	}

	for a := n; a != nil; a = a.Parent {
		if a.Type != html.ElementNode || a.Data != "a" {
			continue
		}
		href, _ := attr(a, "href")
		if m := postBackRe.FindStringSubmatch(href); m != nil {
			e.s.dispatch(Event{Kind: EventClick, Target: m[1], Argument: m[2]})
			return nil
		}
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			aid, _ := attr(a, "id")
			e.s.dispatch(Event{Kind: EventClick, Target: aid})
			return nil
		}
		target, err := e.s.resolve(href)
		if err != nil {
			return err
		}
		e.s.pending = nil
		e.s.dispatch(Event{Kind: EventNavigate, URL: target})
		return nil
	}

	switch {
	case n.Data == "input" && inputType(n) == "checkbox":
		if _, ok := attr(n, "checked"); ok {
			removeAttr(n, "checked")
		} else {
			setAttr(n, "checked", "checked")
		}
	case n.Data == "button", n.Data == "input" && isButtonType(inputType(n)):
		if onclick, _ := attr(n, "onclick"); onclick != "" {
			if m := postBackRe.FindStringSubmatch(onclick); m != nil {
				e.s.dispatch(Event{Kind: EventClick, Target: m[1], Argument: m[2]})
				return nil
			}
		}
		e.s.dispatch(Event{Kind: EventClick, Target: id})
	default:
		if onclick, _ := attr(n, "onclick"); onclick != "" {
			e.s.dispatch(Event{Kind: EventClick, Target: id})
		}
	}
	return nil
}

func isButtonType(t string) bool {
	return t == "submit" || t == "button" || t == "reset" || t == "image"
}

func (e *Element) textField() error {
	n := e.node
	if n.Data == "textarea" || (n.Data == "input" && !isButtonType(inputType(n)) && inputType(n) != "checkbox" && inputType(n) != "radio") {
		if disabled(n) {
			return fmt.Errorf("%s is disabled: %w", e.describe(), entities.ErrNotInteractable)
		}
		if _, ro := attr(n, "readonly"); ro {
			return fmt.Errorf("%s is read-only: %w", e.describe(), entities.ErrNotInteractable)
		}
		return nil
	}
	return fmt.Errorf("%s does not accept text: %w", e.describe(), entities.ErrNotInteractable)
}

func (e *Element) Clear(ctx context.Context) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()
	if err := e.interactable(); err != nil {
		return err
	}
	if err := e.textField(); err != nil {
		return err
	}
	setAttr(e.node, "value", "")
	return nil
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()
	if err := e.interactable(); err != nil {
		return err
	}
	if err := e.textField(); err != nil {
		return err
	}
	setAttr(e.node, "value", fieldValue(e.node)+sanitize(inputType(e.node), text, true))
	return nil
}

func (e *Element) ScriptSetValue(ctx context.Context, value string) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()
	setAttr(e.node, "value", sanitize(inputType(e.node), value, false))
	if autoPostBack(e.node) {
		id, _ := attr(e.node, "id")
		e.s.dispatch(Event{Kind: EventChange, Target: id})
	}
	return nil
}

func (e *Element) Options(ctx context.Context) ([]entities.Option, error) {
	if err := e.lock(ctx); err != nil {
		return nil, err
	}
	defer e.unlock()
	if e.node.Data != "select" {
		return nil, fmt.Errorf("%s is not a select: %w", e.describe(), entities.ErrNotInteractable)
	}
	nodes := optionNodes(e.node)
	opts := make([]entities.Option, len(nodes))
	for i, o := range nodes {
		_, selected := attr(o, "selected")
		opts[i] = entities.Option{Index: i, Label: collapsed(o), Value: optionValue(o), Selected: selected}
	}
	return opts, nil
}

func (e *Element) SelectIndex(ctx context.Context, index int) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()
	if e.node.Data != "select" {
		return fmt.Errorf("%s is not a select: %w", e.describe(), entities.ErrNotInteractable)
	}
	if err := e.interactable(); err != nil {
		return err
	}
	if disabled(e.node) {
		return fmt.Errorf("%s is disabled: %w", e.describe(), entities.ErrNotInteractable)
	}
	return e.selectIndex(e.node, index, false)
}

func (e *Element) ScriptSelectIndex(ctx context.Context, index int) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()
	if e.node.Data != "select" {
		return fmt.Errorf("%s is not a select: %w", e.describe(), entities.ErrNotInteractable)
	}
	return e.selectIndex(e.node, index, true)
}

// selectIndex marks one option selected. A change event (and so a postback)
// fires when the selection changed, or always when forced by a script.
func (e *Element) selectIndex(sel *html.Node, index int, force bool) error {
	opts := optionNodes(sel)
	if index < 0 || index >= len(opts) {
		return fmt.Errorf("option %d of %d: %w", index, len(opts), entities.ErrNoSuchElement)
	}
	_, already := attr(opts[index], "selected")
	for _, o := range opts {
		removeAttr(o, "selected")
	}
	setAttr(opts[index], "selected", "selected")
	if (force || !already) && autoPostBack(sel) {
		id, _ := attr(sel, "id")
		e.s.dispatch(Event{Kind: EventChange, Target: id})
	}
	return nil
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()
	return nil
}
