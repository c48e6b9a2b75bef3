package pageobject

import (
	"errors"
	"fmt"
	"sort"

	"ui_automation/domain/entities"
)

// ErrUnknownField is returned for a field name a page does not declare
var ErrUnknownField = errors.New("unknown page field")

// Page is a screen described as a map of logical field names to selectors.
// Screens differ only in their maps; there is one page type.
type Page struct {
	Name   string
	fields map[string]entities.Selector
}

func New(name string, fields map[string]entities.Selector) *Page {
	copied := make(map[string]entities.Selector, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Page{Name: name, fields: copied}
}

// Field returns the selector of a declared field.
func (p *Page) Field(name string) (entities.Selector, error) {
	sel, ok := p.fields[name]
	if !ok {
		return entities.Selector{}, fmt.Errorf("%s.%s: %w", p.Name, name, ErrUnknownField)
	}
	return sel, nil
}

// MustField is Field for names known at compile time; it panics on a typo.
func (p *Page) MustField(name string) entities.Selector {
	sel, err := p.Field(name)
	if err != nil {
		panic(err)
	}
	return sel
}

// With returns a copy of the page with some selectors replaced. Overrides
// for undeclared fields are rejected.
func (p *Page) With(overrides map[string]entities.Selector) (*Page, error) {
	out := New(p.Name, p.fields)
	for name, sel := range overrides {
		if _, ok := out.fields[name]; !ok {
			return nil, fmt.Errorf("override %s.%s: %w", p.Name, name, ErrUnknownField)
		}
		out.fields[name] = sel
	}
	return out, nil
}

// Names lists the declared fields in sorted order.
func (p *Page) Names() []string {
	names := make([]string, 0, len(p.fields))
	for name := range p.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
