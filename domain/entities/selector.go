package entities

import (
	"fmt"
	"strings"
)

// By names an element lookup strategy. Values match the WebDriver wire names.
type By string

const (
	ByID              By = "id"
	ByCSS             By = "css selector"
	ByXPath           By = "xpath"
	ByName            By = "name"
	ByTagName         By = "tag name"
	ByClassName       By = "class name"
	ByLinkText        By = "link text"
	ByPartialLinkText By = "partial link text"
)

// Selector describes how to find elements. It may match zero or more nodes.
type Selector struct {
	By    By     `json:"by"`
	Value string `json:"value"`
}

func ID(v string) Selector       { return Selector{By: ByID, Value: v} }
func CSS(v string) Selector      { return Selector{By: ByCSS, Value: v} }
func XPath(v string) Selector    { return Selector{By: ByXPath, Value: v} }
func Name(v string) Selector     { return Selector{By: ByName, Value: v} }
func Tag(v string) Selector      { return Selector{By: ByTagName, Value: v} }
func Class(v string) Selector    { return Selector{By: ByClassName, Value: v} }
func LinkText(v string) Selector { return Selector{By: ByLinkText, Value: v} }

// IsZero reports whether the selector was left unset.
func (s Selector) IsZero() bool {
	return s.By == "" && s.Value == ""
}

func (s Selector) String() string {
	return fmt.Sprintf("%s=%s", s.By, s.Value)
}

var selectorPrefixes = map[string]By{
	"id":    ByID,
	"css":   ByCSS,
	"xpath": ByXPath,
	"name":  ByName,
	"tag":   ByTagName,
	"class": ByClassName,
	"link":  ByLinkText,
	"plink": ByPartialLinkText,
}

// ParseSelector reads the "strategy:value" form used in configuration,
// e.g. "id:ContentPlaceHolder_Admin_btnReset" or "xpath://tr[1]".
func ParseSelector(raw string) (Selector, error) {
	prefix, value, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || value == "" {
		return Selector{}, fmt.Errorf("invalid selector %q: want strategy:value", raw)
	}
	by, ok := selectorPrefixes[strings.ToLower(prefix)]
	if !ok {
		return Selector{}, fmt.Errorf("invalid selector %q: unknown strategy %q", raw, prefix)
	}
	return Selector{By: by, Value: value}, nil
}
