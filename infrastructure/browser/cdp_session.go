package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// CDPSession drives Chrome over the DevTools protocol. Node handles are bound
// to the document they were found in; after a postback the protocol no
// longer resolves them, which is reported as ErrStaleElement.
type CDPSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	cancelAlloc context.CancelFunc
	dialogs     *dialogQueue
	logger      *logrus.Logger
}

var _ interfaces.Session = (*CDPSession)(nil)

// NewCDPSession launches Chrome, or attaches to opts.RemoteURL (a DevTools
// websocket URL) when set.
func NewCDPSession(opts Options, logger *logrus.Logger) (*CDPSession, error) {
	var allocCtx context.Context
	var cancelAlloc context.CancelFunc
	if opts.RemoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(context.Background(), opts.RemoteURL)
	} else {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.NoSandbox,
			chromedp.WindowSize(1280, 900),
		)
		if chromeBinary := findChromeBinary(opts.ChromePath); chromeBinary != "" {
			logger.Infof("Using Chrome binary at: %s", chromeBinary)
			allocOpts = append(allocOpts, chromedp.ExecPath(chromeBinary))
		}
		if opts.UserDataDir != "" {
			allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	}

	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debugf))
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	s := &CDPSession{
		ctx:         ctx,
		cancel:      cancel,
		cancelAlloc: cancelAlloc,
		dialogs:     newDialogQueue(),
		logger:      logger,
	}
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *page.EventJavascriptDialogOpening:
			logger.Debugf("Dialog opened: %s", ev.Message)
			s.dialogs.push(ev.Message, func() error {
				return chromedp.Run(s.ctx, page.HandleJavaScriptDialog(true))
			})
		case *page.EventJavascriptDialogClosed:
			s.dialogs.clear()
		}
	})
	return s, nil
}

// run executes actions on the browser context, bounded by ctx.
func (s *CDPSession) run(ctx context.Context, action bool, actions ...chromedp.Action) error {
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrSessionLost, err)
	}
	return s.dialogs.run(ctx, action, func() error {
		err := chromedp.Run(s.ctx, actions...)
		if err != nil && s.ctx.Err() != nil {
			return fmt.Errorf("%w: %v", entities.ErrSessionLost, err)
		}
		return err
	})
}

func xpathLiteral(v string) string {
	if !strings.Contains(v, "'") {
		return "'" + v + "'"
	}
	return `"` + v + `"`
}

// cdpQuery translates a selector into a chromedp query. scoped queries run
// under a parent node and must be CSS.
func cdpQuery(sel entities.Selector, scoped bool) (string, chromedp.QueryOption, error) {
	switch sel.By {
	case entities.ByID:
		return "[id=" + cssString(sel.Value) + "]", chromedp.ByQueryAll, nil
	case entities.ByCSS, entities.ByTagName:
		return sel.Value, chromedp.ByQueryAll, nil
	case entities.ByName:
		return "[name=" + cssString(sel.Value) + "]", chromedp.ByQueryAll, nil
	case entities.ByClassName:
		return "[class~=" + cssString(sel.Value) + "]", chromedp.ByQueryAll, nil
	}
	if scoped {
		return "", nil, fmt.Errorf("%s under a node: %w", sel, entities.ErrUnsupportedSelector)
	}
	switch sel.By {
	case entities.ByXPath:
		return sel.Value, chromedp.BySearch, nil
	case entities.ByLinkText:
		return "//a[normalize-space(.)=" + xpathLiteral(sel.Value) + "]", chromedp.BySearch, nil
	case entities.ByPartialLinkText:
		return "//a[contains(normalize-space(.)," + xpathLiteral(sel.Value) + ")]", chromedp.BySearch, nil
	}
	return "", nil, fmt.Errorf("%s: %w", sel, entities.ErrUnsupportedSelector)
}

func (s *CDPSession) wrap(nodes []*cdp.Node) []interfaces.Element {
	out := make([]interfaces.Element, 0, len(nodes))
	for _, n := range nodes {
		if n.NodeType != cdp.NodeTypeElement {
			continue
		}
		out = append(out, &cdpElement{s: s, node: n})
	}
	return out
}

func (s *CDPSession) FindElements(ctx context.Context, sel entities.Selector) ([]interfaces.Element, error) {
	query, by, err := cdpQuery(sel, false)
	if err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	if err := s.run(ctx, false, chromedp.Nodes(query, &nodes, by, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	return s.wrap(nodes), nil
}

func (s *CDPSession) AlertText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", entities.ErrSessionLost, err)
	}
	return s.dialogs.text()
}

func (s *CDPSession) AcceptAlert(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify(s.dialogs.acceptFirst())
}

func (s *CDPSession) Navigate(ctx context.Context, url string) error {
	s.logger.Infof("Navigating to: %s", url)
	return s.run(ctx, true, chromedp.Navigate(url))
}

func (s *CDPSession) Refresh(ctx context.Context) error {
	return s.run(ctx, true, chromedp.Reload())
}

func (s *CDPSession) CurrentURL(ctx context.Context) (string, error) {
	var u string
	err := s.run(ctx, false, chromedp.Location(&u))
	return u, err
}

func (s *CDPSession) Close() error {
	s.cancel()
	s.cancelAlloc()
	return nil
}

type cdpElement struct {
	s    *CDPSession
	node *cdp.Node
}

// call runs a script with the element bound and returns its decoded result.
func (e *cdpElement) call(ctx context.Context, action bool, body string, arg any) (any, error) {
	fn, err := cdpScript(body, arg)
	if err != nil {
		return nil, err
	}
	var raw []byte
	err = e.s.run(ctx, action, chromedp.ActionFunc(func(c context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(c)
		if err != nil {
			return err
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(c) }()

		res, exc, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(c)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("script failed: %s", exc.Text)
		}
		raw = []byte(res.Value)
		return nil
	}))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode script result: %w", err)
	}
	return v, nil
}

func (e *cdpElement) FindElements(ctx context.Context, sel entities.Selector) ([]interfaces.Element, error) {
	query, by, err := cdpQuery(sel, true)
	if err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	err = e.s.run(ctx, false, chromedp.Nodes(query, &nodes, by, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}
	return e.s.wrap(nodes), nil
}

func (e *cdpElement) Text(ctx context.Context) (string, error) {
	res, err := e.call(ctx, false, jsText, nil)
	return asString(res), err
}

func (e *cdpElement) Attribute(ctx context.Context, name string) (string, error) {
	res, err := e.call(ctx, false, jsProperty, name)
	return asString(res), err
}

func (e *cdpElement) IsDisplayed(ctx context.Context) (bool, error) {
	res, err := e.call(ctx, false, jsIsDisplayed, nil)
	return asBool(res), err
}

func (e *cdpElement) IsEnabled(ctx context.Context) (bool, error) {
	res, err := e.call(ctx, false, jsIsEnabled, nil)
	return asBool(res), err
}

func (e *cdpElement) IsAttached(ctx context.Context) (bool, error) {
	res, err := e.call(ctx, false, jsIsConnected, nil)
	if errors.Is(err, entities.ErrStaleElement) {
		return false, nil
	}
	return asBool(res), err
}

func (e *cdpElement) IsObstructed(ctx context.Context) (bool, error) {
	res, err := e.call(ctx, false, jsIsObstructed, nil)
	return asBool(res), err
}

func (e *cdpElement) Click(ctx context.Context) error {
	return e.s.run(ctx, true, chromedp.MouseClickNode(e.node))
}

func (e *cdpElement) Clear(ctx context.Context) error {
	_, err := e.call(ctx, true, `el.value = ''; el.dispatchEvent(new Event('input', {bubbles: true})); return true;`, nil)
	return err
}

func (e *cdpElement) SendKeys(ctx context.Context, text string) error {
	return e.s.run(ctx, true, chromedp.KeyEventNode(e.node, text))
}

func (e *cdpElement) Options(ctx context.Context) ([]entities.Option, error) {
	res, err := e.call(ctx, false, jsOptions, nil)
	if err != nil {
		return nil, err
	}
	return decodeOptions(res)
}

// SelectIndex has no input-level equivalent over the protocol; it sets the
// index and fires the events a user selection fires.
func (e *cdpElement) SelectIndex(ctx context.Context, index int) error {
	opts, err := e.Options(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(opts) {
		return fmt.Errorf("option %d of %d: %w", index, len(opts), entities.ErrNoSuchElement)
	}
	_, err = e.call(ctx, true, jsSelectIndex, index)
	return err
}

func (e *cdpElement) ScriptClick(ctx context.Context) error {
	_, err := e.call(ctx, true, jsClick, nil)
	return err
}

func (e *cdpElement) ScriptSetValue(ctx context.Context, value string) error {
	_, err := e.call(ctx, true, jsSetValue, value)
	return err
}

func (e *cdpElement) ScriptSelectIndex(ctx context.Context, index int) error {
	_, err := e.call(ctx, true, jsSelectIndex, index)
	return err
}

func (e *cdpElement) ScrollIntoView(ctx context.Context) error {
	return e.s.run(ctx, false, chromedp.ActionFunc(func(c context.Context) error {
		return dom.ScrollIntoViewIfNeeded().WithNodeID(e.node.NodeID).Do(c)
	}))
}
