package memdom

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

type pendingRender struct {
	resp Response
	at   time.Time
}

// Session implements interfaces.Session over an App.
type Session struct {
	mu      sync.Mutex
	app     App
	logger  *logrus.Logger
	url     string
	doc     *html.Node
	alerts  []string
	pending *pendingRender
	closed  bool
	now     func() time.Time
}

var _ interfaces.Session = (*Session)(nil)

// NewSession creates a session showing an empty document. Call Navigate to
// load the first page.
func NewSession(app App, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	doc, _ := html.Parse(strings.NewReader("<html><head></head><body></body></html>"))
	return &Session{
		app:    app,
		logger: logger,
		url:    "about:blank",
		doc:    doc,
		now:    time.Now,
	}
}

// Kill makes every later call fail as if the browser had crashed.
func (s *Session) Kill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// HTML renders the active document, for diagnostics.
func (s *Session) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	var b strings.Builder
	_ = html.Render(&b, s.doc)
	return b.String()
}

func (s *Session) FindElements(ctx context.Context, sel entities.Selector) ([]interfaces.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(ctx); err != nil {
		return nil, err
	}
	return s.query(s.doc, sel)
}

func (s *Session) query(root *html.Node, sel entities.Selector) ([]interfaces.Element, error) {
	nodes, err := queryNodes(root, sel)
	if err != nil {
		return nil, err
	}
	els := make([]interfaces.Element, len(nodes))
	for i, n := range nodes {
		els[i] = &Element{s: s, doc: s.doc, node: n}
	}
	return els, nil
}

func (s *Session) AlertText(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.alive(ctx); err != nil {
		return "", err
	}
	s.settle()
	if len(s.alerts) == 0 {
		return "", entities.ErrNoAlert
	}
	return s.alerts[0], nil
}

func (s *Session) AcceptAlert(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.alive(ctx); err != nil {
		return err
	}
	s.settle()
	if len(s.alerts) == 0 {
		return entities.ErrNoAlert
	}
	s.alerts = s.alerts[1:]
	return nil
}

func (s *Session) Navigate(ctx context.Context, rawURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(ctx); err != nil {
		return err
	}
	target, err := s.resolve(rawURL)
	if err != nil {
		return err
	}
	// a navigation discards any response still in flight
	s.pending = nil
	s.dispatch(Event{Kind: EventNavigate, URL: target})
	return nil
}

func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(ctx); err != nil {
		return err
	}
	s.pending = nil
	s.dispatch(Event{Kind: EventNavigate, URL: s.url})
	return nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.alive(ctx); err != nil {
		return "", err
	}
	s.settle()
	return s.url, nil
}

func (s *Session) Close() error {
	s.Kill()
	return nil
}

func (s *Session) alive(ctx context.Context) error {
	if s.closed {
		return entities.ErrSessionLost
	}
	return ctx.Err()
}

// usable applies due renders and refuses work while a dialog is open.
func (s *Session) usable(ctx context.Context) error {
	if err := s.alive(ctx); err != nil {
		return err
	}
	s.settle()
	if len(s.alerts) > 0 {
		return fmt.Errorf("%w: %s", entities.ErrUnexpectedAlert, s.alerts[0])
	}
	return nil
}

func (s *Session) settle() {
	if s.pending != nil && !s.now().Before(s.pending.at) {
		resp := s.pending.resp
		s.pending = nil
		s.apply(resp)
	}
}

func (s *Session) dispatch(ev Event) {
	if ev.URL == "" {
		ev.URL = s.url
	}
	if ev.Form == nil {
		ev.Form = formValues(s.doc)
	}
	s.logger.Debugf("memdom %s target=%s arg=%s url=%s", ev.Kind, ev.Target, ev.Argument, ev.URL)
	resp := s.app.Handle(ev)
	if resp.Delay > 0 {
		s.pending = &pendingRender{resp: resp, at: s.now().Add(resp.Delay)}
		return
	}
	s.apply(resp)
}

func (s *Session) apply(resp Response) {
	if resp.URL != "" {
		if u, err := s.resolve(resp.URL); err == nil {
			s.url = u
		}
	}
	if resp.HTML != "" {
		doc, err := html.Parse(strings.NewReader(resp.HTML))
		if err != nil {
			s.logger.Warnf("memdom: failed to parse response: %v", err)
		} else {
			s.doc = doc
		}
	}
	if resp.Alert != "" {
		s.alerts = append(s.alerts, resp.Alert)
	}
}

func (s *Session) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", ref, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	base, err := url.Parse(s.url)
	if err != nil || !base.IsAbs() {
		return u.String(), nil
	}
	return base.ResolveReference(u).String(), nil
}
