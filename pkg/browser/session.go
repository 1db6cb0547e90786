package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/pingcap/tipocket-sqllab/pkg/core"
)

// Options configures a browser session.
type Options struct {
	Headless bool
	// ExecPath overrides the Chrome binary, empty means lookup in PATH.
	ExecPath        string
	WindowWidth     int
	WindowHeight    int
	CommandTimeout  time.Duration
	PageLoadTimeout time.Duration
}

func (o *Options) adjust() {
	if o.WindowWidth == 0 {
		o.WindowWidth = 1280
	}
	if o.WindowHeight == 0 {
		o.WindowHeight = 1024
	}
	if o.CommandTimeout == 0 {
		o.CommandTimeout = 4 * time.Second
	}
	if o.PageLoadTimeout == 0 {
		o.PageLoadTimeout = 60 * time.Second
	}
}

// Session is one browser with a single tab. Every session gets its own
// allocator, so cookies are never shared between sessions.
type Session struct {
	opts Options

	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewSession starts a browser and enables network events on its tab.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	opts.adjust()
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	s := &Session{opts: opts}
	// the browser outlives ctx so failure artifacts can still be taken;
	// Close ends it
	var allocCtx context.Context
	allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	s.ctx, s.cancel = chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			zap.S().Debugf("[browser] "+format, args...)
		}),
	)

	// the first Run starts the browser and binds it to s.ctx, so it must
	// not run on a derived context
	stop := context.AfterFunc(ctx, s.cancel)
	err := chromedp.Run(s.ctx, network.Enable())
	stop()
	if err != nil {
		s.Close()
		return nil, errors.Annotate(err, "start browser")
	}
	zap.L().Info("browser started", zap.Bool("headless", opts.Headless))
	return s, nil
}

// Listen registers fn for every DevTools event of the tab.
func (s *Session) Listen(fn func(ev interface{})) {
	chromedp.ListenTarget(s.ctx, fn)
}

// Close closes the tab and kills the browser.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

// run runs actions on the tab, bounded by timeout and by ctx.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(tctx, actions...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return errors.Trace(ctx.Err())
	}
	return errors.Trace(err)
}

// locate runs actions that need sel to be present. Running out of time is
// reported as element-not-found.
func (s *Session) locate(ctx context.Context, sel string, actions ...chromedp.Action) error {
	err := s.run(ctx, s.opts.CommandTimeout, actions...)
	if err != nil && ctx.Err() == nil && errors.Cause(err) == context.DeadlineExceeded {
		return core.ElementNotFound(sel)
	}
	return err
}

// Navigate loads url and waits until the document body is ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	err := s.run(ctx, s.opts.PageLoadTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil && ctx.Err() == nil && errors.Cause(err) == context.DeadlineExceeded {
		return core.WaitTimeout("page load of %s", url)
	}
	return errors.Annotatef(err, "navigate to %s", url)
}

// Location returns the current URL of the tab.
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	err := s.run(ctx, s.opts.CommandTimeout, chromedp.Location(&loc))
	return loc, errors.Trace(err)
}

// TypeInto replaces the content of sel with text. Hidden inputs such as the
// editor's textarea are accepted.
func (s *Session) TypeInto(ctx context.Context, sel, text string) error {
	return s.locate(ctx, sel,
		chromedp.WaitReady(sel, chromedp.ByQuery),
		chromedp.Focus(sel, chromedp.ByQuery),
		chromedp.KeyEvent("a", chromedp.KeyModifiers(input.ModifierCtrl)),
		chromedp.KeyEvent(kb.Backspace),
		chromedp.KeyEvent(text),
	)
}

// Focus focuses the first element matching sel.
func (s *Session) Focus(ctx context.Context, sel string) error {
	return s.locate(ctx, sel, chromedp.Focus(sel, chromedp.ByQuery))
}

// Blur removes focus from the first element matching sel.
func (s *Session) Blur(ctx context.Context, sel string) error {
	return s.locate(ctx, sel, chromedp.Blur(sel, chromedp.ByQuery))
}

// Press focuses sel and sends a key chord such as "ctrl+r".
func (s *Session) Press(ctx context.Context, sel, chord string) error {
	key, mods, err := parseChord(chord)
	if err != nil {
		return errors.Trace(err)
	}
	return s.locate(ctx, sel,
		chromedp.Focus(sel, chromedp.ByQuery),
		chromedp.KeyEvent(key, chromedp.KeyModifiers(mods...)),
	)
}

// ClickNth clicks the n-th (0-based) element matching the CSS selector.
func (s *Session) ClickNth(ctx context.Context, sel string, n int) error {
	return s.click(ctx, sel, n, chromedp.ByQueryAll)
}

// ClickXPath clicks the first element matching the XPath expression.
func (s *Session) ClickXPath(ctx context.Context, xpath string) error {
	return s.click(ctx, xpath, 0, chromedp.BySearch)
}

func (s *Session) click(ctx context.Context, sel string, n int, by chromedp.QueryOption) error {
	var nodes []*cdp.Node
	return s.locate(ctx, sel,
		chromedp.Nodes(sel, &nodes, by, chromedp.AtLeast(n+1)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return dom.ScrollIntoViewIfNeeded().WithNodeID(nodes[n].NodeID).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return chromedp.MouseClickNode(nodes[n]).Do(ctx)
		}),
	)
}

// OuterHTML returns the outer HTML of the first element matching sel.
func (s *Session) OuterHTML(ctx context.Context, sel string) (string, error) {
	var html string
	err := s.locate(ctx, sel,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.OuterHTML(sel, &html, chromedp.ByQuery),
	)
	return html, err
}

// Screenshot captures the viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, s.opts.CommandTimeout, chromedp.CaptureScreenshot(&buf))
	return buf, errors.Trace(err)
}

// HTML returns the current page HTML.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, s.opts.CommandTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, errors.Trace(err)
}
