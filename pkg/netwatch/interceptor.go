package netwatch

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/juju/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Exchange is one observed HTTP exchange.
type Exchange struct {
	Alias     string
	RequestID string
	Method    string
	URL       string
	Status    int64
	// Failed is set when the request never got a complete response.
	Failed    bool
	ErrorText string
}

// Interceptor collects exchanges of the routes it was created with and lets
// callers wait for them by alias. The n-th wait on an alias yields the n-th
// matching exchange, whether or not it already completed.
type Interceptor struct {
	routes []*matcher

	mu       sync.Mutex
	pending  map[network.RequestID]*Exchange
	done     map[string][]*Exchange
	consumed map[string]int
	notify   chan struct{}

	observed atomic.Int64
}

// New creates an interceptor. Routes are tried in order, the first match wins.
func New(routes ...Route) (*Interceptor, error) {
	i := &Interceptor{
		pending:  make(map[network.RequestID]*Exchange),
		done:     make(map[string][]*Exchange),
		consumed: make(map[string]int),
		notify:   make(chan struct{}),
	}
	seen := make(map[string]struct{})
	for _, r := range routes {
		if _, ok := seen[r.Alias]; ok {
			return nil, errors.AlreadyExistsf("route %s", r.Alias)
		}
		seen[r.Alias] = struct{}{}
		m, err := compile(r)
		if err != nil {
			return nil, errors.Trace(err)
		}
		i.routes = append(i.routes, m)
	}
	return i, nil
}

// Handle consumes a DevTools event. It is meant to be passed to
// chromedp.ListenTarget and ignores unrelated events.
func (i *Interceptor) Handle(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if e.Request == nil {
			return
		}
		alias := i.route(e.Request.Method, e.Request.URL)
		if alias == "" {
			return
		}
		i.mu.Lock()
		// a redirect reuses the request id, the latest request wins
		i.pending[e.RequestID] = &Exchange{
			Alias:     alias,
			RequestID: string(e.RequestID),
			Method:    e.Request.Method,
			URL:       e.Request.URL,
		}
		i.mu.Unlock()
		zap.L().Debug("request matched", zap.String("alias", alias), zap.String("url", e.Request.URL))
	case *network.EventResponseReceived:
		if e.Response == nil {
			return
		}
		i.mu.Lock()
		if x, ok := i.pending[e.RequestID]; ok {
			x.Status = e.Response.Status
		}
		i.mu.Unlock()
	case *network.EventLoadingFinished:
		i.finish(e.RequestID, "")
	case *network.EventLoadingFailed:
		text := e.ErrorText
		if text == "" {
			text = "loading failed"
		}
		i.finish(e.RequestID, text)
	}
}

func (i *Interceptor) route(method, url string) string {
	for _, m := range i.routes {
		if m.match(method, url) {
			return m.Alias
		}
	}
	return ""
}

func (i *Interceptor) finish(id network.RequestID, errText string) {
	i.mu.Lock()
	x, ok := i.pending[id]
	if !ok {
		i.mu.Unlock()
		return
	}
	delete(i.pending, id)
	if errText != "" {
		x.Failed = true
		x.ErrorText = errText
	}
	i.done[x.Alias] = append(i.done[x.Alias], x)
	close(i.notify)
	i.notify = make(chan struct{})
	i.mu.Unlock()

	i.observed.Inc()
	zap.L().Debug("exchange completed", zap.String("alias", x.Alias), zap.Int64("status", x.Status), zap.Bool("failed", x.Failed))
}

// Observed returns how many matching exchanges have completed.
func (i *Interceptor) Observed() int64 {
	return i.observed.Load()
}

// Wait waits for the next unconsumed exchange of each alias, in order.
// It returns the exchanges consumed so far along with any error. An expired
// ctx makes the error's cause ctx.Err().
func (i *Interceptor) Wait(ctx context.Context, aliases ...string) ([]Exchange, error) {
	for _, alias := range aliases {
		if !i.known(alias) {
			return nil, errors.NotFoundf("route alias %s", alias)
		}
	}
	got := make([]Exchange, 0, len(aliases))
	for _, alias := range aliases {
		x, err := i.next(ctx, alias)
		if err != nil {
			return got, err
		}
		got = append(got, x)
	}
	return got, nil
}

// Arm discards every exchange of aliases seen so far, including requests
// still in flight, so the next Wait only yields exchanges started after Arm.
// No aliases arms every route.
func (i *Interceptor) Arm(aliases ...string) error {
	if len(aliases) == 0 {
		for _, m := range i.routes {
			aliases = append(aliases, m.Alias)
		}
	}
	for _, alias := range aliases {
		if !i.known(alias) {
			return errors.NotFoundf("route alias %s", alias)
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	armed := make(map[string]struct{}, len(aliases))
	for _, alias := range aliases {
		armed[alias] = struct{}{}
		i.consumed[alias] = len(i.done[alias])
	}
	for id, x := range i.pending {
		if _, ok := armed[x.Alias]; ok {
			delete(i.pending, id)
		}
	}
	return nil
}

func (i *Interceptor) known(alias string) bool {
	for _, m := range i.routes {
		if m.Alias == alias {
			return true
		}
	}
	return false
}

func (i *Interceptor) next(ctx context.Context, alias string) (Exchange, error) {
	for {
		i.mu.Lock()
		n := i.consumed[alias]
		if n < len(i.done[alias]) {
			i.consumed[alias] = n + 1
			x := *i.done[alias][n]
			i.mu.Unlock()
			return x, nil
		}
		notify := i.notify
		i.mu.Unlock()

		select {
		case <-ctx.Done():
			return Exchange{}, errors.Annotatef(ctx.Err(), "wait for @%s (%d seen)", alias, n)
		case <-notify:
		}
	}
}
