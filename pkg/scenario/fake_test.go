package scenario

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"

	"github.com/pingcap/tipocket-sqllab/pkg/browser"
	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/resulttable"
)

// gridHTML renders the markup of a results grid.
func gridHTML(t *resulttable.Table) string {
	var b strings.Builder
	b.WriteString(`<div class="ReactVirtualized__Table"><div class="ReactVirtualized__Table__headerRow">`)
	for _, h := range t.Header {
		fmt.Fprintf(&b, `<div><span>%s</span></div>`, h)
	}
	b.WriteString(`</div><div class="ReactVirtualized__Grid"><div class="ReactVirtualized__Grid__innerScrollContainer">`)
	for _, row := range t.Rows {
		b.WriteString(`<div class="ReactVirtualized__Table__row">`)
		for _, cell := range row {
			fmt.Fprintf(&b, `<div>%s</div>`, cell)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div></div></div>`)
	return b.String()
}

func birthNames() *resulttable.Table {
	return &resulttable.Table{
		Header: []string{"ds", "gender", "name", "num"},
		Rows: [][]string{
			{"1965-01-01 00:00:00", "boy", "Aaron", "369"},
			{"1965-01-01 00:00:00", "girl", "Amy", "494"},
			{"1965-01-01 00:00:00", "boy", "Andrew", "4093"},
		},
	}
}

// fakeSession plays a tiny SqlLab: clicking the run button fires a
// sql_json request and renders results.
type fakeSession struct {
	mu       sync.Mutex
	calls    []string
	listener func(ev interface{})
	results  *resulttable.Table
	rendered bool
	reqs     int
	closed   bool
	// fail makes the named method return an element-not-found failure.
	fail string
	// silent suppresses network events.
	silent bool
}

func (f *fakeSession) record(format string, args ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)
	if f.fail != "" && strings.HasPrefix(call, f.fail) {
		return core.ElementNotFound(call)
	}
	return nil
}

func (f *fakeSession) emit(method, url string) {
	f.mu.Lock()
	f.reqs++
	id := network.RequestID(fmt.Sprint(f.reqs))
	fn := f.listener
	f.mu.Unlock()
	if fn == nil || f.silent {
		return
	}
	fn(&network.EventRequestWillBeSent{RequestID: id, Request: &network.Request{Method: method, URL: url}})
	fn(&network.EventResponseReceived{RequestID: id, Response: &network.Response{Status: 200}})
	fn(&network.EventLoadingFinished{RequestID: id})
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	return f.record("navigate %s", url)
}

func (f *fakeSession) TypeInto(_ context.Context, sel, text string) error {
	return f.record("type %s %s", sel, text)
}

func (f *fakeSession) Focus(_ context.Context, sel string) error {
	return f.record("focus %s", sel)
}

func (f *fakeSession) Blur(_ context.Context, sel string) error {
	return f.record("blur %s", sel)
}

func (f *fakeSession) Press(_ context.Context, sel, chord string) error {
	if err := f.record("press %s %s", sel, chord); err != nil {
		return err
	}
	if chord == "ctrl+r" {
		f.run()
	}
	return nil
}

func (f *fakeSession) ClickNth(_ context.Context, sel string, n int) error {
	if err := f.record("click %s %d", sel, n); err != nil {
		return err
	}
	if strings.Contains(sel, "toolbar") && n == 0 {
		f.run()
	}
	return nil
}

func (f *fakeSession) ClickXPath(_ context.Context, xpath string) error {
	if err := f.record("xpath %s", xpath); err != nil {
		return err
	}
	f.emit("GET", "http://superset/savedqueryviewapi/api/get/1")
	f.emit("GET", "http://superset/superset/tables/1/main/undefined/")
	return nil
}

func (f *fakeSession) run() {
	f.emit("POST", "http://superset/superset/sql_json/")
	f.mu.Lock()
	f.rendered = true
	f.mu.Unlock()
}

func (f *fakeSession) OuterHTML(_ context.Context, sel string) (string, error) {
	if err := f.record("html %s", sel); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.rendered {
		return "", core.ElementNotFound(sel)
	}
	return gridHTML(f.results), nil
}

func (f *fakeSession) Listen(fn func(ev interface{})) {
	f.mu.Lock()
	f.listener = fn
	f.mu.Unlock()
}

func (f *fakeSession) Login(_ context.Context, form browser.LoginForm) error {
	return f.record("login %s %s", form.URL, form.Username)
}

func (f *fakeSession) Screenshot(context.Context) ([]byte, error) {
	return []byte("png"), f.record("screenshot")
}

func (f *fakeSession) HTML(context.Context) (string, error) {
	return "<html></html>", f.record("page html")
}

func (f *fakeSession) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSession) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
