package scenario

import (
	"context"
	"regexp"
	"time"

	"github.com/juju/errors"

	"github.com/pingcap/tipocket-sqllab/pkg/check"
	"github.com/pingcap/tipocket-sqllab/pkg/cluster"
	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/netwatch"
	"github.com/pingcap/tipocket-sqllab/pkg/resulttable"
)

// Browser is what steps need from a browser tab.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	TypeInto(ctx context.Context, sel, text string) error
	Focus(ctx context.Context, sel string) error
	Blur(ctx context.Context, sel string) error
	Press(ctx context.Context, sel, chord string) error
	ClickNth(ctx context.Context, sel string, n int) error
	ClickXPath(ctx context.Context, xpath string) error
	OuterHTML(ctx context.Context, sel string) (string, error)
}

// Waiter awaits named network exchanges.
type Waiter interface {
	Wait(ctx context.Context, aliases ...string) ([]netwatch.Exchange, error)
	// Arm makes later waits ignore exchanges seen before the call.
	Arm(aliases ...string) error
}

// Querier runs SQL directly against the example database.
type Querier interface {
	Query(ctx context.Context, sql string) (*resulttable.Table, error)
}

var varPattern = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}`)

// Env is the state steps of one scenario run share.
type Env struct {
	Node    cluster.Node
	Browser Browser
	Waiter  Waiter
	Checker core.Checker
	// Oracle is optional.
	Oracle Querier

	// Selectors and Paths map names to CSS selectors and application paths.
	// Names missing from the maps are used literally.
	Selectors map[string]string
	Paths     map[string]string

	WaitTimeout     time.Duration
	MaxRenderedRows int

	snapshots map[string]*resulttable.Table
	vars      map[string]string
}

// NewEnv creates an env with the default table checker and limits.
func NewEnv(node cluster.Node, b Browser, w Waiter) *Env {
	return &Env{
		Node:            node,
		Browser:         b,
		Waiter:          w,
		Checker:         check.TableChecker(),
		Selectors:       map[string]string{},
		Paths:           map[string]string{},
		WaitTimeout:     30 * time.Second,
		MaxRenderedRows: 10,
		snapshots:       map[string]*resulttable.Table{},
		vars:            map[string]string{},
	}
}

// Selector resolves a selector name.
func (e *Env) Selector(name string) string {
	if sel, ok := e.Selectors[name]; ok {
		return sel
	}
	return name
}

// URL resolves a path name to an absolute URL on the node.
func (e *Env) URL(name string) string {
	if p, ok := e.Paths[name]; ok {
		return e.Node.URL(p)
	}
	return e.Node.URL(e.Expand(name))
}

// Expand replaces ${var} with scenario variables. Unknown variables are
// left as is.
func (e *Env) Expand(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := e.vars[m[2:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// SetVar sets a scenario variable.
func (e *Env) SetVar(key, value string) {
	e.vars[key] = value
}

// Var returns a scenario variable.
func (e *Env) Var(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Snapshot returns a captured table.
func (e *Env) Snapshot(name string) (*resulttable.Table, error) {
	t, ok := e.snapshots[name]
	if !ok {
		return nil, errors.NotFoundf("snapshot %s", name)
	}
	return t, nil
}

func (e *Env) setSnapshot(name string, t *resulttable.Table) {
	e.snapshots[name] = t
}
