package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/resulttable"
	"github.com/pingcap/tipocket-sqllab/pkg/sqlshape"
	"github.com/pingcap/tipocket-sqllab/util"
)

type stepFunc struct {
	name string
	run  func(ctx context.Context, env *Env) error
}

func (s stepFunc) Name() string { return s.name }

func (s stepFunc) Run(ctx context.Context, env *Env) error { return s.run(ctx, env) }

// Visit navigates to a named path or an absolute application path.
func Visit(path string) Step {
	return stepFunc{
		name: "visit " + path,
		run: func(ctx context.Context, env *Env) error {
			return env.Browser.Navigate(ctx, env.URL(path))
		},
	}
}

// TypeInto replaces the content of the element with text. Hidden inputs are
// accepted, like the editor's textarea.
func TypeInto(sel, text string) Step {
	return stepFunc{
		name: "type into " + sel,
		run: func(ctx context.Context, env *Env) error {
			return env.Browser.TypeInto(ctx, env.Selector(sel), env.Expand(text))
		},
	}
}

// Focus focuses the element.
func Focus(sel string) Step {
	return stepFunc{
		name: "focus " + sel,
		run: func(ctx context.Context, env *Env) error {
			return env.Browser.Focus(ctx, env.Selector(sel))
		},
	}
}

// Blur removes focus from the element. The editor only commits its text to
// the query on blur.
func Blur(sel string) Step {
	return stepFunc{
		name: "blur " + sel,
		run: func(ctx context.Context, env *Env) error {
			return env.Browser.Blur(ctx, env.Selector(sel))
		},
	}
}

// Press sends a key chord such as "ctrl+r" to the element.
func Press(sel, chord string) Step {
	return stepFunc{
		name: fmt.Sprintf("press %s on %s", chord, sel),
		run: func(ctx context.Context, env *Env) error {
			return env.Browser.Press(ctx, env.Selector(sel), chord)
		},
	}
}

// ClickNth clicks the n-th (0-based) element matching sel.
func ClickNth(sel string, n int) Step {
	return stepFunc{
		name: fmt.Sprintf("click %s[%d]", sel, n),
		run: func(ctx context.Context, env *Env) error {
			return env.Browser.ClickNth(ctx, env.Selector(sel), n)
		},
	}
}

// ClickRowLink clicks the link whose href contains hrefContains inside the
// table row having a cell with exactly rowText.
func ClickRowLink(rowText, hrefContains string) Step {
	return stepFunc{
		name: fmt.Sprintf("click %s link of row %s", hrefContains, rowText),
		run: func(ctx context.Context, env *Env) error {
			return env.Browser.ClickXPath(ctx, rowLinkXPath(env.Expand(rowText), hrefContains))
		},
	}
}

func rowLinkXPath(rowText, hrefContains string) string {
	return fmt.Sprintf(`//tr[td[normalize-space(.)=%s]]//a[contains(@href, %s)]`,
		xpathLiteral(rowText), xpathLiteral(hrefContains))
}

// xpathLiteral quotes s as an XPath 1.0 string literal.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if p != "" {
			quoted = append(quoted, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// Wait waits for the next unconsumed exchange of every alias, in order.
func Wait(aliases ...string) Step {
	return stepFunc{
		name: "wait @" + strings.Join(aliases, " @"),
		run: func(ctx context.Context, env *Env) error {
			wctx, cancel := context.WithTimeout(ctx, env.WaitTimeout)
			defer cancel()
			got, err := env.Waiter.Wait(wctx, aliases...)
			if err != nil {
				if ctx.Err() == nil && errors.Cause(err) == context.DeadlineExceeded {
					return core.WaitTimeout("%v after %s", err, env.WaitTimeout)
				}
				return errors.Trace(err)
			}
			for _, x := range got {
				if x.Failed {
					return core.AssertionFailed("", "@%s %s %s failed: %s", x.Alias, x.Method, x.URL, x.ErrorText)
				}
				zap.L().Debug("waited", zap.String("alias", x.Alias), zap.Int64("status", x.Status))
			}
			return nil
		},
	}
}

// Arm drops the exchanges of aliases observed so far, so a later Wait only
// sees requests the following steps trigger. No aliases arms every route.
func Arm(aliases ...string) Step {
	name := "arm all routes"
	if len(aliases) > 0 {
		name = "arm @" + strings.Join(aliases, " @")
	}
	return stepFunc{
		name: name,
		run: func(_ context.Context, env *Env) error {
			return errors.Trace(env.Waiter.Arm(aliases...))
		},
	}
}

// Capture parses the result grid matching sel into snapshot name.
func Capture(name, sel string) Step {
	return stepFunc{
		name: fmt.Sprintf("capture %s from %s", name, sel),
		run: func(ctx context.Context, env *Env) error {
			html, err := env.Browser.OuterHTML(ctx, env.Selector(sel))
			if err != nil {
				return errors.Trace(err)
			}
			t, err := resulttable.ParseString(html)
			if err != nil {
				return core.AssertionFailed("", "%s is not a result grid: %v", sel, err)
			}
			env.setSnapshot(name, t)
			return nil
		},
	}
}

// ExpectShape asserts the exact header cell count and body row count of a
// snapshot.
func ExpectShape(name string, cols, rows int) Step {
	return stepFunc{
		name: fmt.Sprintf("expect %s has %d columns and %d rows", name, cols, rows),
		run: func(_ context.Context, env *Env) error {
			return expectShape(env, name, cols, rows)
		},
	}
}

// ExpectShapeOf asserts the shape query text fixes for a snapshot.
func ExpectShapeOf(name, query string) Step {
	return stepFunc{
		name: fmt.Sprintf("expect %s has the shape of its query", name),
		run: func(_ context.Context, env *Env) error {
			cols, rows, err := sqlshape.Expect(env.Expand(query))
			if err != nil {
				return errors.Trace(err)
			}
			return expectShape(env, name, cols, rows)
		},
	}
}

func expectShape(env *Env, name string, cols, rows int) error {
	if rows > env.MaxRenderedRows {
		return errors.NotValidf("expecting %d rows, the grid renders at most %d", rows, env.MaxRenderedRows)
	}
	t, err := env.Snapshot(name)
	if err != nil {
		return errors.Trace(err)
	}
	if t.ColumnCount() != cols {
		return core.AssertionFailed(t.String(), "%s: expected %d header cells, got %d", name, cols, t.ColumnCount())
	}
	if t.RowCount() != rows {
		return core.AssertionFailed(t.String(), "%s: expected %d body rows, got %d", name, rows, t.RowCount())
	}
	return nil
}

// ExpectEqual asserts two snapshots are equal with the env's checker.
func ExpectEqual(a, b string) Step {
	return stepFunc{
		name: fmt.Sprintf("expect %s equals %s", a, b),
		run: func(_ context.Context, env *Env) error {
			expected, err := env.Snapshot(a)
			if err != nil {
				return errors.Trace(err)
			}
			actual, err := env.Snapshot(b)
			if err != nil {
				return errors.Trace(err)
			}
			return env.Checker.Check(expected, actual)
		},
	}
}

// ExpectOracle runs query against the example database and asserts the
// snapshot has the same header names and row count. Without an oracle the
// step passes.
func ExpectOracle(name, query string) Step {
	return stepFunc{
		name: fmt.Sprintf("expect %s matches the oracle", name),
		run: func(ctx context.Context, env *Env) error {
			if env.Oracle == nil {
				zap.L().Debug("no oracle configured, skip check", zap.String("snapshot", name))
				return nil
			}
			got, err := env.Snapshot(name)
			if err != nil {
				return errors.Trace(err)
			}
			want, err := env.Oracle.Query(ctx, env.Expand(query))
			if err != nil {
				return errors.Trace(err)
			}
			if m := resulttable.CompareShape(want, got); m != nil {
				return core.AssertionFailed(m.Diff, "%s against oracle: %s", name, m)
			}
			for i, h := range want.Header {
				if !strings.EqualFold(h, got.Header[i]) {
					return core.AssertionFailed("", "%s against oracle: header %d is %q, oracle says %q", name, i, got.Header[i], h)
				}
			}
			return nil
		},
	}
}

// GenerateTitle stores a unique "<prefix> <id>" title in variable key.
func GenerateTitle(key, prefix string) Step {
	return stepFunc{
		name: "generate title " + key,
		run: func(_ context.Context, env *Env) error {
			env.SetVar(key, util.NewTitle(prefix))
			return nil
		},
	}
}
