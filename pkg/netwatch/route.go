package netwatch

import (
	"net/url"
	"strings"

	"github.com/gobwas/glob"
	"github.com/juju/errors"
)

// Route names the exchanges a scenario can wait for.
type Route struct {
	Alias string `toml:"alias" yaml:"alias"`
	// Method is matched case-insensitively, empty matches any method.
	Method string `toml:"method" yaml:"method"`
	// Pattern is a glob over the URL path where "**" crosses "/".
	// Patterns without a leading "/" match at any depth.
	Pattern string `toml:"pattern" yaml:"pattern"`
}

type matcher struct {
	Route
	g glob.Glob
}

func compile(r Route) (*matcher, error) {
	if r.Alias == "" {
		return nil, errors.NotValidf("route with empty alias")
	}
	pattern := r.Pattern
	if !strings.HasPrefix(pattern, "/") {
		pattern = "**/" + pattern
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, errors.Annotatef(err, "route %s", r.Alias)
	}
	return &matcher{Route: r, g: g}, nil
}

func (m *matcher) match(method, rawURL string) bool {
	if m.Method != "" && !strings.EqualFold(m.Method, method) {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	return m.g.Match(p)
}
