package cluster

import (
	"context"
	"net/url"

	"github.com/juju/errors"
)

// NewLocalProvider reuses applications that are already running.
func NewLocalProvider(urls ...string) Provider {
	return &LocalProvider{URLs: urls}
}

// LocalProvider turns configured base URLs into nodes.
type LocalProvider struct {
	URLs []string
}

// SetUp parses every base URL.
func (l *LocalProvider) SetUp(_ context.Context) ([]Node, error) {
	if len(l.URLs) == 0 {
		return nil, errors.New("no base url configured")
	}
	nodes := make([]Node, 0, len(l.URLs))
	for _, raw := range l.URLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, errors.Annotatef(err, "parse base url %s", raw)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, errors.Errorf("base url %s: expect http or https scheme", raw)
		}
		if u.Host == "" {
			return nil, errors.Errorf("base url %s: missing host", raw)
		}
		nodes = append(nodes, Node{Name: u.Host, BaseURL: raw})
	}
	return nodes, nil
}

// TearDown does nothing here
func (l *LocalProvider) TearDown(_ context.Context) error {
	return nil
}
