// Package artifacts stores failure evidence such as screenshots and page
// HTML.
package artifacts

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/errors"
)

// Store persists one artifact and returns where it went.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// LocalStore writes artifacts below Dir. Names may contain "/".
type LocalStore struct {
	Dir string
}

// Put implements Store.
func (s LocalStore) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	p := filepath.Join(s.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", errors.Trace(err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", errors.Trace(err)
	}
	return p, nil
}

// Multi writes every artifact to all stores. A failing store does not stop
// the others.
type Multi []Store

// Put implements Store. The returned location is the first successful one.
func (m Multi) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	var (
		loc    string
		result *multierror.Error
	)
	for _, s := range m {
		l, err := s.Put(ctx, name, data, contentType)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if loc == "" {
			loc = l
		}
	}
	return loc, result.ErrorOrNil()
}
