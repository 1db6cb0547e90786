package cluster

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/jpillora/backoff"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WaitReady polls path on every node until each answers with a 2xx status.
// It gives up once timeout has elapsed.
func WaitReady(ctx context.Context, client *http.Client, nodes []Node, path string, timeout time.Duration) error {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var g errgroup.Group
	for _, node := range nodes {
		node := node
		g.Go(func() error {
			return probe(ctx, client, node.URL(path))
		})
	}
	return g.Wait()
}

func probe(ctx context.Context, client *http.Client, url string) error {
	b := &backoff.Backoff{
		Min:    200 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: true,
	}
	for {
		err := get(ctx, client, url)
		if err == nil {
			zap.L().Info("target ready", zap.String("url", url), zap.Float64("attempts", b.Attempt()+1))
			return nil
		}
		wait := b.Duration()
		zap.L().Debug("target not ready", zap.String("url", url), zap.Error(err), zap.Duration("retry-in", wait))
		select {
		case <-ctx.Done():
			return errors.Annotatef(err, "%s not ready", url)
		case <-time.After(wait):
		}
	}
}

func get(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Trace(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Trace(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
