package cluster

import (
	"context"
	"fmt"
	"strings"
)

// Node is an endpoint of the application under test, e.g. one Superset
// web server.
type Node struct {
	Name    string
	BaseURL string
}

// URL joins the node base URL and an absolute application path.
func (node Node) URL(path string) string {
	base := strings.TrimRight(node.BaseURL, "/")
	if path == "" {
		return base + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// String ...
func (node Node) String() string {
	return fmt.Sprintf("node[name=%s,url=%s]", node.Name, node.BaseURL)
}

// Provider provides the nodes a run is pointed at.
type Provider interface {
	// SetUp returns the nodes to test.
	SetUp(ctx context.Context) ([]Node, error)
	// TearDown releases the nodes.
	TearDown(ctx context.Context) error
}
