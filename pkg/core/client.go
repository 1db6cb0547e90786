package core

import (
	"context"

	"github.com/pingcap/tipocket-sqllab/pkg/cluster"
)

// Client drives one case against the application under test.
// The controller creates a fresh client for every case, so a client never
// shares browser state with another case.
type Client interface {
	// SetUp prepares a logged in session on node.
	SetUp(ctx context.Context, node cluster.Node) error
	// Start runs the case. It returns a Failure (possibly wrapped) when the
	// case does not hold.
	Start(ctx context.Context, node cluster.Node) error
	// TearDown releases everything SetUp acquired. It is called even if
	// SetUp or Start failed.
	TearDown(ctx context.Context, node cluster.Node) error
}

// ClientCreator creates a client for a case.
type ClientCreator interface {
	// Create creates the client.
	Create(c Case) Client
}

// NoopClientCreator creates a noop client.
type NoopClientCreator struct {
}

// Create creates the client.
func (NoopClientCreator) Create(c Case) Client {
	return noopClient{}
}

// noopClient is a noop client
type noopClient struct {
}

// SetUp sets up the client.
func (noopClient) SetUp(ctx context.Context, node cluster.Node) error {
	return nil
}

// Start runs nothing.
func (noopClient) Start(ctx context.Context, node cluster.Node) error {
	return nil
}

// TearDown tears down the client.
func (noopClient) TearDown(ctx context.Context, node cluster.Node) error {
	return nil
}
