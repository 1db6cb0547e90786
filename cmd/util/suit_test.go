package util

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingcap/tipocket-sqllab/pkg/cluster"
	"github.com/pingcap/tipocket-sqllab/pkg/control"
	"github.com/pingcap/tipocket-sqllab/pkg/core"
)

type fakeProvider struct {
	nodes    []cluster.Node
	err      error
	tornDown bool
}

func (p *fakeProvider) SetUp(context.Context) ([]cluster.Node, error) {
	return p.nodes, p.err
}

func (p *fakeProvider) TearDown(context.Context) error {
	p.tornDown = true
	return nil
}

func TestSuitRun(t *testing.T) {
	p := &fakeProvider{nodes: []cluster.Node{{Name: "a", BaseURL: "http://a:8088"}}}
	suit := Suit{
		Config:        &control.Config{},
		Provider:      p,
		ClientCreator: core.NoopClientCreator{},
	}
	report, err := suit.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, p.nodes, suit.Config.Nodes)
	assert.NotEmpty(t, report.RunID)
	assert.True(t, p.tornDown)
}

func TestSuitProviderFails(t *testing.T) {
	p := &fakeProvider{err: errors.New("no base url configured")}
	suit := Suit{
		Config:        &control.Config{},
		Provider:      p,
		ClientCreator: core.NoopClientCreator{},
	}
	_, err := suit.Run(context.Background())
	assert.Error(t, err)
	assert.False(t, p.tornDown)
}
