package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingcap/tipocket-sqllab/pkg/artifacts"
	"github.com/pingcap/tipocket-sqllab/pkg/browser"
	"github.com/pingcap/tipocket-sqllab/pkg/cluster"
	"github.com/pingcap/tipocket-sqllab/pkg/config"
	"github.com/pingcap/tipocket-sqllab/pkg/core"
)

var testNode = cluster.Node{Name: "superset", BaseURL: "http://superset:8088"}

func newCreator(t *testing.T, f *fakeSession) (ClientCreator, string) {
	dir := t.TempDir()
	cfg := config.Init()
	cfg.Timeouts.Wait.Duration = 50 * time.Millisecond
	return ClientCreator{
		Config: cfg,
		Store:  artifacts.LocalStore{Dir: dir},
		RunID:  "run-1",
		Launch: func(context.Context, browser.Options) (Session, error) {
			return f, nil
		},
	}, dir
}

func runQueryScenario() *Scenario {
	return New("run-query",
		TypeInto(config.SelectorEditor, "SELECT ds, gender, name, num FROM main.birth_names LIMIT 3"),
		ClickNth(config.SelectorToolbarButton, 0),
		Wait("sqlLabQuery"),
		Capture("results", config.SelectorResults),
		ExpectShape("results", 4, 3),
	)
}

func TestClientLifecycle(t *testing.T) {
	f := &fakeSession{results: birthNames()}
	creator, dir := newCreator(t, f)
	c := creator.Create(runQueryScenario())
	ctx := context.Background()

	require.NoError(t, c.SetUp(ctx, testNode))
	require.NoError(t, c.Start(ctx, testNode))
	require.NoError(t, c.TearDown(ctx, testNode))

	calls := f.Calls()
	assert.Equal(t, "login http://superset:8088/login/ admin", calls[0])
	assert.Equal(t, "navigate http://superset:8088/superset/sqllab", calls[1])
	assert.Equal(t, "html .SouthPane .ReactVirtualized__Table", calls[len(calls)-1])
	assert.True(t, f.closed)
	// nothing is stored for a passing scenario
	assert.NoDirExists(t, filepath.Join(dir, "run-1"))
}

func TestClientStoresArtifactsOnFailure(t *testing.T) {
	f := &fakeSession{results: birthNames(), silent: true}
	creator, dir := newCreator(t, f)
	c := creator.Create(runQueryScenario())
	ctx := context.Background()

	require.NoError(t, c.SetUp(ctx, testNode))
	err := c.Start(ctx, testNode)
	assert.Equal(t, core.KindWaitTimeout, core.KindOf(err))
	require.NoError(t, c.TearDown(ctx, testNode))

	shot, err := os.ReadFile(filepath.Join(dir, "run-1", "run-query", "screenshot.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(shot))
	assert.FileExists(t, filepath.Join(dir, "run-1", "run-query", "page.html"))
	assert.True(t, f.closed)
}

func TestClientSetUpFailures(t *testing.T) {
	f := &fakeSession{fail: "login"}
	creator, _ := newCreator(t, f)
	c := creator.Create(runQueryScenario())
	err := c.SetUp(context.Background(), testNode)
	assert.Equal(t, core.KindElementNotFound, core.KindOf(err))
	assert.Contains(t, err.Error(), "login")
	require.NoError(t, c.TearDown(context.Background(), testNode))
	assert.True(t, f.closed)

	creator.Launch = func(context.Context, browser.Options) (Session, error) {
		return nil, errors.New("chrome not found")
	}
	c = creator.Create(runQueryScenario())
	err = c.SetUp(context.Background(), testNode)
	assert.Equal(t, core.KindSetup, core.KindOf(err))
	assert.Contains(t, err.Error(), "chrome not found")
	assert.NoError(t, c.TearDown(context.Background(), testNode))
}

type notAScenario struct{}

func (notAScenario) Name() string       { return "other" }
func (notAScenario) SkipReason() string { return "" }

func TestClientRejectsForeignCase(t *testing.T) {
	creator, _ := newCreator(t, &fakeSession{})
	err := creator.Create(notAScenario{}).SetUp(context.Background(), testNode)
	assert.Equal(t, core.KindSetup, core.KindOf(err))
}
