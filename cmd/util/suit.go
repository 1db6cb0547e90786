package util

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/errors"
	"github.com/ngaut/log"

	"github.com/pingcap/tipocket-sqllab/pkg/cluster"
	"github.com/pingcap/tipocket-sqllab/pkg/control"
	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/metrics"
)

// Suit is a basic scenario suit with the configurations to run it.
type Suit struct {
	*control.Config
	// Provider gives the nodes under test
	cluster.Provider
	// ClientCreator creates client
	core.ClientCreator
	// Metrics is optional
	Metrics *metrics.Recorder
}

// Run runs the suit. A signal cancels the running case; the report still
// covers the cases that finished.
func (suit *Suit) Run(ctx context.Context) (*control.Report, error) {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	nodes, err := suit.Provider.SetUp(sctx)
	if err != nil {
		return nil, errors.Annotate(err, "set up nodes")
	}
	log.Infof("nodes ready: %v", nodes)
	defer func() {
		log.Info("tear down nodes...")
		if err := suit.Provider.TearDown(context.Background()); err != nil {
			log.Errorf("provider tear down failed: %+v", err)
		}
	}()
	suit.Config.Nodes = nodes

	c := control.NewController(sctx, suit.Config, suit.ClientCreator, suit.Metrics)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Warnf("got signal %v, stopping", sig)
			c.Close()
			cancel()
		case <-sctx.Done():
		}
	}()

	return c.Run()
}
