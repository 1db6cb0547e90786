package control

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/ngaut/log"

	"github.com/pingcap/tipocket-sqllab/pkg/cluster"
	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/metrics"
)

// Controller runs the selected cases one after another against every node.
// Each case gets a fresh client.
type Controller struct {
	cfg *Config

	clientCreator core.ClientCreator
	metrics       *metrics.Recorder

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a controller. metrics may be nil.
func NewController(
	ctx context.Context,
	cfg *Config,
	clientCreator core.ClientCreator,
	recorder *metrics.Recorder,
) *Controller {
	cfg.adjust()
	c := new(Controller)
	c.cfg = cfg
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.clientCreator = clientCreator
	c.metrics = recorder
	log.Infof("start controller with %+v", cfg)
	return c
}

// Close closes the controller. A running case is cancelled.
func (c *Controller) Close() {
	c.cancel()
}

// Run runs the cases. The error is only set when the run itself could not
// happen; failing cases are reported in the Report.
func (c *Controller) Run() (*Report, error) {
	cases, err := c.selectCases()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(c.cfg.Nodes) == 0 {
		return nil, errors.NotValidf("no nodes to run against")
	}
	if c.cfg.ReadyPath != "" {
		log.Infof("wait for %d nodes to be ready", len(c.cfg.Nodes))
		if err := cluster.WaitReady(c.ctx, nil, c.cfg.Nodes, c.cfg.ReadyPath, c.cfg.ReadyTimeout); err != nil {
			return nil, core.SetupFailed(err, "readiness")
		}
	}

	report := &Report{RunID: c.cfg.RunID, Start: time.Now()}
	for _, node := range c.cfg.Nodes {
		for _, cs := range cases {
			res := c.runCase(cs, node)
			c.metrics.ObserveScenario(res.Case, string(res.Status))
			report.Results = append(report.Results, res)
		}
	}
	report.End = time.Now()
	if c.metrics != nil {
		summary := c.metrics.Summary()
		report.Steps = &summary
	}

	log.Infof("run %s finished: %d passed, %d failed, %d skipped",
		report.RunID, report.Passed(), report.Failed(), report.Skipped())
	if c.cfg.Report != "" {
		if err := report.WriteFile(c.cfg.Report); err != nil {
			return report, errors.Annotate(err, "write report")
		}
	}
	return report, nil
}

func (c *Controller) selectCases() ([]core.Case, error) {
	if len(c.cfg.Cases) == 0 {
		return core.Cases(), nil
	}
	cases := make([]core.Case, 0, len(c.cfg.Cases))
	for _, name := range c.cfg.Cases {
		cs := core.GetCase(name)
		if cs == nil {
			return nil, errors.NotFoundf("case %s", name)
		}
		cases = append(cases, cs)
	}
	return cases, nil
}

func (c *Controller) runCase(cs core.Case, node cluster.Node) Result {
	res := Result{Case: cs.Name(), Node: node.Name}
	if reason := cs.SkipReason(); reason != "" {
		log.Infof("[%s] skipped: %s", cs.Name(), reason)
		res.Status = StatusSkipped
		res.Error = reason
		return res
	}

	start := time.Now()
	err := c.execute(cs, node)
	res.Duration = time.Since(start)
	if err != nil {
		res.Status = StatusFailed
		res.Kind = core.KindOf(err)
		res.Error = err.Error()
		log.Errorf("[%s] failed on %s after %s: %v", cs.Name(), node, res.Duration, err)
		return res
	}
	res.Status = StatusPassed
	log.Infof("[%s] passed on %s in %s", cs.Name(), node, res.Duration)
	return res
}

func (c *Controller) execute(cs core.Case, node cluster.Node) error {
	if err := c.ctx.Err(); err != nil {
		return core.SetupFailed(err, "run cancelled")
	}
	client := c.clientCreator.Create(cs)

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.CaseTimeout)
	defer cancel()

	err := client.SetUp(ctx, node)
	if err == nil {
		err = client.Start(ctx, node)
	}

	// tear down even when the run is cancelled
	tctx, tcancel := context.WithTimeout(context.Background(), c.cfg.TearDownTimeout)
	defer tcancel()
	if terr := client.TearDown(tctx, node); terr != nil {
		log.Errorf("[%s] tear down on %s failed: %v", cs.Name(), node, terr)
	}
	return err
}
