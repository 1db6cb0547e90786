package scenario

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/errors"
	"github.com/ngaut/log"

	"github.com/pingcap/tipocket-sqllab/pkg/artifacts"
	"github.com/pingcap/tipocket-sqllab/pkg/browser"
	"github.com/pingcap/tipocket-sqllab/pkg/cluster"
	"github.com/pingcap/tipocket-sqllab/pkg/config"
	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/netwatch"
)

// Session is a browser tab a client owns for one scenario.
type Session interface {
	Browser
	Listen(fn func(ev interface{}))
	Login(ctx context.Context, form browser.LoginForm) error
	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
	Close()
}

// LaunchFunc starts a browser session.
type LaunchFunc func(ctx context.Context, opts browser.Options) (Session, error)

func launchChrome(ctx context.Context, opts browser.Options) (Session, error) {
	s, err := browser.NewSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ClientCreator creates scenario clients.
type ClientCreator struct {
	Config *config.Config
	Runner *Runner
	// Store receives failure artifacts, nil disables them.
	Store artifacts.Store
	// Oracle is optional.
	Oracle Querier
	// RunID prefixes artifact names.
	RunID string
	// Launch defaults to starting Chrome.
	Launch LaunchFunc
}

// Create creates a client for a *Scenario case.
func (c ClientCreator) Create(cs core.Case) core.Client {
	s, _ := cs.(*Scenario)
	launch := c.Launch
	if launch == nil {
		launch = launchChrome
	}
	runner := c.Runner
	if runner == nil {
		runner = &Runner{}
	}
	return &Client{
		cfg:      c.Config,
		runner:   runner,
		store:    c.Store,
		oracle:   c.Oracle,
		runID:    c.RunID,
		launch:   launch,
		name:     cs.Name(),
		scenario: s,
	}
}

// Client runs one scenario in its own browser.
type Client struct {
	cfg    *config.Config
	runner *Runner
	store  artifacts.Store
	oracle Querier
	runID  string
	launch LaunchFunc

	name     string
	scenario *Scenario

	session Session
	env     *Env
	failed  bool
}

// SetUp starts the browser, logs in and opens the editor.
func (c *Client) SetUp(ctx context.Context, node cluster.Node) (err error) {
	defer func() {
		if err != nil {
			c.failed = true
		}
	}()
	if c.scenario == nil {
		return core.SetupFailed(errors.Errorf("%s is not a scenario", c.name), "set up")
	}

	interceptor, err := netwatch.New(MergeRoutes(c.cfg.Routes, c.scenario.Routes())...)
	if err != nil {
		return core.SetupFailed(err, "routes of %s", c.name)
	}

	c.session, err = c.launch(ctx, browser.Options{
		Headless:        c.cfg.Browser.Headless,
		ExecPath:        c.cfg.Browser.ExecPath,
		WindowWidth:     c.cfg.Browser.WindowWidth,
		WindowHeight:    c.cfg.Browser.WindowHeight,
		CommandTimeout:  c.cfg.Timeouts.Command.Duration,
		PageLoadTimeout: c.cfg.Timeouts.PageLoad.Duration,
	})
	if err != nil {
		return core.SetupFailed(err, "start browser")
	}
	c.session.Listen(interceptor.Handle)

	err = c.session.Login(ctx, browser.LoginForm{
		URL:              node.URL(c.cfg.Paths[config.PathLogin]),
		UsernameSelector: c.cfg.Selector(config.SelectorLoginUsername),
		PasswordSelector: c.cfg.Selector(config.SelectorLoginPassword),
		SubmitSelector:   c.cfg.Selector(config.SelectorLoginSubmit),
		Username:         c.cfg.Target.Username,
		Password:         c.cfg.Target.Password,
	})
	if err != nil {
		return core.SetupFailed(err, "login")
	}

	env := NewEnv(node, c.session, interceptor)
	env.Selectors = c.cfg.Selectors
	env.Paths = c.cfg.Paths
	env.WaitTimeout = c.cfg.Timeouts.Wait.Duration
	env.MaxRenderedRows = c.cfg.MaxRenderedRows
	env.Oracle = c.oracle
	c.env = env

	if err := c.session.Navigate(ctx, env.URL(config.PathSQLLab)); err != nil {
		return core.SetupFailed(err, "open editor")
	}
	// requests of the login and the first editor load never satisfy a wait
	if err := interceptor.Arm(); err != nil {
		return core.SetupFailed(err, "arm routes")
	}
	return nil
}

// Start runs the scenario's steps.
func (c *Client) Start(ctx context.Context, node cluster.Node) error {
	log.Infof("[%s] start on %s", c.name, node)
	err := c.runner.Run(ctx, c.scenario, c.env)
	if err != nil {
		c.failed = true
	}
	return err
}

// TearDown stores failure artifacts and closes the browser.
func (c *Client) TearDown(ctx context.Context, node cluster.Node) error {
	if c.session == nil {
		return nil
	}
	defer c.session.Close()

	if !c.failed || c.store == nil {
		return nil
	}
	var result *multierror.Error
	if shot, err := c.session.Screenshot(ctx); err != nil {
		result = multierror.Append(result, errors.Annotate(err, "screenshot"))
	} else if err := c.put(ctx, "screenshot.png", shot, "image/png"); err != nil {
		result = multierror.Append(result, err)
	}
	if html, err := c.session.HTML(ctx); err != nil {
		result = multierror.Append(result, errors.Annotate(err, "page html"))
	} else if err := c.put(ctx, "page.html", []byte(html), "text/html"); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (c *Client) put(ctx context.Context, file string, data []byte, contentType string) error {
	name := fmt.Sprintf("%s/%s", c.name, file)
	if c.runID != "" {
		name = c.runID + "/" + name
	}
	loc, err := c.store.Put(ctx, name, data, contentType)
	if err != nil {
		return errors.Annotatef(err, "store %s", name)
	}
	log.Infof("[%s] saved %s to %s", c.name, file, loc)
	return nil
}
