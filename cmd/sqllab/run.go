package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/ngaut/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/pingcap/tipocket-sqllab/cmd/util"
	"github.com/pingcap/tipocket-sqllab/pkg/artifacts"
	"github.com/pingcap/tipocket-sqllab/pkg/cluster"
	"github.com/pingcap/tipocket-sqllab/pkg/config"
	"github.com/pingcap/tipocket-sqllab/pkg/control"
	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/history"
	"github.com/pingcap/tipocket-sqllab/pkg/logger"
	"github.com/pingcap/tipocket-sqllab/pkg/metrics"
	"github.com/pingcap/tipocket-sqllab/pkg/oracle"
	"github.com/pingcap/tipocket-sqllab/pkg/scenario"
)

type runOptions struct {
	configFile   string
	envFiles     []string
	scenarios    []string
	scenariosDir string
	baseURL      string
	headless     bool
	report       string
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scenarios against a Superset instance",
		Example: "  sqllab run --base-url http://localhost:8088\n" +
			"  sqllab run --config sqllab.toml --scenario save-query",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts.scenarios)
		},
	}
	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "TOML config file")
	cmd.Flags().StringSliceVar(&opts.envFiles, "env-file", nil, ".env files to load, default ./.env when present")
	cmd.Flags().StringArrayVarP(&opts.scenarios, "scenario", "s", nil, "scenario to run, repeatable, default all")
	cmd.Flags().StringVar(&opts.scenariosDir, "scenarios-dir", "", "directory of YAML scenarios")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Superset base url")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "run the browser headless")
	cmd.Flags().StringVar(&opts.report, "report", "", "JSON report path")
	return cmd
}

// loadConfig layers defaults, the config file, the environment and flags.
func loadConfig(cmd *cobra.Command, opts *runOptions) (*config.Config, error) {
	cfg := config.Init()
	if opts.configFile != "" {
		if err := cfg.Load(opts.configFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(opts.envFiles...); err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.Target.BaseURL = opts.baseURL
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = opts.headless
	}
	if flags.Changed("report") {
		cfg.Report = opts.report
	}
	if flags.Changed("scenarios-dir") {
		cfg.ScenariosDir = opts.scenariosDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, names []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := logger.InitGlobalLogger(cfg.Log); err != nil {
		return errors.Trace(err)
	}
	if err := registerScenarioFiles(cfg.ScenariosDir); err != nil {
		return err
	}

	shutdown, err := initTracing(cfg.Tracing)
	if err != nil {
		return err
	}
	defer shutdown()

	var recorder *history.Recorder
	if cfg.History != "" {
		if recorder, err = history.NewRecorder(cfg.History); err != nil {
			return errors.Annotate(err, "open history")
		}
		defer recorder.Close()
	}

	store, err := newStore(cfg.Artifacts)
	if err != nil {
		return err
	}

	creator := scenario.ClientCreator{
		Config: cfg,
		Store:  store,
	}
	if cfg.Oracle.DSN != "" {
		o, err := oracle.Open(ctx, cfg.Oracle.Driver, cfg.Oracle.DSN)
		if err != nil {
			return err
		}
		defer o.Close()
		creator.Oracle = o
	}

	rec := metrics.NewRecorder()
	creator.Runner = &scenario.Runner{History: recorder, Metrics: rec}

	runID := uuid.New().String()
	creator.RunID = runID
	ctlCfg := &control.Config{
		RunID:        runID,
		Cases:        names,
		ReadyPath:    cfg.Target.HealthPath,
		ReadyTimeout: cfg.Timeouts.Readiness.Duration,
		CaseTimeout:  cfg.Timeouts.Scenario.Duration,
		Report:       cfg.Report,
	}
	suit := util.Suit{
		Config:        ctlCfg,
		Provider:      cluster.NewLocalProvider(cfg.Target.BaseURL),
		ClientCreator: creator,
		Metrics:       rec,
	}
	report, err := suit.Run(ctx)

	if cfg.Metrics.PushGateway != "" {
		if perr := rec.Push(cfg.Metrics.PushGateway, cfg.Metrics.Job); perr != nil {
			log.Errorf("push metrics: %v", perr)
		}
	}
	if err != nil {
		return err
	}
	if !report.OK() {
		return errors.Errorf("%d of %d scenarios failed, see %s", report.Failed(), len(report.Results), cfg.Report)
	}
	return nil
}

func registerScenarioFiles(dir string) error {
	if dir == "" {
		return nil
	}
	scenarios, err := scenario.LoadDir(dir)
	if err != nil {
		return err
	}
	for _, s := range scenarios {
		if core.GetCase(s.Name()) != nil {
			return errors.AlreadyExistsf("scenario %s from %s", s.Name(), dir)
		}
		core.RegisterCase(s)
	}
	return nil
}

func newStore(cfg config.Artifacts) (artifacts.Store, error) {
	var stores artifacts.Multi
	if cfg.Dir != "" {
		stores = append(stores, artifacts.LocalStore{Dir: cfg.Dir})
	}
	if cfg.Minio.Endpoint != "" {
		s3, err := artifacts.NewS3Store(artifacts.S3Options{
			Endpoint:  cfg.Minio.Endpoint,
			Bucket:    cfg.Minio.Bucket,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Secure:    cfg.Minio.Secure,
		})
		if err != nil {
			return nil, err
		}
		stores = append(stores, s3)
	}
	if len(stores) == 0 {
		return nil, nil
	}
	return stores, nil
}

// initTracing installs a tracer provider that writes spans to a file. With
// no file configured the global noop provider stays.
func initTracing(cfg config.Tracing) (func(), error) {
	if cfg.StdoutFile == "" {
		return func() {}, nil
	}
	f, err := os.Create(cfg.StdoutFile)
	if err != nil {
		return nil, errors.Annotate(err, "open trace file")
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, errors.Annotate(err, "trace exporter")
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Errorf("shutdown tracer provider: %v", err)
		}
		f.Close()
	}, nil
}
