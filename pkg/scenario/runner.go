package scenario

import (
	"context"
	"time"

	"github.com/juju/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/history"
	"github.com/pingcap/tipocket-sqllab/pkg/metrics"
)

const tracerName = "github.com/pingcap/tipocket-sqllab/pkg/scenario"

// Runner executes the steps of a scenario in order and stops at the first
// failing one. All fields are optional.
type Runner struct {
	History *history.Recorder
	Metrics *metrics.Recorder
	Tracer  trace.Tracer
}

func (r *Runner) tracer() trace.Tracer {
	if r.Tracer != nil {
		return r.Tracer
	}
	return otel.Tracer(tracerName)
}

// Run runs s. The returned error names the failing step.
func (r *Runner) Run(ctx context.Context, s *Scenario, env *Env) (err error) {
	ctx, span := r.tracer().Start(ctx, "scenario "+s.Name(),
		trace.WithAttributes(attribute.String("scenario", s.Name())))
	defer func() {
		endSpan(span, err)
	}()

	for i, step := range s.Steps() {
		if err := ctx.Err(); err != nil {
			return errors.Annotatef(err, "step %d (%s)", i, step.Name())
		}
		if err := r.runStep(ctx, s.Name(), i, step, env); err != nil {
			return errors.Annotatef(err, "step %d (%s)", i, step.Name())
		}
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, scenario string, i int, step Step, env *Env) (err error) {
	ctx, span := r.tracer().Start(ctx, step.Name(),
		trace.WithAttributes(attribute.String("scenario", scenario), attribute.Int("step", i)))
	defer func() {
		endSpan(span, err)
	}()

	if herr := r.History.RecordCall(scenario, i, step.Name()); herr != nil {
		zap.L().Warn("record history failed", zap.Error(herr))
	}
	zap.L().Info("step started", zap.String("scenario", scenario), zap.Int("step", i), zap.String("name", step.Name()))

	start := time.Now()
	err = step.Run(ctx, env)
	elapsed := time.Since(start)

	r.Metrics.ObserveStep(scenario, step.Name(), elapsed)
	kind := ""
	if err != nil {
		kind = string(core.KindOf(err))
	}
	if herr := r.History.RecordReturn(scenario, i, step.Name(), elapsed, kind, err); herr != nil {
		zap.L().Warn("record history failed", zap.Error(herr))
	}
	if err != nil {
		zap.L().Warn("step failed", zap.String("scenario", scenario), zap.Int("step", i),
			zap.String("kind", kind), zap.Duration("elapsed", elapsed), zap.Error(err))
	}
	return err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetAttributes(attribute.String("failure.kind", string(core.KindOf(err))))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
