package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"github.com/fyrsmithlabs/depthbudget/internal/logging"
	"github.com/fyrsmithlabs/depthbudget/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Runner executes instrumented runs and sweeps. A Runner is safe for
// concurrent use.
type Runner struct {
	logger  *Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// RunnerOption configures a Runner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	logger *logging.Logger
	tel    *telemetry.Telemetry
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *logging.Logger) RunnerOption {
	return func(o *runnerOptions) {
		o.logger = l
	}
}

// WithTelemetry sets the telemetry providers. Defaults to the global ones.
func WithTelemetry(t *telemetry.Telemetry) RunnerOption {
	return func(o *runnerOptions) {
		o.tel = t
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...RunnerOption) (*Runner, error) {
	o := &runnerOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var tracer trace.Tracer
	var metrics *Metrics
	var err error
	if o.tel != nil {
		tracer = o.tel.Tracer(InstrumentationName)
		metrics, err = NewMetrics(o.tel.Meter(InstrumentationName))
	} else {
		tracer = otel.Tracer(InstrumentationName)
		metrics, err = NewMetrics(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("creating sweep metrics: %w", err)
	}

	return &Runner{
		logger:  NewLogger(o.logger),
		metrics: metrics,
		tracer:  tracer,
	}, nil
}

// Run performs one instrumented run.
func (r *Runner) Run(ctx context.Context, p budget.Policy, n, d uint64, opts ...budget.Option) (budget.Result, error) {
	start := time.Now()
	res, err := budget.RunContext(ctx, p, n, d, opts...)
	elapsed := time.Since(start)

	r.metrics.RecordRun(ctx, res, elapsed, err)
	if err != nil {
		r.logger.RunFailed(ctx, res, err)
		return res, err
	}
	r.logger.RunFinished(ctx, res, elapsed)
	return res, nil
}

// Sweep runs every configured policy over the budget range and returns the
// report. Series run concurrently, bounded by cfg.Parallelism. The first
// failing run cancels the remaining series.
func (r *Runner) Sweep(ctx context.Context, cfg Config) (*Report, error) {
	policies, err := cfg.policies()
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:        uuid.NewString(),
		Branching: cfg.Branching,
		From:      cfg.From,
		To:        cfg.To,
		Series:    make([]Series, len(policies)),
	}

	ctx = logging.WithRunID(ctx, report.ID)
	ctx, span := r.tracer.Start(ctx, "sweep", trace.WithAttributes(
		attribute.String("sweep.id", report.ID),
		attribute.Int64("sweep.branching", clampInt64(cfg.Branching)),
		attribute.Int64("sweep.from", clampInt64(cfg.From)),
		attribute.Int64("sweep.to", clampInt64(cfg.To)),
		attribute.Int("sweep.policies", len(policies)),
	))
	defer span.End()

	r.logger.SweepStarted(ctx, policies, cfg)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Parallelism > 0 {
		g.SetLimit(cfg.Parallelism)
	}
	for i, p := range policies {
		g.Go(func() error {
			s, err := r.series(gctx, p, cfg)
			if err != nil {
				return err
			}
			report.Series[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	r.logger.SweepFinished(ctx, report, time.Since(start))
	return report, nil
}

// series computes the rows of one policy in ascending budget order.
func (r *Runner) series(ctx context.Context, p budget.Policy, cfg Config) (Series, error) {
	ctx, span := r.tracer.Start(ctx, "sweep.series", trace.WithAttributes(
		attribute.String("policy", p.String()),
		attribute.Int64("branching", clampInt64(cfg.Branching)),
	))
	defer span.End()

	start := time.Now()
	s := Series{
		Policy: p,
		Rows:   make([]Row, 0, rowCapacity(cfg.Width())),
	}

	var opts []budget.Option
	if cfg.NodeLimit > 0 {
		opts = append(opts, budget.WithNodeLimit(cfg.NodeLimit))
	}

	var prev uint64
	for d := cfg.From; d < cfg.To; d++ {
		res, err := r.Run(ctx, p, cfg.Branching, d, opts...)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			err = fmt.Errorf("%s series at budget %d: %w", p, d, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Series{}, err
		}
		s.Rows = append(s.Rows, NewRow(d, res.Nodes, prev))
		s.Nodes += res.Nodes
		prev = res.Nodes
	}

	s.Duration = time.Since(start)
	span.SetAttributes(attribute.Int64("nodes", clampInt64(s.Nodes)))
	r.metrics.RecordSeries(ctx, p, s.Duration)
	r.logger.SeriesFinished(ctx, s)
	return s, nil
}

// maxRowPrealloc caps the initial row capacity for very wide ranges.
const maxRowPrealloc = 4096

func rowCapacity(width uint64) int {
	if width > maxRowPrealloc {
		return maxRowPrealloc
	}
	return int(width)
}
