package sweep

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// InstrumentationName is the name used for OTEL instrumentation.
	InstrumentationName = "github.com/fyrsmithlabs/depthbudget/internal/sweep"
)

// Metrics provides OpenTelemetry metrics for tree runs.
type Metrics struct {
	runTotal       metric.Int64Counter
	runFailed      metric.Int64Counter
	runNodes       metric.Int64Counter
	runOverflows   metric.Int64Counter
	runDuration    metric.Float64Histogram
	seriesDuration metric.Float64Histogram

	initialized bool
}

// NewMetrics creates the run instruments on meter.
// If meter is nil, uses the global meter provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(InstrumentationName)
	}

	m := &Metrics{}
	var err error

	m.runTotal, err = meter.Int64Counter(
		"depthbudget.run.total",
		metric.WithDescription("Total number of tree runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	m.runFailed, err = meter.Int64Counter(
		"depthbudget.run.failed.total",
		metric.WithDescription("Total number of tree runs stopped by cancellation or node limit"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	m.runNodes, err = meter.Int64Counter(
		"depthbudget.run.nodes",
		metric.WithDescription("Nodes spawned across all runs"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, err
	}

	m.runOverflows, err = meter.Int64Counter(
		"depthbudget.run.overflows",
		metric.WithDescription("Spawn attempts made with an exhausted budget"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	m.runDuration, err = meter.Float64Histogram(
		"depthbudget.run.duration.seconds",
		metric.WithDescription("Duration of a single tree run in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}

	m.seriesDuration, err = meter.Float64Histogram(
		"depthbudget.sweep.series.duration.seconds",
		metric.WithDescription("Duration of one policy series in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	m.initialized = true
	return m, nil
}

// RecordRun records a finished run. Budget is omitted from attributes and
// branching is bucketed to keep cardinality bounded.
func (m *Metrics) RecordRun(ctx context.Context, res budget.Result, duration time.Duration, err error) {
	if m == nil || !m.initialized {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("policy", res.Policy.String()),
		attribute.String("branching", branchingBucket(res.Branching)),
	)
	m.runTotal.Add(ctx, 1, attrs)
	m.runNodes.Add(ctx, clampInt64(res.Nodes), attrs)
	m.runOverflows.Add(ctx, clampInt64(res.Overflows), attrs)
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.runFailed.Add(ctx, 1, attrs)
	}
}

// RecordSeries records a finished policy series.
func (m *Metrics) RecordSeries(ctx context.Context, p budget.Policy, duration time.Duration) {
	if m == nil || !m.initialized {
		return
	}
	m.seriesDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("policy", p.String())))
}

// maxBranchingLabel is the largest branching factor recorded verbatim.
const maxBranchingLabel = 16

// branchingBucket returns the metric label for branching factor n.
func branchingBucket(n uint64) string {
	if n > maxBranchingLabel {
		return strconv.Itoa(maxBranchingLabel+1) + "+"
	}
	return strconv.FormatUint(n, 10)
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
