package sweep

import (
	"context"
	"errors"
	"testing"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"github.com/fyrsmithlabs/depthbudget/internal/logging"
	"github.com/fyrsmithlabs/depthbudget/internal/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var (
	legacyCounts   = []uint64{0, 3, 6, 9, 18, 27, 36, 45, 60, 75, 90, 105, 126, 147, 168, 189}
	severityCounts = []uint64{0, 3, 6, 9, 15, 21, 27, 33, 42, 51, 60, 69, 81, 93, 105, 117}
)

func newTestRunner(t *testing.T) (*Runner, *logging.TestLogger, *telemetry.TestTelemetry) {
	t.Helper()
	tl := logging.NewTestLogger()
	tt := telemetry.NewTestTelemetry()
	r, err := NewRunner(WithLogger(tl.Logger), WithTelemetry(tt.Telemetry))
	require.NoError(t, err)
	return r, tl, tt
}

func TestNewRunner_Defaults(t *testing.T) {
	r, err := NewRunner()
	require.NoError(t, err)

	res, err := r.Run(context.Background(), budget.PolicyLegacy, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), res.Nodes)
}

func TestRunner_Sweep(t *testing.T) {
	r, _, _ := newTestRunner(t)

	report, err := r.Sweep(context.Background(), Config{
		Policies:  []string{"legacy", "severity"},
		Branching: 3,
		To:        16,
	})
	require.NoError(t, err)

	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), report.Branching)
	require.Len(t, report.Series, 2)

	for _, tc := range []struct {
		policy budget.Policy
		counts []uint64
	}{
		{budget.PolicyLegacy, legacyCounts},
		{budget.PolicySeverity, severityCounts},
	} {
		s, ok := report.SeriesFor(tc.policy)
		require.True(t, ok, tc.policy)
		require.Len(t, s.Rows, len(tc.counts))

		var prev, total uint64
		for d, want := range tc.counts {
			row := s.Rows[d]
			assert.Equal(t, uint64(d), row.Budget)
			assert.Equal(t, want, row.Count, "%s d=%d", tc.policy, d)
			assert.Equal(t, int64(want)-int64(prev), row.Delta)
			prev = want
			total += want
		}
		assert.Equal(t, total, s.Nodes)
	}
}

func TestRunner_SweepKeepsPolicyOrder(t *testing.T) {
	r, _, _ := newTestRunner(t)

	report, err := r.Sweep(context.Background(), Config{
		Policies:    []string{"v2", "current"},
		Branching:   3,
		To:          4,
		Parallelism: 1,
	})
	require.NoError(t, err)
	require.Len(t, report.Series, 2)
	assert.Equal(t, budget.PolicySeverity, report.Series[0].Policy)
	assert.Equal(t, budget.PolicyLegacy, report.Series[1].Policy)
}

func TestRunner_SweepOffsetRange(t *testing.T) {
	r, _, _ := newTestRunner(t)

	report, err := r.Sweep(context.Background(), Config{
		Policies:  []string{"legacy"},
		Branching: 3,
		From:      10,
		To:        12,
	})
	require.NoError(t, err)

	rows := report.Series[0].Rows
	require.Len(t, rows, 2)
	// The first row compares against zero.
	assert.Equal(t, NewRow(10, 90, 0), rows[0])
	assert.Equal(t, NewRow(11, 105, 90), rows[1])
}

func TestRunner_SweepInvalidConfig(t *testing.T) {
	r, _, _ := newTestRunner(t)

	report, err := r.Sweep(context.Background(), Config{Policies: []string{"bogus"}, To: 4})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, budget.ErrUnknownPolicy)
}

func TestRunner_SweepNodeLimit(t *testing.T) {
	r, tl, tt := newTestRunner(t)

	report, err := r.Sweep(context.Background(), Config{
		Policies:  []string{"legacy"},
		Branching: 3,
		To:        16,
		NodeLimit: 100,
	})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, budget.ErrNodeLimitExceeded)
	// legacy n=3 first exceeds 100 nodes at d=11.
	assert.Contains(t, err.Error(), "legacy series at budget 11")

	tl.AssertLogged(t, zapcore.WarnLevel, "run stopped")
	failed, ok := tt.Int64Sum(t, "depthbudget.run.failed.total")
	require.True(t, ok)
	assert.Equal(t, int64(1), failed)
}

func TestRunner_SweepWideRange(t *testing.T) {
	r, _, _ := newTestRunner(t)

	_, err := r.Sweep(context.Background(), Config{
		Policies:  []string{"legacy"},
		Branching: 3,
		To:        1 << 60,
		NodeLimit: 100,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, budget.ErrNodeLimitExceeded)
	assert.Contains(t, err.Error(), "legacy series at budget 11")
}

func TestRowCapacity(t *testing.T) {
	tests := []struct {
		width uint64
		want  int
	}{
		{0, 0},
		{512, 512},
		{maxRowPrealloc, maxRowPrealloc},
		{maxRowPrealloc + 1, maxRowPrealloc},
		{1 << 60, maxRowPrealloc},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rowCapacity(tt.width), "width %d", tt.width)
	}
}

func TestRunner_SweepCancelled(t *testing.T) {
	r, _, _ := newTestRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Sweep(ctx, Config{Policies: []string{"legacy"}, Branching: 3, To: 8})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunner_SweepTelemetry(t *testing.T) {
	r, _, tt := newTestRunner(t)

	report, err := r.Sweep(context.Background(), Config{
		Policies:  []string{"legacy", "severity"},
		Branching: 3,
		To:        5,
	})
	require.NoError(t, err)

	tt.AssertSpanExists(t, "sweep")
	tt.AssertSpanAttribute(t, "sweep", "sweep.id", report.ID)
	tt.AssertSpanAttribute(t, "sweep", "sweep.policies", int64(2))
	assert.Len(t, tt.SpansByName("sweep.series"), 2)

	runs, ok := tt.Int64Sum(t, "depthbudget.run.total")
	require.True(t, ok)
	assert.Equal(t, int64(10), runs)

	// legacy 0+3+6+9+18, severity 0+3+6+9+15
	nodes, ok := tt.Int64Sum(t, "depthbudget.run.nodes")
	require.True(t, ok)
	assert.Equal(t, int64(69), nodes)

	count, ok := tt.HistogramCount(t, "depthbudget.run.duration.seconds")
	require.True(t, ok)
	assert.Equal(t, uint64(10), count)
}

func TestRunner_RunBranchingLabel(t *testing.T) {
	r, _, tt := newTestRunner(t)
	ctx := context.Background()

	_, err := r.Run(ctx, budget.PolicyLegacy, 3, 2)
	require.NoError(t, err)
	_, err = r.Run(ctx, budget.PolicyLegacy, 1000, 1)
	require.NoError(t, err)
	_, err = r.Run(ctx, budget.PolicyLegacy, 5000, 1)
	require.NoError(t, err)

	labels := map[string]int64{}
	for _, dp := range tt.Int64SumPoints(t, "depthbudget.run.total") {
		v, ok := dp.Attributes.Value("branching")
		require.True(t, ok)
		labels[v.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"3": 1, "17+": 2}, labels)
}

func TestBranchingBucket(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{3, "3"},
		{16, "16"},
		{17, "17+"},
		{1 << 62, "17+"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, branchingBucket(tt.n))
	}
}

func TestRunner_SweepLogging(t *testing.T) {
	r, tl, _ := newTestRunner(t)

	report, err := r.Sweep(context.Background(), Config{
		Policies:  []string{"severity"},
		Branching: 3,
		To:        11,
	})
	require.NoError(t, err)

	tl.AssertLogged(t, zapcore.InfoLevel, "sweep started")
	tl.AssertLogged(t, zapcore.InfoLevel, "series finished")
	tl.AssertLogged(t, zapcore.InfoLevel, "sweep finished")
	tl.AssertField(t, "series finished", "policy", "severity")
	tl.AssertField(t, "series finished", "nodes", 267)
	tl.AssertField(t, "sweep finished", "run.id", report.ID)
}

func TestRunner_Run(t *testing.T) {
	r, tl, tt := newTestRunner(t)

	res, err := r.Run(context.Background(), budget.PolicySeverity, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), res.Nodes)

	tl.AssertLogged(t, zapcore.DebugLevel, "run finished")
	tl.AssertField(t, "run finished", "nodes", 60)

	overflows, ok := tt.Int64Sum(t, "depthbudget.run.overflows")
	require.True(t, ok)
	assert.Equal(t, int64(123), overflows)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRun(context.Background(), budget.Result{}, 0, nil)
		m.RecordSeries(context.Background(), budget.PolicyLegacy, 0)
	})

	var l *Logger
	assert.NotPanics(t, func() {
		l.SweepStarted(context.Background(), nil, Config{})
		l.SeriesFinished(context.Background(), Series{})
		l.SweepFinished(context.Background(), &Report{}, 0)
	})
}
