package sweep

import (
	"context"
	"time"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"github.com/fyrsmithlabs/depthbudget/internal/logging"
	"go.uber.org/zap"
)

// Logger wraps logging.Logger with sweep-specific events.
type Logger struct {
	logger *logging.Logger
}

// NewLogger creates a Logger. If logger is nil, uses a no-op logger.
func NewLogger(logger *logging.Logger) *Logger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Logger{logger: logger.Named("sweep")}
}

// SweepStarted logs the start of a sweep.
func (l *Logger) SweepStarted(ctx context.Context, policies []budget.Policy, cfg Config) {
	if l == nil || l.logger == nil {
		return
	}
	names := make([]string, len(policies))
	for i, p := range policies {
		names[i] = p.String()
	}
	l.logger.Info(ctx, "sweep started",
		zap.Strings("policies", names),
		zap.Uint64("branching", cfg.Branching),
		zap.Uint64("from", cfg.From),
		zap.Uint64("to", cfg.To),
	)
}

// RunFinished logs a single completed run.
func (l *Logger) RunFinished(ctx context.Context, res budget.Result, duration time.Duration) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Debug(ctx, "run finished", append(resultFields(res), zap.Duration("duration", duration))...)
}

// RunFailed logs a run stopped by cancellation or the node limit.
func (l *Logger) RunFailed(ctx context.Context, res budget.Result, err error) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Warn(ctx, "run stopped", append(resultFields(res), zap.Error(err))...)
}

// SeriesFinished logs the summary of one policy series.
func (l *Logger) SeriesFinished(ctx context.Context, s Series) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Info(ctx, "series finished",
		zap.String("policy", s.Policy.String()),
		zap.Int("rows", len(s.Rows)),
		zap.Uint64("nodes", s.Nodes),
		zap.Duration("duration", s.Duration),
	)
}

// SweepFinished logs the end of a sweep.
func (l *Logger) SweepFinished(ctx context.Context, report *Report, duration time.Duration) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Info(ctx, "sweep finished",
		zap.Int("series", len(report.Series)),
		zap.Duration("duration", duration),
	)
}

func resultFields(res budget.Result) []zap.Field {
	return []zap.Field{
		zap.String("policy", res.Policy.String()),
		zap.Uint64("branching", res.Branching),
		zap.Uint64("budget", res.InitialBudget),
		zap.Uint64("nodes", res.Nodes),
		zap.Uint64("overflows", res.Overflows),
		zap.Uint64("max_depth", res.MaxDepth),
	}
}
