// Package logging provides structured logging for depthbudget.
//
// # Overview
//
// Logger wraps Zap with:
//   - A custom Trace level (-2, below Debug) for per-run detail
//   - Stderr output, so reports written to stdout stay clean
//   - Optional OpenTelemetry output through the otelzap bridge
//   - Automatic context fields (trace_id, span_id, run.id, request.id)
//   - Level-aware sampling (errors never sampled)
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRunID(ctx, reportID)
//	logger.Info(ctx, "sweep finished", zap.Int("rows", n))
//
// # Testing
//
// TestLogger records every entry for assertions:
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "run finished", zap.Uint64("nodes", 90))
//	tl.AssertLogged(t, zapcore.InfoLevel, "run finished")
//	tl.AssertField(t, "run finished", "nodes", uint64(90))
package logging
