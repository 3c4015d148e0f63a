// Package telemetry provides OpenTelemetry instrumentation for depthbudget.
//
// # Overview
//
// Sweeps and HTTP handlers record spans and metrics through the providers
// owned by a Telemetry instance. Export goes to an OTLP collector over gRPC
// or HTTP/protobuf. When telemetry is disabled every accessor falls back to
// the global (no-op) providers, so instrumented code never branches on it.
//
// # Usage
//
//	cfg, err := telemetry.FromSettings(appCfg.Telemetry, version)
//	tel, err := telemetry.New(ctx, cfg)
//	defer tel.Shutdown(ctx)
//
//	tracer := tel.Tracer("depthbudget.sweep")
//	ctx, span := tracer.Start(ctx, "sweep")
//	defer span.End()
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc          # or http/protobuf
//	  sample_rate: 1.0
//	  export_interval: "15s"
//
// # Error Handling
//
// Exporter failures at startup mark the instance degraded instead of failing
// the command. Health reports the first failure reason.
//
// # Testing
//
// TestTelemetry records spans and metrics in memory:
//
//	tt := telemetry.NewTestTelemetry()
//	runner := sweep.NewRunner(sweep.WithTelemetry(tt.Telemetry))
//	tt.AssertSpanExists(t, "sweep")
package telemetry
