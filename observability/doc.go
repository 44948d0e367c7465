// Package observability provides OpenTelemetry tracing and metrics for
// the chat gateway: spans around provider calls and request handling,
// counters and histograms for generations, and health reporting.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("scout"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanAsk)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("scout"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("scout"))
//	metrics.RecordGeneration(ctx, "scira", "scira-default", "ok", duration)
package observability
