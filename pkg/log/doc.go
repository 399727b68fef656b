// Package log provides the structured, context-aware logging facade used by
// the provider runtime.
//
// The package avoids global state: a Logger is constructed once and passed
// down explicitly or through a context. Components derive scoped loggers with
// WithName and attach persistent fields with WithKV.
//
// Three implementations exist:
//
//   - ZapLogger: production logger backed by Uber's zap, with console,
//     logfmt and JSON encoders selected through Config
//   - NoopLogger: discards everything; the default wherever no logger is set
//   - spanLogger: transparent decorator installed by SetContextLogger when
//     the context carries a recording OpenTelemetry span; it mirrors each
//     entry onto the span as an event
//
// Typical wiring:
//
//	logger := log.NewZapLogger(log.Config{Format: "logfmt", Level: log.LevelInfo})
//	ctx := log.SetContextLogger(context.Background(), logger)
//	...
//	log.FromContext(ctx).Info("request dispatched", "method", "eth_chainId")
package log
