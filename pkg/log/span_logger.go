package log

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Logger = spanLogger{}

// spanLogger decorates a Logger so every entry is also recorded as an event
// on an OpenTelemetry span, correlating logs with distributed traces.
// Error entries additionally mark the span status as error.
type spanLogger struct {
	lg   Logger
	span trace.Span
}

func newSpanLogger(lg Logger, span trace.Span) Logger {
	return spanLogger{
		lg:   lg.AddCallerSkip(1), // skip the spanLogger frame
		span: span,
	}
}

func (sl spanLogger) Debug(msg string, keysAndValues ...any) {
	sl.record(LevelDebug, msg, keysAndValues)
	sl.lg.Debug(msg, sl.withTraceIDs(keysAndValues)...)
}

func (sl spanLogger) Info(msg string, keysAndValues ...any) {
	sl.record(LevelInfo, msg, keysAndValues)
	sl.lg.Info(msg, sl.withTraceIDs(keysAndValues)...)
}

func (sl spanLogger) Warn(msg string, keysAndValues ...any) {
	sl.record(LevelWarn, msg, keysAndValues)
	sl.lg.Warn(msg, sl.withTraceIDs(keysAndValues)...)
}

func (sl spanLogger) Error(msg string, keysAndValues ...any) {
	sl.record(LevelError, msg, keysAndValues)
	sl.span.SetStatus(codes.Error, msg)
	sl.lg.Error(msg, sl.withTraceIDs(keysAndValues)...)
}

func (sl spanLogger) WithKV(key string, value any) Logger {
	return spanLogger{lg: sl.lg.WithKV(key, value), span: sl.span}
}

func (sl spanLogger) WithName(name string) Logger {
	return spanLogger{lg: sl.lg.WithName(name), span: sl.span}
}

func (sl spanLogger) Name() string { return sl.lg.Name() }

func (sl spanLogger) AddCallerSkip(skip int) Logger {
	return spanLogger{lg: sl.lg.AddCallerSkip(skip), span: sl.span}
}

func (sl spanLogger) record(level Level, msg string, keysAndValues []any) {
	attrs := kvToAttributes(keysAndValues)
	attrs = append(attrs, attribute.String("log.level", string(level)))
	sl.span.AddEvent(msg, trace.WithAttributes(attrs...))
}

func (sl spanLogger) withTraceIDs(keysAndValues []any) []any {
	sc := sl.span.SpanContext()
	return append(keysAndValues, "traceID", sc.TraceID().String(), "spanID", sc.SpanID().String())
}

func kvToAttributes(keysAndValues []any) []attribute.KeyValue {
	if len(keysAndValues)%2 != 0 {
		keysAndValues = append(keysAndValues, "MISSING")
	}

	attrs := make([]attribute.KeyValue, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		attrs = append(attrs, attribute.String(key, fmt.Sprintf("%v", keysAndValues[i+1])))
	}
	return attrs
}
