package log

var _ Logger = NoopLogger{}

// NoopLogger discards every log message. It is the safe default wherever a
// Logger was not supplied.
type NoopLogger struct{}

// NewNoopLogger returns a logger that silently drops all output.
func NewNoopLogger() Logger { return NoopLogger{} }

func (NoopLogger) Debug(msg string, keysAndValues ...any) {}
func (NoopLogger) Info(msg string, keysAndValues ...any)  {}
func (NoopLogger) Warn(msg string, keysAndValues ...any)  {}
func (NoopLogger) Error(msg string, keysAndValues ...any) {}

func (n NoopLogger) WithKV(key string, value any) Logger { return n }
func (n NoopLogger) WithName(name string) Logger         { return n }
func (NoopLogger) Name() string                          { return "noop" }
func (n NoopLogger) AddCallerSkip(skip int) Logger       { return n }
