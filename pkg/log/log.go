package log

// Logger is the structured logging interface used throughout the module.
// Implementations must be safe for concurrent use.
type Logger interface {
	// Debug logs low-level diagnostic detail.
	// keysAndValues lets you add structured context (e.g., "method", name).
	Debug(msg string, keysAndValues ...any)
	// Info logs routine progress and state changes.
	Info(msg string, keysAndValues ...any)
	// Warn logs unexpected situations that are not errors.
	Warn(msg string, keysAndValues ...any)
	// Error logs failures that need attention.
	Error(msg string, keysAndValues ...any)

	// WithKV returns a logger that includes the key-value pair on all future logs.
	WithKV(key string, value any) Logger
	// WithName returns a logger scoped to a component name. Nested names
	// are joined with dots ("provider.dispatcher").
	WithName(name string) Logger
	// Name returns the logger's current name.
	Name() string
	// AddCallerSkip returns a logger that skips extra stack frames when
	// reporting the log call site. Implementations that do not track call
	// sites return themselves.
	AddCallerSkip(skip int) Logger
}

// Level is the severity threshold for log output.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)
