package log

import (
	"os"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = &ZapLogger{}

// Config configures the zap-backed logger. Fields carry env tags so the
// struct can be populated with cleanenv alongside the rest of the
// application configuration.
type Config struct {
	Format string `env:"LOG_FORMAT" env-default:"console"` // console, logfmt or json
	Level  Level  `env:"LOG_LEVEL" env-default:"info"`     // debug, info, warn or error
	Output string `env:"LOG_OUTPUT" env-default:"stderr"`  // stderr or stdout
}

// ZapLogger is a Logger backed by Uber's zap.
type ZapLogger struct {
	lg   *zap.SugaredLogger
	name string
}

// NewZapLogger builds a ZapLogger from the given configuration.
// Extra write syncers can be supplied to tee output, which is mainly
// useful in tests.
func NewZapLogger(conf Config, extraWriters ...zapcore.WriteSyncer) Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	var encoder zapcore.Encoder
	switch conf.Format {
	case "logfmt":
		encoder = zaplogfmt.NewEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	var ws zapcore.WriteSyncer
	if conf.Output == "stdout" {
		ws = zapcore.Lock(os.Stdout)
	} else {
		ws = zapcore.Lock(os.Stderr)
	}
	if len(extraWriters) > 0 {
		ws = zapcore.NewMultiWriteSyncer(append(extraWriters, ws)...)
	}

	core := zapcore.NewCore(encoder, ws, toZapLevel(conf.Level))
	// AddCallerSkip(1) skips the wrapper methods below so the call site
	// points at the caller of Logger.Info, not ZapLogger.Info.
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()

	return &ZapLogger{lg: zl}
}

func (l *ZapLogger) Debug(msg string, keysAndValues ...any) {
	l.lg.Debugw(msg, keysAndValues...)
}

func (l *ZapLogger) Info(msg string, keysAndValues ...any) {
	l.lg.Infow(msg, keysAndValues...)
}

func (l *ZapLogger) Warn(msg string, keysAndValues ...any) {
	l.lg.Warnw(msg, keysAndValues...)
}

func (l *ZapLogger) Error(msg string, keysAndValues ...any) {
	l.lg.Errorw(msg, keysAndValues...)
}

// WithKV returns a copy of the logger with the pair attached to every entry.
func (l *ZapLogger) WithKV(key string, value any) Logger {
	return &ZapLogger{lg: l.lg.With(key, value), name: l.name}
}

// WithName returns a copy of the logger scoped to name.
func (l *ZapLogger) WithName(name string) Logger {
	full := name
	if l.name != "" {
		full = l.name + "." + name
	}
	return &ZapLogger{lg: l.lg.Named(name), name: full}
}

// Name returns the dotted component name of this logger.
func (l *ZapLogger) Name() string { return l.name }

// AddCallerSkip returns a copy of the logger skipping additional frames.
func (l *ZapLogger) AddCallerSkip(skip int) Logger {
	return &ZapLogger{lg: l.lg.WithOptions(zap.AddCallerSkip(skip)), name: l.name}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
