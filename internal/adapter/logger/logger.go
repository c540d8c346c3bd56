package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"newsletter/pkg/config"
)

// Logger is the application log sink. Zap carries request and lifecycle logs
// (with trace correlation through otelzap); SQL is a zerolog view of the same
// outputs used by database/sql instrumentation.
type Logger struct {
	*otelzap.Logger
	SQL zerolog.Logger
}

type Options struct {
	ServiceName string
	Level       string
	Sink        io.Writer
	File        *lumberjack.Logger
}

// OptionsFromSettings maps log settings to Options writing to stdout and,
// when a file is configured, to a rotating log file.
func OptionsFromSettings(serviceName string, settings config.LogSettings) Options {
	opts := Options{
		ServiceName: serviceName,
		Level:       settings.Level,
		Sink:        os.Stdout,
	}

	if settings.File != "" {
		opts.File = &lumberjack.Logger{
			Filename:   settings.File,
			MaxSize:    settings.MaxSizeMB,
			MaxBackups: settings.MaxBackups,
			MaxAge:     settings.MaxAgeDays,
			Compress:   settings.Compress,
		}
	}

	return opts
}

func New(opts Options) (*Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)

	if opts.Level == "" {
		level, err = zapcore.InfoLevel, nil
	}

	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	sink := opts.Sink

	if sink == nil {
		sink = os.Stdout
	}

	writers := []io.Writer{sink}

	if opts.File != nil {
		writers = append(writers, opts.File)
	}

	out := io.MultiWriter(writers...)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.TimeKey = "timestamp"

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(out),
		zap.NewAtomicLevelAt(level),
	)

	zapLogger := zap.New(core, zap.AddCaller()).With(zap.String("service", opts.ServiceName))

	sqlLogger := zerolog.New(out).
		Level(zerologLevel(level)).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Str("component", "sql").
		Logger()

	return &Logger{
		Logger: otelzap.New(zapLogger),
		SQL:    sqlLogger,
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{
		Logger: otelzap.New(zap.NewNop()),
		SQL:    zerolog.Nop(),
	}
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

// ReplaceGlobals installs l as the process-wide zap and otelzap logger.
func (l *Logger) ReplaceGlobals() {
	zap.ReplaceGlobals(l.Logger.Logger)
	otelzap.ReplaceGlobals(l.Logger)
}

func zerologLevel(level zapcore.Level) zerolog.Level {
	switch level {
	case zapcore.DebugLevel:
		return zerolog.DebugLevel
	case zapcore.InfoLevel:
		return zerolog.InfoLevel
	case zapcore.WarnLevel:
		return zerolog.WarnLevel
	case zapcore.ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.FatalLevel
	}
}
