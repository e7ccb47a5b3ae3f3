package logging

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	RunIDKey  contextKey = "run-id"
	LoggerKey contextKey = "logger"
)

const (
	SongStage  = "song-data"
	LogStage   = "log-data"
	SinkStage  = "sink"
	StoreStage = "store"
)

type Logger struct {
	*zap.SugaredLogger
	id     string
	values map[string]interface{}
}

type RunID string

func NewRunID() string {
	return uuid.New().String()
}

func (logger Logger) with(key string, value interface{}) Logger {
	values := make(map[string]interface{}, len(logger.values)+1)
	for k, v := range logger.values {
		values[k] = v
	}
	values[key] = value
	return Logger{
		SugaredLogger: logger.With(key, value),
		id:            logger.id,
		values:        values,
	}
}

func (logger Logger) WithRunID(id string) Logger {
	l := logger.with(string(RunIDKey), id)
	l.id = id
	return l
}

func (logger Logger) WithStage(stage string) Logger {
	return logger.with("stage", stage)
}

func (logger Logger) WithTable(table, location string) Logger {
	return logger.with("table", table).with("location", location)
}

func (logger Logger) WithValues(values map[string]interface{}) Logger {
	for k, v := range values {
		logger = logger.with(k, v)
	}
	return logger
}

func (logger Logger) GetValue(key string) interface{} {
	return logger.values[key]
}

func (logger Logger) RunID() string {
	return logger.id
}

// InitializeRunID creates a run id, attaches it to a child logger and stores
// both on the returned context.
func (logger Logger) InitializeRunID(ctx context.Context) (string, context.Context, Logger) {
	id := NewRunID()
	ctx = AttachRunID(id, ctx, logger)
	return id, ctx, GetLoggerFromContext(ctx)
}

func AttachRunID(id string, ctx context.Context, logger Logger) context.Context {
	runLogger := logger.WithRunID(id)
	ctx = context.WithValue(ctx, RunIDKey, id)
	return context.WithValue(ctx, LoggerKey, runLogger)
}

func GetRunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// GetLoggerFromContext returns the logger stored on ctx or a fresh one.
func GetLoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(LoggerKey).(Logger); ok {
		return logger
	}
	return NewLogger("sparkify")
}

func NewLogger(service string) Logger {
	baseLogger, err := zap.NewDevelopment(
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		panic(err)
	}
	logger := baseLogger.Sugar().Named(service)
	return Logger{
		SugaredLogger: logger,
		values:        map[string]interface{}{},
	}
}

// NewNopLogger discards everything; used by tests.
func NewNopLogger() Logger {
	return Logger{
		SugaredLogger: zap.NewNop().Sugar(),
		values:        map[string]interface{}{},
	}
}

func NewStackTraceLogger(service string) Logger {
	cfg := zap.Config{
		Encoding:         "json",
		Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
		Development:      true,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",
			NewReflectedEncoder: func(w io.Writer) zapcore.ReflectedEncoder {
				enc := json.NewEncoder(w)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "    ")
				return enc
			},
		},
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return Logger{
		SugaredLogger: logger.Sugar().Named(service),
		values:        map[string]interface{}{},
	}
}
