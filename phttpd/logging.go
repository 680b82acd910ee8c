package phttpd

import (
	"github.com/phttp/phttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// Uses JSON encoding; PHTTP_LOG_LEVEL controls the level (debug, info, warn, error).
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogDispatchError(err error) {
	l.Logger.Error("dispatch error", zap.Error(err))
}

func (l zapLogger) LogConnCloseError(err error) {
	l.Logger.Error("error while closing connection", zap.Error(err))
}

func newZapPHTTPLogger(l *zap.Logger) phttp.Logger {
	return zapLogger{l.Named("phttp").Named("phttpd")}
}
