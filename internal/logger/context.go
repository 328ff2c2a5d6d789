package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey contextKey = "logger"
	echoKey              = "logger"
)

// FromContext returns the request logger, or the process logger when none was attached.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return log
	}
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok {
		return log
	}
	return l
}

func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

func FromEcho(c echo.Context) *zap.Logger {
	l, ok := c.Get(echoKey).(*zap.Logger)
	if !ok {
		return log
	}
	return l
}
