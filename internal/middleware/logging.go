package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AccessLog logs one line per request. Server errors are logged at error
// level, client errors at warn.
func AccessLog(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		status := ctx.Status()
		level := zapcore.InfoLevel

		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		}

		path := ctx.URL().Path
		if op := ctx.Operation(); op != nil {
			path = op.Path
		}

		meta := RequestMetaFromContext(ctx.Context())

		logger.Log(level, "request",
			zap.String("method", ctx.Method()),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", meta.RequestID),
			zap.String("client_ip", meta.ClientIP),
		)
	}
}
