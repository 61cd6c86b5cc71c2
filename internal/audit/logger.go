package audit

import (
	"context"

	"github.com/serroba/url-shortener-go/internal/events"
	"github.com/serroba/url-shortener-go/internal/messaging"
	"go.uber.org/zap"
)

// Logger writes one structured audit record per shorten request.
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates an audit logger writing under the "audit" name.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger.Named("audit")}
}

// HandleURLShortened satisfies messaging.Handler[events.URLShortened].
func (l *Logger) HandleURLShortened(ctx context.Context, event *events.URLShortened) error {
	l.logger.Info("url shortened",
		zap.Int64("id", event.ID),
		zap.String("code", event.Code),
		zap.String("original_url", event.OriginalURL),
		zap.String("strategy", event.Strategy),
		zap.Time("created_at", event.CreatedAt),
		zap.String("client_ip", event.ClientIP),
		zap.String("request_id", messaging.CorrelationID(ctx)),
	)

	return nil
}
