package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/gatekeeper/pkg/logger"
)

// LoggerExtractor returns a logger.ContextExtractor adding the "request_id"
// attribute for requests that passed through Middleware.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id := FromContext(ctx)
		if id == "" {
			return slog.Attr{}, false
		}
		return logger.RequestID(id), true
	}
}
