package observability

import (
	"context"

	"go.uber.org/zap"
)

// WithContext enriches a logger with the active trace/span ids, when a span
// is recording on the context.
func WithContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	tc := ExtractTrace(ctx)
	if tc == nil {
		return logger
	}

	return logger.With(
		zap.String("trace_id", tc.TraceID),
		zap.String("span_id", tc.SpanID),
	)
}
