package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/rl1809/warehouse-inventory/internal/platform/observability"
)

// LogNotifier writes notifications to the log. It is used when no broker is
// configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Send(ctx context.Context, subject, message string) error {
	observability.LoggerFrom(ctx, l.logger).Info("notification",
		zap.String("subject", subject),
		zap.String("message", message),
	)
	return nil
}
