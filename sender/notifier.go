package sender

import (
	"context"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier delivers fire-and-forget operator notifications. No return value
// is consumed by callers.
type Notifier interface {
	Notify(ctx context.Context, level Level, title, body string)
}

// LogNotifier writes notifications to the structured log. The POS front-end
// tails these through the ops channel.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, level Level, title, body string) {
	fields := []zap.Field{
		zap.String("title", title),
		zap.String("body", body),
	}
	switch level {
	case LevelError:
		n.logger.Error("Notification", fields...)
	case LevelWarning:
		n.logger.Warn("Notification", fields...)
	default:
		n.logger.Info("Notification", fields...)
	}
}
