// Package notify provides notification sinks for workflow side effects.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/application/port"
)

// LogNotifier records notifications in the service log. It stands in for a
// real delivery channel until one is integrated.
// TODO: e-mail delivery via the tribunal SMTP relay once credentials exist.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

var _ port.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Notify(ctx context.Context, userID, title, message string) error {
	n.logger.Info("Notification",
		zap.String("user_id", userID),
		zap.String("title", title),
		zap.String("message", message))
	return nil
}
