package grading

import (
	"context"

	"go.uber.org/zap"

	"github.com/reachhk/engage/internal/logging"
	"github.com/reachhk/engage/internal/models"
)

// Notifier delivers escalated alerts to the partner organisation.
type Notifier interface {
	NotifyAlert(ctx context.Context, a models.PerformanceAlert) error
}

// LogNotifier только пишет алерт в лог; доставку подключают снаружи.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) NotifyAlert(_ context.Context, a models.PerformanceAlert) error {
	logging.OrNop(n.Log).Warn("NGO alert",
		zap.String("alert_id", a.ID),
		zap.String("student_id", a.StudentID),
		zap.String("type", a.AlertType),
		zap.String("severity", string(a.Severity)),
		zap.String("message", a.Message))
	return nil
}
