// Package notify provides notification delivery implementations.
package notify

import (
	"context"

	"gaiafact/internal/domain/notify"
	"gaiafact/pkg/logger"
)

// Compile-time check.
var _ notify.Notifier = (*LogNotifier)(nil)

// LogNotifier writes notifications to the structured log instead of an
// email provider. The production deployment swaps in a transactional
// email implementation behind the same interface.
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// NotifyReviewers logs the rendered notification.
func (n *LogNotifier) NotifyReviewers(ctx context.Context, recipients []string, subject, body string) error {
	logger.Info(ctx, "reviewer notification",
		"recipients", recipients,
		"subject", subject,
		"body", body,
	)
	return nil
}
