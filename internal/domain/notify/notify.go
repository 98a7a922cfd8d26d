// Package notify defines the outbound notification contract.
// Delivery (transactional email API) is an external collaborator; the core
// only depends on this interface.
package notify

import "context"

// Notifier sends a notification to a set of recipients. Best-effort:
// callers log failures and continue, a failed notification must never roll
// back the state transition that triggered it.
type Notifier interface {
	NotifyReviewers(ctx context.Context, recipients []string, subject, body string) error
}

// Nop is a Notifier that does nothing. Useful in tests and as a safe
// default when no mail backend is configured.
type Nop struct{}

func (Nop) NotifyReviewers(ctx context.Context, recipients []string, subject, body string) error {
	return nil
}
