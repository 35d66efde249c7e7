// Package mail declares the mail-sending collaborator used by the
// forgot-password flow. The real SMTP transport is external to this
// subsystem; deployments inject their own Sender.
package mail

import (
	"context"

	"github.com/gatehouse-io/gatehouse/internal/logging"
)

// Sender delivers a password-reset message carrying the reset token.
type Sender interface {
	SendPasswordReset(ctx context.Context, email, resetToken string) error
}

// LogSender is a development Sender that only logs. The token itself is
// never written to the log.
type LogSender struct {
	log logging.Logger
}

// NewLogSender returns a Sender that records deliveries on the logger.
func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendPasswordReset(ctx context.Context, email, resetToken string) error {
	s.log.Info(ctx, "password reset mail requested", "email", email, "token_len", len(resetToken))
	return nil
}
