// Package mailer delivers verification codes through an SMTP relay
package mailer

import (
	"fmt"

	"github.com/toolbench/portal/internal/config"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Mailer sends verification-code emails using gopkg.in/mail.v2. The call is
// synchronous: it blocks the acting request until the relay accepts or
// rejects the message.
type Mailer struct {
	dialer *mail.Dialer
	from   string
	logger *zap.Logger
}

// New creates a mailer from SMTP configuration
func New(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// SendVerificationCode emails a password-reset verification code
func (m *Mailer) SendVerificationCode(to, code string) error {
	body := fmt.Sprintf(`Dear User,

You requested to reset your password. Please use the following verification code:

%s

If you did not request this change, please ignore this email.

Best regards,
Your Team
`, code)

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password Reset Verification Code")
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("verification code sent", zap.String("to", to))
	return nil
}
