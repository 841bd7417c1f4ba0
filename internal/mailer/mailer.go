// Package mailer delivers one-time password reset codes.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"jobboard-backend/internal/config"
)

// Mailer sends a reset code to an address.
type Mailer interface {
	SendResetOTP(ctx context.Context, to, otp string, validFor time.Duration) error
}

// New picks SMTP delivery when a host is configured, otherwise the log mailer.
func New(c config.SMTP, logger *slog.Logger) Mailer {
	if c.Host == "" {
		return NewLogMailer(logger)
	}
	return &SMTPMailer{cfg: c}
}

func resetBody(otp string, validFor time.Duration) string {
	return fmt.Sprintf("Your password reset code is %s. It expires in %s.", otp, validFor.Round(time.Second))
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	cfg config.SMTP
}

func (m *SMTPMailer) SendResetOTP(ctx context.Context, to, otp string, validFor time.Duration) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject("Password reset code")
	msg.SetBodyString(mail.TypeTextPlain, resetBody(otp, validFor))

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer writes the code to the log. Development only.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendResetOTP(ctx context.Context, to, otp string, validFor time.Duration) error {
	m.logger.InfoContext(ctx, "password reset code", "to", to, "otp", otp, "valid_for", validFor.String())
	return nil
}
