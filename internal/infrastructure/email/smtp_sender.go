package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"go.uber.org/zap"
	"lms-backend/internal/config"
	"lms-backend/internal/logger"
)

var ErrNotConfigured = errors.New("smtp is not configured")

// SMTPSender sends HTML mail through the configured SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if s.cfg.Host == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	if err := e.Send(addr, auth); err != nil {
		logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
