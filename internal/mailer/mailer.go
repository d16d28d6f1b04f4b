package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/wizardlabs/leadforms/internal/config"
	"github.com/wizardlabs/leadforms/internal/logger"
	"go.uber.org/zap"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(to, subject, html string) error
}

// SMTP sends mail through a plain-auth SMTP relay.
type SMTP struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// NewSMTP builds a sender from config. Returns a no-op sender when no
// SMTP host is configured so callers never need a nil check.
func NewSMTP(cfg *config.Config) Sender {
	if cfg.SMTPHost == "" {
		return noop{}
	}
	return &SMTP{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
}

// Send delivers one message.
func (s *SMTP) Send(to, subject, html string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(html)

	var a smtp.Auth
	if s.User != "" {
		a = smtp.PlainAuth("", s.User, s.Password, s.Host)
	}
	return smtp.SendMail(s.Host+":"+s.Port, a, s.From, []string{to}, []byte(msg.String()))
}

// SendAsync fires a send in the background. Failures are logged and never
// surfaced to the caller; used for best-effort notifications only.
func SendAsync(s Sender, to, subject, html string) {
	go func() {
		if err := s.Send(to, subject, html); err != nil {
			logger.L().Error("failed to send email",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}()
}

type noop struct{}

func (noop) Send(to, subject, html string) error {
	logger.L().Warn("mail disabled, dropping message",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
