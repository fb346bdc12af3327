package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// EmailSender delivers digest documents over SMTP. An unconfigured sender
// is valid and reports itself as such so callers can skip delivery.
type EmailSender struct {
	cfg EmailConfig
}

func NewEmailSender(cfg EmailConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.From != "" && len(s.cfg.To) > 0
}

// Send delivers the digest body as a plain-text message to all recipients.
func (s *EmailSender) Send(subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("notify: email delivery is not configured")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(s.cfg.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, s.cfg.To, []byte(msg.String())); err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}

	slog.Info("Digest email sent", "recipients", len(s.cfg.To), "subject", subject)
	return nil
}
