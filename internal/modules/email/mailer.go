// README: SMTP transport and template rendering collaborators.
package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"motorpool/internal/config"
)

// Transport delivers a rendered message. The production implementation is
// plain SMTP; tests substitute a recording fake.
type Transport interface {
	Send(subject, htmlBody string, to []string) error
}

// Renderer builds the HTML body for a message kind. Template authoring is a
// collaborator concern; the default implementation is deliberately small.
type Renderer interface {
	Render(kind Kind, data map[string]any) (string, error)
}

type SMTPTransport struct {
	cfg config.SMTPConfig
}

func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Send(subject, htmlBody string, to []string) error {
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	var auth smtp.Auth
	if t.cfg.Username != "" {
		auth = smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
	}
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", t.cfg.FromName, t.cfg.FromEmail),
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")
	return smtp.SendMail(addr, auth, t.cfg.FromEmail, to, []byte(msg))
}
