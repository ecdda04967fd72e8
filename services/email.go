package services

import (
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Mailer sends transactional email over plain SMTP. When no SMTP host
// is configured it logs the message instead, which keeps local
// development working without a mail server.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
	log  *zap.Logger
}

func NewMailer(host, port, user, pass, from string, log *zap.Logger) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from, log: log}
}

func (m *Mailer) SendPasswordReset(to, resetURL string) error {
	subject := "Reset your password"
	body := strings.Join([]string{
		"Hello,",
		"",
		"A password reset was requested for your account.",
		"Open the link below to choose a new password:",
		"",
		resetURL,
		"",
		"If you did not request this, you can ignore this email.",
	}, "\r\n")
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	if m.host == "" {
		m.log.Info("smtp not configured, logging email instead",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.String("body", body))
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s\r\n",
		m.from, to, subject, body)

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}

	m.log.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
