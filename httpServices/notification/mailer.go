package notification

import (
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strings"
)

// Mailer sends plain-text mail over SMTP. There is no third-party mail
// dependency; net/smtp covers everything the consent flow needs.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewMailer creates a Mailer from environment configuration.
func NewMailer() (*Mailer, error) {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	from := os.Getenv("SMTP_FROM")

	if host == "" || from == "" {
		return nil, fmt.Errorf("missing SMTP configuration in environment variables")
	}
	if port == "" {
		port = "587"
	}

	return &Mailer{
		host: host,
		port: port,
		user: os.Getenv("SMTP_USERNAME"),
		pass: os.Getenv("SMTP_PASSWORD"),
		from: from,
	}, nil
}

// SendMail sends a plain-text message to a single recipient.
func (m *Mailer) SendMail(to, subject, body string) error {
	var sb strings.Builder
	sb.WriteString("From: " + m.from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	addr := net.JoinHostPort(m.host, m.port)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(sb.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
