// Package mail renders and sends the account emails (address verification
// and password reset) over SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/ahmedharby13/Evouqe-Project/pkg/circuitbreaker"
	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("mail sender is not configured")

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	sender  sender
	from    string
	breaker *circuitbreaker.Breaker
}

func NewSMTPMailer(host string, port int, user, password, from string, breaker *circuitbreaker.Breaker) *SMTPMailer {
	m := &SMTPMailer{from: from, breaker: breaker}
	if host != "" && user != "" {
		m.sender = gomail.NewDialer(host, port, user, password)
	}
	return m
}

type linkData struct {
	Name string
	Link string
}

func (m *SMTPMailer) SendVerification(ctx context.Context, to, name, link string) error {
	return m.send(ctx, to, "Verify your email address", "verify_email.html", linkData{Name: name, Link: link})
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	return m.send(ctx, to, "Reset your password", "reset_password.html", linkData{Name: name, Link: link})
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, tmpl string, data any) error {
	if m.sender == nil {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := render(tmpl, data)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	return circuitbreaker.Do(m.breaker, func() error {
		if err := m.sender.DialAndSend(msg); err != nil {
			return fmt.Errorf("send %q to %s: %w", subject, to, err)
		}
		return nil
	})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
