// Package notify delivers invitation emails. Delivery failure is never
// fatal to the caller; the invite flow falls back to manual sharing.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"mime/quotedprintable"
	"net/smtp"
	"strings"
)

// SMTPNotifier sends mail through a plain SMTP relay.
type SMTPNotifier struct {
	host   string
	port   string
	user   string
	pass   string
	from   string
	logger *slog.Logger
}

// NewSMTPNotifier creates an SMTP-backed notifier.
func NewSMTPNotifier(host, port, user, pass, from string, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, user: user, pass: pass, from: from, logger: logger}
}

// Send delivers a multipart/alternative message with text and HTML parts.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg, err := buildMessage(n.from, to, subject, htmlBody, textBody)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	var auth smtp.Auth
	if n.user != "" {
		auth = smtp.PlainAuth("", n.user, n.pass, n.host)
	}

	addr := n.host + ":" + n.port
	if err := smtp.SendMail(addr, auth, n.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}

	n.logger.Info("invitation email sent", "to", to)
	return nil
}

const boundary = "planner-multipart-boundary"

func buildMessage(from, to, subject, htmlBody, textBody string) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n\r\n")

	for _, part := range []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=utf-8", textBody},
		{"text/html; charset=utf-8", htmlBody},
	} {
		sb.WriteString("--" + boundary + "\r\n")
		sb.WriteString("Content-Type: " + part.contentType + "\r\n")
		sb.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

		var encoded strings.Builder
		w := quotedprintable.NewWriter(&encoded)
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		sb.WriteString(encoded.String())
		sb.WriteString("\r\n")
	}
	sb.WriteString("--" + boundary + "--\r\n")

	return []byte(sb.String()), nil
}

// LogNotifier is the fallback when no SMTP relay is configured: it logs
// the invitation instead of delivering it, and reports failure so
// callers surface the manual-share message.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the message and reports non-delivery.
func (n *LogNotifier) Send(_ context.Context, to, subject, _, textBody string) error {
	n.logger.Info("email delivery not configured",
		"to", to,
		"subject", subject,
		"body", textBody,
	)
	return fmt.Errorf("no email delivery configured")
}
