// Package mail delivers registration verification codes over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// DefaultFrom is the sender used when none is configured.
const DefaultFrom = "Booking Service <noreply@example.com>"

// DefaultPort is the implicit TLS submission port.
const DefaultPort = 465

const verificationSubject = "Verification code for registration"

// ErrNotConfigured is returned when host, user or password is missing.
var ErrNotConfigured = errors.New("SMTP not configured (SMTP_HOST, SMTP_USER, SMTP_PASSWORD)")

// Config holds the SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

// Mailer sends verification codes through a single SMTP relay.
type Mailer struct {
	cfg    Config
	logger *slog.Logger
}

// New normalizes cfg and returns a mailer. Whitespace inside the host, user
// and password is removed and quotes around the password are dropped.
func New(cfg Config, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{cfg: normalize(cfg), logger: logger}
}

func normalize(cfg Config) Config {
	cfg.Host = stripSpaces(cfg.Host)
	cfg.User = stripSpaces(cfg.User)
	cfg.Password = stripSpaces(strings.Trim(cfg.Password, "\"' \t\r\n"))
	cfg.From = strings.TrimSpace(cfg.From)
	if cfg.From == "" {
		cfg.From = DefaultFrom
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return cfg
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Configured reports whether host, user and password are all set.
func (m *Mailer) Configured() bool {
	return m != nil && m.cfg.Host != "" && m.cfg.User != "" && m.cfg.Password != ""
}

// SendVerificationCode mails code to email. Transport errors are returned
// unchanged so callers can inspect the SMTP reply.
func (m *Mailer) SendVerificationCode(ctx context.Context, email, code string) error {
	if !m.Configured() {
		return ErrNotConfigured
	}

	msg, err := m.verificationMessage(email, code)
	if err != nil {
		return err
	}
	client, err := m.client()
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.ErrorContext(ctx, "mail send failed", "host", m.cfg.Host, "port", m.cfg.Port, "error", err)
		return err
	}
	m.logger.InfoContext(ctx, "verification code mailed", "to", email)
	return nil
}

func (m *Mailer) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.User),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.Port == DefaultPort {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	}
	return gomail.NewClient(m.cfg.Host, opts...)
}

func (m *Mailer) verificationMessage(email, code string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := msg.To(email); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", email, err)
	}
	msg.Subject(verificationSubject)
	if err := msg.SetBodyHTMLTemplate(verificationTemplate, struct{ Code string }{Code: code}); err != nil {
		return nil, fmt.Errorf("render verification mail: %w", err)
	}
	return msg, nil
}

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Verification code</title>
</head>
<body style="margin:0; padding:0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f1f5f9;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f1f5f9; padding: 24px;">
    <tr>
      <td align="center">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 420px; background: #ffffff; border-radius: 12px;">
          <tr>
            <td style="padding: 32px 28px;">
              <h1 style="margin: 0 0 8px; font-size: 20px; color: #0f172a;">Verification code</h1>
              <p style="margin: 0 0 24px; font-size: 15px; color: #64748b;">Use this code to complete registration:</p>
              <div style="background: #f8fafc; border: 1px solid #e2e8f0; border-radius: 8px; padding: 16px 20px; text-align: center;">
                <span style="font-size: 28px; font-weight: 700; letter-spacing: 0.2em; color: #334155;">{{.Code}}</span>
              </div>
              <p style="margin: 24px 0 0; font-size: 13px; color: #94a3b8;">This code is valid for 15 minutes. If you did not request registration, ignore this email.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))
