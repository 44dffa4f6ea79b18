package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	gomail "github.com/wneessen/go-mail"
)

func TestNew_Normalizes(t *testing.T) {
	t.Parallel()

	m := New(Config{Host: " smtp.example.com ", User: "bot @example.com", Password: ` "app pass" `}, nil)
	if m.cfg.Host != "smtp.example.com" || m.cfg.User != "bot@example.com" || m.cfg.Password != "apppass" {
		t.Fatalf("unexpected normalized config %#v", m.cfg)
	}
	if m.cfg.Port != DefaultPort || m.cfg.From != DefaultFrom {
		t.Fatalf("expected defaults, got %#v", m.cfg)
	}
}

func TestMailer_Configured(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"complete", Config{Host: "smtp.example.com", User: "bot", Password: "secret"}, true},
		{"missing host", Config{User: "bot", Password: "secret"}, false},
		{"missing user", Config{Host: "smtp.example.com", Password: "secret"}, false},
		{"blank password", Config{Host: "smtp.example.com", User: "bot", Password: " '' "}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := New(tc.cfg, nil).Configured(); got != tc.want {
				t.Fatalf("Configured() = %v, want %v", got, tc.want)
			}
		})
	}

	var nilMailer *Mailer
	if nilMailer.Configured() {
		t.Fatal("expected nil mailer to be unconfigured")
	}
}

func TestMailer_SendWithoutConfig(t *testing.T) {
	t.Parallel()

	err := New(Config{}, nil).SendVerificationCode(context.Background(), "user@example.com", "123456")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestMailer_VerificationMessage(t *testing.T) {
	t.Parallel()

	m := New(Config{Host: "smtp.example.com", User: "bot", Password: "secret"}, nil)
	msg, err := m.verificationMessage("user@example.com", "654321")
	if err != nil {
		t.Fatalf("verificationMessage returned error: %v", err)
	}

	if to := msg.GetToString(); len(to) != 1 || !strings.Contains(to[0], "user@example.com") {
		t.Fatalf("unexpected recipients %v", to)
	}
	if subject := msg.GetGenHeader(gomail.HeaderSubject); len(subject) != 1 || subject[0] != verificationSubject {
		t.Fatalf("unexpected subject %v", subject)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "654321") {
		t.Fatal("expected rendered body to contain the code")
	}

	if _, err := m.verificationMessage("not an address", "1"); err == nil {
		t.Fatal("expected invalid recipient to fail")
	}
}

func TestMailer_ClientOptions(t *testing.T) {
	t.Parallel()

	for _, port := range []int{465, 587} {
		m := New(Config{Host: "smtp.example.com", Port: port, User: "bot", Password: "secret"}, nil)
		if _, err := m.client(); err != nil {
			t.Fatalf("client() for port %d returned error: %v", port, err)
		}
	}
}
