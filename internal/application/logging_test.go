package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/example/room-booking/internal/booking"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	rejection := booking.CheckCancellation(time.Time{}, time.Now(), false, false)

	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: ErrUnauthorized, want: "unauthorized"},
		{err: fmt.Errorf("wrapped: %w", ErrNotFound), want: "not_found"},
		{err: ErrSessionExpired, want: "session_expired"},
		{err: ErrDomainNotAllowed, want: "domain_not_allowed"},
		{err: invalid("bad"), want: "validation"},
		{err: rejection, want: "rejected_not_owner"},
		{err: &MailDeliveryError{Message: "boom"}, want: "mail_delivery"},
		{err: io.EOF, want: "unexpected"},
	}
	for _, tc := range tests {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestLogOutcomeLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "success", want: "level=INFO msg=done"},
		{name: "expected failure", err: ErrNotFound, want: "level=WARN msg=failed"},
		{name: "unexpected failure", err: io.ErrUnexpectedEOF, want: "level=ERROR msg=failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := serviceLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)), "TestService", "Op")
			logOutcome(context.Background(), logger, tc.err, "failed", "done")

			out := buf.String()
			if !strings.Contains(out, tc.want) {
				t.Fatalf("expected %q in %q", tc.want, out)
			}
			if !strings.Contains(out, "service=TestService") || !strings.Contains(out, "operation=Op") {
				t.Fatalf("expected service attributes in %q", out)
			}
		})
	}
}
