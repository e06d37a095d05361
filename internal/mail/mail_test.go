package mail

import (
	"strings"
	"testing"
)

func TestVerificationMessage(t *testing.T) {
	msg := Verification("a@x.com", "alice", "http://localhost:8080/auth/verify-email/abc123")

	if msg.To != "a@x.com" {
		t.Errorf("To = %q", msg.To)
	}
	if msg.Subject != "Please verify your email" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	for _, body := range []string{msg.HTML, msg.Text} {
		if !strings.Contains(body, "alice") {
			t.Error("body does not address the user by name")
		}
		if !strings.Contains(body, "/auth/verify-email/abc123") {
			t.Error("body does not carry the verification link")
		}
	}
}

func TestPasswordResetMessage(t *testing.T) {
	msg := PasswordReset("a@x.com", "alice", "http://localhost:8080/auth/reset-password/abc123")

	if msg.Subject != "Reset your password" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "/auth/reset-password/abc123") {
		t.Error("text body does not carry the reset link")
	}
	if !strings.Contains(msg.HTML, `href="http://localhost:8080/auth/reset-password/abc123"`) {
		t.Error("html body does not link the reset URL")
	}
}

func TestHTMLEscaping(t *testing.T) {
	msg := Verification("a@x.com", `<script>alert(1)</script>`, "http://x")
	if strings.Contains(msg.HTML, "<script>") {
		t.Error("username is not escaped in html body")
	}
}

func TestEnvelopeAddress(t *testing.T) {
	cases := map[string]string{
		"TaskHub <no-reply@taskhub.org>": "no-reply@taskhub.org",
		"no-reply@taskhub.org":           "no-reply@taskhub.org",
		"  no-reply@taskhub.org  ":       "no-reply@taskhub.org",
	}
	for in, want := range cases {
		if got := envelopeAddress(in); got != want {
			t.Errorf("envelopeAddress(%q) = %q, want %q", in, got, want)
		}
	}
}
