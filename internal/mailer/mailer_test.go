package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewWithoutCredentialsIsDisabled(t *testing.T) {
	m := New(Config{})
	err := m.Send(context.Background(), "clerk@example.com", "hi", "<p>hi</p>")
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
}

func TestWelcomeClerkTemplate(t *testing.T) {
	subject, html := WelcomeClerk("Dana", "dana@example.com", "temp-pass-1")
	if subject == "" {
		t.Fatal("empty subject")
	}
	for _, want := range []string{"Dana", "dana@example.com", "temp-pass-1"} {
		if !strings.Contains(html, want) {
			t.Errorf("welcome mail missing %q", want)
		}
	}
}

func TestOTPCodeTemplate(t *testing.T) {
	_, html := OTPCode("482913", 30*time.Minute)
	if !strings.Contains(html, "482913") {
		t.Error("otp mail missing the code")
	}
	if !strings.Contains(html, "30 minutes") {
		t.Error("otp mail missing the expiry")
	}
}
