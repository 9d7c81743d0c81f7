package mail

import (
	"errors"
	"strings"
	"testing"
)

func TestNewResendMailerRequiresCredentials(t *testing.T) {
	cases := [][2]string{{"", "a@b.io"}, {"re_key", ""}, {"", ""}}
	for _, tc := range cases {
		if _, err := NewResendMailer(tc[0], tc[1]); !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("NewResendMailer(%q, %q): expected ErrNotConfigured, got %v", tc[0], tc[1], err)
		}
	}
	if _, err := NewResendMailer("re_key", "login@b.io"); err != nil {
		t.Fatalf("expected mailer, got %v", err)
	}
}

func TestSignInLinkEscapesURL(t *testing.T) {
	msg := SignInLink("a@b.io", "http://localhost:3000/verify?token=x&next=<y>")
	if msg.To != "a@b.io" || msg.Subject == "" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if !strings.Contains(msg.HTML, "token=x&amp;next=&lt;y&gt;") {
		t.Fatalf("expected escaped link, got %q", msg.HTML)
	}
}
