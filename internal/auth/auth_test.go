package auth

import (
	"errors"
	"testing"
	"time"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := CheckPassword(hash, "secret1"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := CheckPassword(hash, "secret2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := CheckPassword("", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected empty hash to fail, got %v", err)
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("12345"); err == nil {
		t.Fatalf("expected short password to fail")
	}
}

func TestSessionToken(t *testing.T) {
	signer, err := NewSigner("test-secret")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	signer.SetClock(func() time.Time { return now })

	token, err := signer.IssueSession("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := signer.ParseSession(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" || !claims.ExpiresAt.Equal(now.Add(SessionTTL)) {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := signer.ParseSignInLink(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("session token must not work as sign-in link, got %v", err)
	}

	now = now.Add(SessionTTL + time.Second)
	if _, err := signer.ParseSession(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestSignInLinkToken(t *testing.T) {
	signer, err := NewSigner("test-secret")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	signer.SetClock(func() time.Time { return now })

	token, err := signer.IssueSignInLink("user-2", "a@b.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := signer.ParseSignInLink(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Email != "a@b.io" || claims.Purpose != PurposeSignIn {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := signer.ParseSession(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("sign-in link must not work as session, got %v", err)
	}
	now = now.Add(16 * time.Minute)
	if _, err := signer.ParseSignInLink(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired link to fail, got %v", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	a, _ := NewSigner("secret-a")
	b, _ := NewSigner("secret-b")
	token, err := a.IssueSession("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.ParseSession(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := b.ParseSession("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected garbage to fail, got %v", err)
	}
}

func TestNewSignerRejectsEmptySecret(t *testing.T) {
	if _, err := NewSigner("  "); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for in, want := range cases {
		if got := BearerToken(in); got != want {
			t.Fatalf("BearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}
