// Package auth hashes passwords and issues signed session and sign-in tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when a password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for tokens that fail signature, expiry or purpose checks.
	ErrInvalidToken = errors.New("invalid token")
)

// Token lifetimes.
const (
	SessionTTL    = 30 * 24 * time.Hour
	SignInLinkTTL = 15 * time.Minute
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Token purposes carried in the "purpose" claim.
const (
	PurposeSession = "session"
	PurposeSignIn  = "sign-in"
)

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares password with a stored hash.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Claims is the decoded content of a valid token.
type Claims struct {
	Subject   string
	Email     string
	Purpose   string
	ExpiresAt time.Time
}

// Signer issues and verifies HS256 tokens.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner returns a Signer for secret. An empty secret is rejected.
func NewSigner(secret string) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Signer{secret: []byte(secret), now: time.Now}, nil
}

// SetClock overrides the time source.
func (s *Signer) SetClock(now func() time.Time) {
	s.now = now
}

// IssueSession returns a 30-day session token for userID.
func (s *Signer) IssueSession(userID string) (string, error) {
	return s.issue(userID, "", PurposeSession, SessionTTL)
}

// IssueSignInLink returns a short-lived token that can be exchanged for a
// session.
func (s *Signer) IssueSignInLink(userID, email string) (string, error) {
	return s.issue(userID, email, PurposeSignIn, SignInLinkTTL)
}

func (s *Signer) issue(subject, email, purpose string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is empty")
	}
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub":     subject,
		"purpose": purpose,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseSession verifies a session token.
func (s *Signer) ParseSession(token string) (Claims, error) {
	return s.parse(token, PurposeSession)
}

// ParseSignInLink verifies a sign-in link token.
func (s *Signer) ParseSignInLink(token string) (Claims, error) {
	return s.parse(token, PurposeSignIn)
}

func (s *Signer) parse(raw, purpose string) (Claims, error) {
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	token, err := parser.Parse(raw, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	// Expiry uses the signer clock.
	if !mc.VerifyExpiresAt(s.now().Unix(), true) {
		return Claims{}, ErrInvalidToken
	}
	c := Claims{}
	c.Subject, _ = mc["sub"].(string)
	c.Email, _ = mc["email"].(string)
	c.Purpose, _ = mc["purpose"].(string)
	if exp, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	if c.Subject == "" || c.Purpose != purpose {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
