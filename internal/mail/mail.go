// Package mail sends transactional email.
package mail

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/resendlabs/resend-go"
)

// ErrNotConfigured is returned by constructors when credentials are missing.
var ErrNotConfigured = errors.New("email is not configured")

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends messages. Tests substitute an in-memory implementation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ResendMailer sends through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer returns a Mailer, or ErrNotConfigured when apiKey or from
// is empty.
func NewResendMailer(apiKey, from string) (*ResendMailer, error) {
	if apiKey == "" || from == "" {
		return nil, ErrNotConfigured
	}
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}, nil
}

// Send delivers msg. The Resend client does not accept a context; ctx is
// only checked before the call.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if _, err := m.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	return nil
}

// SignInLink builds the sign-in email for link.
func SignInLink(to, link string) Message {
	escaped := html.EscapeString(link)
	body := fmt.Sprintf(`<div style="font-family:sans-serif;line-height:1.5">
<h2>Sign in to Typeforge</h2>
<p>Click the link below to sign in. It expires in 15 minutes.</p>
<p><a href="%s">Sign in</a></p>
<p style="color:#666;font-size:12px">If you did not request this email you can ignore it.</p>
</div>`, escaped)
	return Message{To: to, Subject: "Your Typeforge sign-in link", HTML: body}
}
