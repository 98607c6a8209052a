// Package mailer delivers assembled emails over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"mailgate"
	"mailgate/internal/api/mailerr"
)

// Email is one outgoing message for a single recipient. Exactly one of
// PlainBody / HTMLBody is non-empty.
type Email struct {
	Subject   string
	Sender    string
	Recipient string
	PlainBody string
	HTMLBody  string
	ReplyTo   string
}

// Mailer delivers a batch of emails through one SMTP session.
type Mailer interface {
	Send(ctx context.Context, settings mailgate.SMTPSettings, emails []Email) error
}

// SMTPMailer is the go-mail implementation of Mailer.
type SMTPMailer struct {
	logger zerolog.Logger
}

func NewSMTPMailer(logger zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{logger: logger}
}

// Send delivers all emails in a single SMTP transmission attempt.
func (s *SMTPMailer) Send(ctx context.Context, settings mailgate.SMTPSettings, emails []Email) error {
	if len(emails) == 0 {
		return fmt.Errorf("%w: empty batch", mailerr.ErrTransport)
	}

	msgs := make([]*gomail.Msg, 0, len(emails))
	for _, email := range emails {
		m, err := BuildMessage(email)
		if err != nil {
			return fmt.Errorf("%w: %v", mailerr.ErrTransport, err)
		}
		msgs = append(msgs, m)
	}

	tlsPolicy := gomail.TLSOpportunistic
	if settings.UseTLS {
		tlsPolicy = gomail.TLSMandatory
	}

	opts := []gomail.Option{
		gomail.WithPort(settings.Port),
		gomail.WithTLSPolicy(tlsPolicy),
	}
	if settings.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(settings.Username),
			gomail.WithPassword(settings.Password),
		)
	}

	client, err := gomail.NewClient(settings.Host, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", mailerr.ErrTransport, err)
	}

	if err := client.DialAndSendWithContext(ctx, msgs...); err != nil {
		return mapSendError(err)
	}

	s.logger.Info().Int("count", len(msgs)).Str("host", settings.Host).Msg("Emails sent")
	return nil
}

// BuildMessage converts one Email into a go-mail message.
func BuildMessage(email Email) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(email.Sender); err != nil {
		return nil, fmt.Errorf("failed to set from: %w", err)
	}
	if err := m.To(email.Recipient); err != nil {
		return nil, fmt.Errorf("failed to set to: %w", err)
	}
	m.Subject(email.Subject)

	if email.HTMLBody != "" {
		m.SetBodyString(gomail.TypeTextHTML, email.HTMLBody)
	} else {
		m.SetBodyString(gomail.TypeTextPlain, email.PlainBody)
	}

	if email.ReplyTo != "" {
		if err := m.ReplyTo(email.ReplyTo); err != nil {
			return nil, fmt.Errorf("failed to set reply-to: %w", err)
		}
	}
	return m, nil
}

// mapSendError translates go-mail failures into the domain taxonomy.
func mapSendError(err error) error {
	var sendErr *gomail.SendError
	if errors.As(err, &sendErr) {
		switch sendErr.Reason {
		case gomail.ErrSMTPRcptTo, gomail.ErrSMTPMailFrom:
			return fmt.Errorf("%w: %v", mailerr.ErrRecipientsRefused, err)
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "auth") {
		return fmt.Errorf("%w: credentials rejected", mailerr.ErrAuthenticationFailed)
	}
	return fmt.Errorf("%w: %v", mailerr.ErrTransport, err)
}
