// Package mailerr defines the error taxonomy shared by the site registry,
// resolver, CAPTCHA verifier and mail transport, and maps each error to
// the HTTP status returned to the caller.
package mailerr

import (
	"errors"
	"net/http"
)

var (
	// Registry / configuration errors.
	ErrSitesMissing    = errors.New("sites file not found")
	ErrSitesUnreadable = errors.New("sites file not readable")
	ErrSitesCorrupt    = errors.New("corrupted sites file")
	ErrUnknownSite     = errors.New("no such configuration")
	ErrNoSecret        = errors.New("no secret specified for configuration")

	// Request validation errors.
	ErrMissingField = errors.New("missing required field")
	ErrNoRecipients = errors.New("no recipients specified")
	ErrNoBody       = errors.New("no message body provided")
	ErrNoTemplate   = errors.New("no template configured")
	ErrBadTemplate  = errors.New("invalid rendering settings")
	ErrBadPayload   = errors.New("invalid request payload")

	// CAPTCHA errors.
	ErrVerificationFailed  = errors.New("captcha check failed")
	ErrVerificationService = errors.New("captcha service error")

	// Transport errors.
	ErrTemplateUnreadable   = errors.New("cannot open template")
	ErrAuthenticationFailed = errors.New("invalid SMTP credentials")
	ErrRecipientsRefused    = errors.New("recipient refused")
	ErrTransport            = errors.New("mail delivery failed")
)

// Status returns the HTTP status code for a domain error. Unrecognized
// errors are treated as internal failures.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnknownSite),
		errors.Is(err, ErrMissingField),
		errors.Is(err, ErrNoRecipients),
		errors.Is(err, ErrNoBody),
		errors.Is(err, ErrNoTemplate),
		errors.Is(err, ErrBadTemplate),
		errors.Is(err, ErrBadPayload),
		errors.Is(err, ErrVerificationFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
