package service

import (
	"fmt"
	"net/url"
	"strings"

	"mailgate/internal/api/handler/request"
	"mailgate/internal/api/mailerr"
	"mailgate/internal/api/sites"
)

// Body formats accepted via the "format" parameter.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatJSON = "json"
)

// MailRequest is the fully resolved form of one incoming request. All
// validation happens while building it, so later stages never fail on
// bad input.
type MailRequest struct {
	SiteID          string
	CaptchaResponse string
	RemoteIP        string
	Subject         string
	Recipients      []string
	ReplyTo         string
	Format          string
	BodyPlain       string
	BodyHTML        string
}

// resolve eagerly turns raw request parameters and the site configuration
// into a MailRequest, or fails with the first validation error.
func (s *MailService) resolve(form request.MailForm, site sites.SiteConfig) (MailRequest, error) {
	if form.Response == "" {
		return MailRequest{}, fmt.Errorf("%w: response", mailerr.ErrMissingField)
	}
	if form.Subject == "" {
		return MailRequest{}, fmt.Errorf("%w: subject", mailerr.ErrMissingField)
	}

	req := MailRequest{
		SiteID:          form.Config,
		CaptchaResponse: form.Response,
		Subject:         percentDecode(form.Subject),
		ReplyTo:         form.ReplyTo,
		RemoteIP:        form.RemoteIP,
		Format:          resolveFormat(form),
	}
	if req.RemoteIP == "" {
		req.RemoteIP = form.ClientIP
	}

	req.Recipients = mergeRecipients(site, form)
	if len(req.Recipients) == 0 {
		return MailRequest{}, mailerr.ErrNoRecipients
	}

	body := percentDecode(form.Body)
	switch req.Format {
	case FormatHTML:
		req.BodyHTML = body
	case FormatJSON:
		rendered, err := s.renderTemplate(site, body)
		if err != nil {
			return MailRequest{}, err
		}
		req.BodyHTML = rendered
	default:
		req.BodyPlain = strings.ReplaceAll(body, "<br>", "\n")
	}

	if req.BodyPlain == "" && req.BodyHTML == "" {
		return MailRequest{}, mailerr.ErrNoBody
	}

	return req, nil
}

// resolveFormat applies the precedence rules: an explicit "format"
// parameter wins; otherwise the deprecated "html" flag selects html;
// everything else is text.
func resolveFormat(form request.MailForm) string {
	switch form.Format {
	case FormatText, FormatHTML, FormatJSON:
		return form.Format
	}
	if form.HTMLFlag {
		return FormatHTML
	}
	return FormatText
}

// mergeRecipients unions all recipient sources in order: site defaults,
// the comma-separated "recipients" parameter, the deprecated singular
// "recipient" parameter, and finally the issuer. Duplicates are dropped,
// first occurrence wins.
func mergeRecipients(site sites.SiteConfig, form request.MailForm) []string {
	var merged []string
	seen := make(map[string]bool)

	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true
		merged = append(merged, addr)
	}

	for _, r := range site.Recipients {
		add(r)
	}
	for _, r := range strings.Split(form.Recipients, ",") {
		add(r)
	}
	for _, r := range form.RecipientsList {
		add(r)
	}
	add(form.Recipient)
	add(form.Issuer)

	return merged
}

// percentDecode unescapes %XX sequences, leaving the input untouched
// when it is not valid percent-encoding. Unlike query unescaping, "+"
// is not turned into a space.
func percentDecode(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
