package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailgate"
	"mailgate/internal/api/handler/request"
	"mailgate/internal/api/mailerr"
	"mailgate/internal/api/sites"
)

// newResolverService creates a MailService with just enough state for
// resolve tests. Verifier and mailer are never reached.
func newResolverService(t *testing.T) *MailService {
	t.Helper()
	return &MailService{
		logger: zerolog.Nop(),
		cfg:    mailgate.AppConfig{TemplatesDir: t.TempDir()},
	}
}

func validForm() request.MailForm {
	return request.MailForm{
		Config:     "acme",
		Response:   "tok1",
		Subject:    "Hi",
		Recipients: "a@x.com,b@x.com",
		Body:       "hello<br>world",
	}
}

func TestResolve_TextFormat(t *testing.T) {
	svc := newResolverService(t)

	req, err := svc.resolve(validForm(), sites.SiteConfig{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, req.Recipients)
	assert.Equal(t, "hello\nworld", req.BodyPlain)
	assert.Empty(t, req.BodyHTML)
	assert.Equal(t, FormatText, req.Format)
}

func TestResolve_HTMLFormat(t *testing.T) {
	svc := newResolverService(t)
	form := validForm()
	form.Format = "html"

	req, err := svc.resolve(form, sites.SiteConfig{})
	require.NoError(t, err)

	assert.Empty(t, req.BodyPlain)
	assert.Equal(t, "hello<br>world", req.BodyHTML)
}

func TestResolve_Idempotent(t *testing.T) {
	svc := newResolverService(t)

	first, err := svc.resolve(validForm(), sites.SiteConfig{})
	require.NoError(t, err)
	second, err := svc.resolve(validForm(), sites.SiteConfig{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolve_FormatPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		htmlFlag bool
		want     string
	}{
		{"default is text", "", false, FormatText},
		{"legacy html flag", "", true, FormatHTML},
		{"explicit format wins over flag", "text", true, FormatText},
		{"unknown format falls back", "markdown", false, FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newResolverService(t)
			form := validForm()
			form.Format = tt.format
			form.HTMLFlag = tt.htmlFlag

			req, err := svc.resolve(form, sites.SiteConfig{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Format)
		})
	}
}

func TestResolve_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*request.MailForm)
	}{
		{"no captcha response", func(f *request.MailForm) { f.Response = "" }},
		{"no subject", func(f *request.MailForm) { f.Subject = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newResolverService(t)
			form := validForm()
			tt.mutate(&form)

			_, err := svc.resolve(form, sites.SiteConfig{})
			assert.ErrorIs(t, err, mailerr.ErrMissingField)
		})
	}
}

func TestResolve_SubjectPercentDecoded(t *testing.T) {
	svc := newResolverService(t)
	form := validForm()
	form.Subject = "Hello%20World%21"

	req, err := svc.resolve(form, sites.SiteConfig{})
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", req.Subject)
}

func TestResolve_RecipientsMerge(t *testing.T) {
	svc := newResolverService(t)
	form := validForm()
	form.Recipients = " b@x.com , ,c@x.com"
	form.Recipient = "legacy@x.com"
	form.Issuer = "issuer@x.com"

	site := sites.SiteConfig{Recipients: []string{"a@x.com", "b@x.com"}}

	req, err := svc.resolve(form, site)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"a@x.com", "b@x.com", "c@x.com", "legacy@x.com", "issuer@x.com"},
		req.Recipients)
}

func TestResolve_NoRecipients(t *testing.T) {
	svc := newResolverService(t)
	form := validForm()
	form.Recipients = ""

	_, err := svc.resolve(form, sites.SiteConfig{})
	assert.ErrorIs(t, err, mailerr.ErrNoRecipients)
}

func TestResolve_NoBody(t *testing.T) {
	svc := newResolverService(t)
	form := validForm()
	form.Body = ""

	_, err := svc.resolve(form, sites.SiteConfig{})
	assert.ErrorIs(t, err, mailerr.ErrNoBody)
}

func TestResolve_RemoteIPFallsBackToClientIP(t *testing.T) {
	svc := newResolverService(t)
	form := validForm()
	form.ClientIP = "198.51.100.7"

	req, err := svc.resolve(form, sites.SiteConfig{})
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.7", req.RemoteIP)

	form.RemoteIP = "203.0.113.9"
	req, err = svc.resolve(form, sites.SiteConfig{})
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", req.RemoteIP)
}

func TestResolve_JSONFormatRendersTemplate(t *testing.T) {
	svc := newResolverService(t)
	templatePath := filepath.Join(svc.cfg.TemplatesDir, "contact.tmpl")
	require.NoError(t, os.WriteFile(templatePath, []byte("<p>From {{.name}}: {{.message}}</p>"), 0o644))

	form := validForm()
	form.Format = "json"
	form.Body = `{"name": "Jo", "message": "hi <there>"}`

	site := sites.SiteConfig{Template: "contact"}

	req, err := svc.resolve(form, site)
	require.NoError(t, err)

	assert.Empty(t, req.BodyPlain)
	assert.Equal(t, "<p>From Jo: hi &lt;there&gt;</p>", req.BodyHTML)
}

func TestResolve_JSONFormatWithoutTemplate(t *testing.T) {
	svc := newResolverService(t)
	form := validForm()
	form.Format = "json"
	form.Body = `{}`

	_, err := svc.resolve(form, sites.SiteConfig{})
	assert.ErrorIs(t, err, mailerr.ErrNoTemplate)
}
