package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"mailgate"
	"mailgate/internal/api/captcha"
	"mailgate/internal/api/handler/request"
	"mailgate/internal/api/mailer"
	"mailgate/internal/api/mailerr"
	"mailgate/internal/api/sites"
)

// MailService drives one send request through its lifecycle:
// resolve the site and request, verify the CAPTCHA, assemble one email
// per recipient, hand the batch to the transport. Each step is attempted
// exactly once; the first failure wins.
type MailService struct {
	logger   zerolog.Logger
	cfg      mailgate.AppConfig
	registry *sites.Registry
	verifier captcha.Verifier
	mailer   mailer.Mailer
}

func NewMailService(cfg mailgate.AppConfig, logger zerolog.Logger, registry *sites.Registry, verifier captcha.Verifier, sender mailer.Mailer) *MailService {
	return &MailService{
		logger:   logger,
		cfg:      cfg,
		registry: registry,
		verifier: verifier,
		mailer:   sender,
	}
}

// Process handles one send request end to end.
func (s *MailService) Process(ctx context.Context, form request.MailForm) error {
	if form.Config == "" {
		return fmt.Errorf("%w: config", mailerr.ErrMissingField)
	}

	site, err := s.registry.Lookup(form.Config)
	if err != nil {
		return err
	}
	if site.Secret == "" {
		return fmt.Errorf("%w: %q", mailerr.ErrNoSecret, form.Config)
	}

	req, err := s.resolve(form, site)
	if err != nil {
		return err
	}

	ok, err := s.verifier.Verify(ctx, site.Secret, req.CaptchaResponse, req.RemoteIP)
	if err != nil {
		return err
	}
	if !ok {
		return mailerr.ErrVerificationFailed
	}
	s.logger.Info().Str("site", req.SiteID).Msg("Got valid CAPTCHA")

	settings := site.Settings(s.cfg.SmtpConfig)
	emails := assembleEmails(req, settings.From)

	if err := s.mailer.Send(ctx, settings, emails); err != nil {
		return err
	}

	s.logger.Info().Str("site", req.SiteID).Int("recipients", len(emails)).Msg("Emails sent")
	return nil
}
