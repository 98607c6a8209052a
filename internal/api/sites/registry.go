// Package sites provides the per-site configuration registry. Each site
// (a tenant allowed to use the mailer) is keyed by its identifier in a
// JSON file and carries its own CAPTCHA secret, default recipients and
// optional SMTP overrides.
package sites

import (
	"encoding/json"
	"fmt"
	"os"

	"mailgate"
	"mailgate/internal/api/mailerr"
)

// SMTPOverrides is a partial set of SMTP settings attached to a site.
// Every absent field falls back to the global default. Field names match
// the registry file layout.
type SMTPOverrides struct {
	Host   *string `json:"host"`
	Port   *int    `json:"port"`
	User   *string `json:"user"`
	Passwd *string `json:"passwd"`
	SSL    *bool   `json:"ssl"`
	From   *string `json:"from"`
}

// SiteConfig is one entry in the registry.
type SiteConfig struct {
	Secret     string         `json:"secret"`
	SMTP       *SMTPOverrides `json:"smtp"`
	Recipients []string       `json:"recipients"`
	Template   string         `json:"template"`
}

// Settings merges the site's SMTP overrides over the global defaults.
// When an override block exists but omits the ssl flag, TLS stays on.
func (s SiteConfig) Settings(defaults mailgate.SMTPSettings) mailgate.SMTPSettings {
	out := defaults
	if s.SMTP == nil {
		return out
	}
	if s.SMTP.Host != nil {
		out.Host = *s.SMTP.Host
	}
	if s.SMTP.Port != nil {
		out.Port = *s.SMTP.Port
	}
	if s.SMTP.User != nil {
		out.Username = *s.SMTP.User
	}
	if s.SMTP.Passwd != nil {
		out.Password = *s.SMTP.Passwd
	}
	if s.SMTP.From != nil {
		out.From = *s.SMTP.From
	}
	out.UseTLS = true
	if s.SMTP.SSL != nil {
		out.UseTLS = *s.SMTP.SSL
	}
	return out
}

// Registry looks up site configurations from the JSON registry file.
// The file is re-read on every lookup, so registry edits take effect
// without a restart.
type Registry struct {
	path string
}

func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

// Lookup returns the configuration for the given site id.
func (r *Registry) Lookup(id string) (SiteConfig, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return SiteConfig{}, fmt.Errorf("%w: %s", mailerr.ErrSitesMissing, r.path)
		}
		return SiteConfig{}, fmt.Errorf("%w: %s", mailerr.ErrSitesUnreadable, r.path)
	}

	var all map[string]SiteConfig
	if err := json.Unmarshal(data, &all); err != nil {
		return SiteConfig{}, fmt.Errorf("%w: %s", mailerr.ErrSitesCorrupt, r.path)
	}

	site, ok := all[id]
	if !ok {
		return SiteConfig{}, fmt.Errorf("%w: %q", mailerr.ErrUnknownSite, id)
	}
	return site, nil
}
