package service

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"mailgate/internal/api/mailerr"
	"mailgate/internal/api/sites"
)

// renderTemplate handles format=json bodies: the raw body is parsed as a
// JSON object, its string values are HTML-escaped, and the result is
// rendered through the site's message template.
func (s *MailService) renderTemplate(site sites.SiteConfig, rawBody string) (string, error) {
	if site.Template == "" {
		return "", mailerr.ErrNoTemplate
	}

	path := filepath.Join(s.cfg.TemplatesDir, site.Template+".tmpl")
	text, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error().Err(err).Str("template", site.Template).Msg("Cannot read message template")
		return "", fmt.Errorf("%w: %s", mailerr.ErrTemplateUnreadable, site.Template)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(rawBody), &data); err != nil {
		return "", fmt.Errorf("%w: body is not a JSON object", mailerr.ErrBadPayload)
	}
	escapeValues(data)

	tmpl, err := template.New(site.Template).Option("missingkey=error").Parse(string(text))
	if err != nil {
		return "", fmt.Errorf("%w: %v", mailerr.ErrBadTemplate, err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("%w: %v", mailerr.ErrBadTemplate, err)
	}
	return out.String(), nil
}

// escapeValues HTML-escapes every string value in place, recursing into
// nested objects and arrays. Keys are left alone.
func escapeValues(data map[string]any) {
	for k, v := range data {
		data[k] = escapeValue(v)
	}
}

func escapeValue(v any) any {
	switch val := v.(type) {
	case string:
		return html.EscapeString(val)
	case map[string]any:
		escapeValues(val)
		return val
	case []any:
		for i, item := range val {
			val[i] = escapeValue(item)
		}
		return val
	default:
		return v
	}
}
