// Package captcha verifies reCAPTCHA response tokens against the
// provider's verification endpoint. The wire format is fixed by the
// provider and treated as opaque: one POST, one boolean answer.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mailgate/internal/api/mailerr"
)

// Verifier checks a CAPTCHA response token. Implementations must be safe
// for concurrent use.
type Verifier interface {
	// Verify returns whether the token passed the check. The remote IP is
	// optional and only used by the provider for risk scoring. A non-nil
	// error means the check could not be performed at all.
	Verify(ctx context.Context, secret, token, remoteIP string) (bool, error)
}

// Client is the HTTP implementation of Verifier.
type Client struct {
	httpClient *http.Client
	verifyURL  string
	logger     zerolog.Logger
}

func NewClient(verifyURL string, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		verifyURL:  verifyURL,
		logger:     logger,
	}
}

// verifyResponse is the subset of the provider's answer we care about.
type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify performs a single verification attempt. No retries.
func (c *Client) Verify(ctx context.Context, secret, token, remoteIP string) (bool, error) {
	form := url.Values{}
	form.Set("secret", secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("%w: %v", mailerr.ErrVerificationService, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", mailerr.ErrVerificationService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%w: %v", mailerr.ErrVerificationService, err)
	}

	var result verifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("%w: unparseable response", mailerr.ErrVerificationService)
	}

	if !result.Success {
		c.logger.Warn().Strs("errorCodes", result.ErrorCodes).Msg("CAPTCHA verification rejected")
		return false, nil
	}
	return true, nil
}
