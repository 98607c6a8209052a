package endpoints

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mailgate"
	"mailgate/internal/api/handler/request"
	"mailgate/internal/api/handler/response"
	"mailgate/internal/api/mailerr"
	"mailgate/internal/api/service"
	"mailgate/pkg"
)

type mailHandler struct {
	mailService *service.MailService
	logger      zerolog.Logger
	config      mailgate.AppConfig
}

// MailHandler registers the contact-form route. In dev mode GET is
// aliased to the same handler for easier manual testing.
func MailHandler(router *graceful.Graceful, cfg mailgate.AppConfig, logger zerolog.Logger, mailService *service.MailService) {
	h := &mailHandler{
		mailService: mailService,
		logger:      logger,
		config:      cfg,
	}

	router.POST("/", h.send)
	if cfg.Mode == "dev" {
		router.GET("/", h.send)
	}
}

func (slf *mailHandler) send(c *gin.Context) {
	logger := slf.logger.With().Str("requestId", uuid.NewString()).Logger()

	form, err := buildMailForm(c)
	if err != nil {
		logger.Error().Err(err).Msg("Error parsing mail form")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	if err := slf.mailService.Process(c.Request.Context(), form); err != nil {
		status := mailerr.Status(err)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("site", form.Config).Msg("Error sending emails")
		} else {
			logger.Warn().Err(err).Str("site", form.Config).Msg("Request rejected")
		}
		c.JSON(status, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.Result{Message: "Emails sent."})
}

// buildMailForm normalizes the two accepted request shapes. Query
// parameters always win; a JSON payload fills the gaps, and any other
// body is carried verbatim as the message text.
func buildMailForm(c *gin.Context) (request.MailForm, error) {
	query := c.Request.URL.Query()

	form := request.MailForm{
		Config:     c.Query("config"),
		Response:   c.Query("response"),
		Subject:    c.Query("subject"),
		Recipients: c.Query("recipients"),
		Recipient:  c.Query("recipient"),
		Issuer:     c.Query("issuer"),
		RemoteIP:   c.Query("remoteip"),
		ReplyTo:    c.Query("reply_to"),
		Format:     c.Query("format"),
		HTMLFlag:   query.Has("html"),
		ClientIP:   c.ClientIP(),
	}

	// format=json means the body itself is template data, not a request
	// payload.
	if form.Format != service.FormatJSON && strings.HasPrefix(c.ContentType(), "application/json") {
		var payload request.MailPayload
		if err := pkg.ParseAndValidate(c, &payload); err != nil {
			return request.MailForm{}, err
		}
		mergePayload(&form, payload)
		return form, nil
	}

	body, err := c.GetRawData()
	if err != nil {
		return request.MailForm{}, err
	}
	form.Body = string(body)
	return form, nil
}

func mergePayload(form *request.MailForm, payload request.MailPayload) {
	if form.Config == "" {
		form.Config = payload.Config
	}
	if form.Response == "" {
		form.Response = payload.Response
	}
	if form.Subject == "" {
		form.Subject = payload.Subject
	}
	if form.Issuer == "" {
		form.Issuer = payload.Issuer
	}
	if form.RemoteIP == "" {
		form.RemoteIP = payload.RemoteIP
	}
	if form.ReplyTo == "" {
		form.ReplyTo = payload.ReplyTo
	}
	if form.Format == "" {
		form.Format = payload.Format
	}
	if form.Format == "" {
		form.Format = formatFromContentType(payload.ContentType)
	}
	form.RecipientsList = payload.Recipients
	form.Body = payload.Text
}

// formatFromContentType maps the JSON payload's contentType field onto a
// body format.
func formatFromContentType(contentType string) string {
	switch contentType {
	case "text/plain":
		return service.FormatText
	case "text/html", "application/xhtml+xml":
		return service.FormatHTML
	}
	return ""
}
