package request

// Mail form DTOs

// MailPayload is the JSON-body variant of a send request. Query string
// parameters take precedence over these fields when both are present.
type MailPayload struct {
	Config      string   `json:"config"`
	Response    string   `json:"response"`
	Subject     string   `json:"subject"`
	Recipients  []string `json:"recipients"`
	ReplyTo     string   `json:"replyTo" validate:"omitempty,email"`
	Issuer      string   `json:"issuer" validate:"omitempty,email"`
	RemoteIP    string   `json:"remoteip"`
	Text        string   `json:"text"`
	ContentType string   `json:"contentType" validate:"omitempty,oneof=text/plain text/html application/xhtml+xml"`
	Format      string   `json:"format" validate:"omitempty,oneof=text html json"`
}

// MailForm is the normalized view of one incoming send request, filled
// from the query string, the JSON payload, or both.
type MailForm struct {
	Config         string
	Response       string
	Subject        string
	Recipients     string   // comma-separated list from the query string
	RecipientsList []string // list form from a JSON payload
	Recipient      string   // deprecated singular parameter
	Issuer         string
	RemoteIP       string
	ReplyTo        string
	Format         string
	HTMLFlag       bool // deprecated "html" parameter was present
	Body           string
	ClientIP       string
}
