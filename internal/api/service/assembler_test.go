package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleEmails(t *testing.T) {
	req := MailRequest{
		Subject:    "Hi",
		Recipients: []string{"a@x.com", "b@x.com"},
		ReplyTo:    "visitor@elsewhere.example",
		BodyPlain:  "hello\nworld",
	}

	emails := assembleEmails(req, "noreply@acme.example")
	require.Len(t, emails, 2)

	for i, recipient := range req.Recipients {
		assert.Equal(t, recipient, emails[i].Recipient)
		assert.Equal(t, "Hi", emails[i].Subject)
		assert.Equal(t, "noreply@acme.example", emails[i].Sender)
		assert.Equal(t, "hello\nworld", emails[i].PlainBody)
		assert.Empty(t, emails[i].HTMLBody)
		assert.Equal(t, "visitor@elsewhere.example", emails[i].ReplyTo)
	}
}

func TestAssembleEmails_NoRecipients(t *testing.T) {
	emails := assembleEmails(MailRequest{Subject: "Hi"}, "noreply@acme.example")
	assert.Empty(t, emails)
}
