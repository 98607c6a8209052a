package service

import "mailgate/internal/api/mailer"

// assembleEmails produces one outgoing email per recipient. Pure function
// of its inputs.
func assembleEmails(req MailRequest, sender string) []mailer.Email {
	emails := make([]mailer.Email, 0, len(req.Recipients))
	for _, recipient := range req.Recipients {
		emails = append(emails, mailer.Email{
			Subject:   req.Subject,
			Sender:    sender,
			Recipient: recipient,
			PlainBody: req.BodyPlain,
			HTMLBody:  req.BodyHTML,
			ReplyTo:   req.ReplyTo,
		})
	}
	return emails
}
