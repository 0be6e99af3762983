package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"goldloan-backend/internal/logger"
)

type mailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// EmailSink mails each message to the configured operators through SendGrid.
// Sends happen in the background; Wait blocks until in-flight sends finish.
type EmailSink struct {
	client     mailSender
	fromEmail  string
	fromName   string
	recipients []string
	wg         sync.WaitGroup
}

func NewEmailSink(apiKey, fromEmail, fromName string, recipients []string) *EmailSink {
	return newEmailSink(sendgrid.NewSendClient(apiKey), fromEmail, fromName, recipients)
}

func newEmailSink(client mailSender, fromEmail, fromName string, recipients []string) *EmailSink {
	return &EmailSink{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		recipients: recipients,
	}
}

func (s *EmailSink) Publish(ctx context.Context, message string) {
	if len(s.recipients) == 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.send(message); err != nil {
			logger.Error("Failed to email notification", "error", err, "recipients", len(s.recipients))
		}
	}()
}

// Wait blocks until every pending send has completed.
func (s *EmailSink) Wait() {
	s.wg.Wait()
}

func (s *EmailSink) send(message string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	m := mail.NewV3Mail()
	m.SetFrom(from)
	m.Subject = "Gold loan ledger: " + truncate(message, 60)

	p := mail.NewPersonalization()
	for _, to := range s.recipients {
		p.AddTos(mail.NewEmail("", to))
	}
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/plain", message))

	logger.ExternalServiceCall("sendgrid", "send", "recipients", len(s.recipients))
	response, err := s.client.Send(m)
	if err != nil {
		err = fmt.Errorf("failed to send email: %w", err)
	} else if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
