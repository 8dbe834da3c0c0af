package notifier

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/medflow/medsupply-backend/pkg/config"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MailSender is the part of *sendgrid.Client the notifier uses
type MailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

const emailPlain = `Hello,

Please deliver the following order{{if .OrderID}} ({{.OrderID}}){{end}}:

{{.MedicineName}}

Total quantity: {{.Quantity}}

Thank you.
`

var emailPlainTemplate = template.Must(template.New("reorder").Parse(emailPlain))

// SendGridNotifier emails the supplier through SendGrid
type SendGridNotifier struct {
	client   MailSender
	fromName string
	fromAddr string
	subject  string
}

// NewSendGridNotifier builds a notifier with a real SendGrid client
func NewSendGridNotifier(cfg *config.SendGridConfig) *SendGridNotifier {
	return NewSendGridNotifierWithClient(sendgrid.NewSendClient(cfg.APIKey), cfg)
}

// NewSendGridNotifierWithClient lets tests substitute the client
func NewSendGridNotifierWithClient(client MailSender, cfg *config.SendGridConfig) *SendGridNotifier {
	return &SendGridNotifier{
		client:   client,
		fromName: cfg.FromName,
		fromAddr: cfg.FromAddress,
		subject:  cfg.Subject,
	}
}

func (s *SendGridNotifier) Notify(ctx context.Context, n ReorderNotification) error {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(s.fromName, s.fromAddr))
	message.Subject = s.subject

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail("", n.Recipient))
	message.AddPersonalizations(personalization)

	textContent := &bytes.Buffer{}
	if err := emailPlainTemplate.Execute(textContent, n); err != nil {
		return fmt.Errorf("while templating plain-text email content: %w", err)
	}
	message.AddContent(mail.NewContent("text/plain", textContent.String()))

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("while sending mail through SendGrid: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2XX response while sending mail through SendGrid: %d %s", resp.StatusCode, resp.Body)
	}

	return nil
}
