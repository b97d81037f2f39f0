package email

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

// MailerSendProvider реализует Provider поверх MailerSend API
type MailerSendProvider struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSendProvider(apiKey, fromName, fromEmail string) *MailerSendProvider {
	p := &MailerSendProvider{
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
	if apiKey != "" {
		p.client = mailersend.NewMailersend(apiKey)
	}
	return p
}

func (p *MailerSendProvider) Send(email *Email) error {
	if err := p.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	recipients := make([]mailersend.Recipient, 0, len(email.To))
	for _, to := range email.To {
		recipients = append(recipients, mailersend.Recipient{Email: to})
	}

	message := p.client.Email.NewMessage()
	message.SetFrom(p.from)
	message.SetRecipients(recipients)
	message.SetSubject(email.Subject)
	message.SetHTML(email.HTMLBody)
	message.SetText(email.Body)

	_, err := p.client.Email.Send(ctx, message)
	return err
}

func (p *MailerSendProvider) SendTemplate(to string, templateName string, data TemplateData) error {
	subject, html, err := Render(templateName, data)
	if err != nil {
		return err
	}

	return p.Send(&Email{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: html,
	})
}

func (p *MailerSendProvider) Validate() error {
	if p.client == nil {
		return fmt.Errorf("mailersend api key is not configured")
	}
	if p.from.Email == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

func (p *MailerSendProvider) Close() error {
	return nil
}
