package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridProvider struct {
	apiKey   string
	from     string
	fromName string
}

func NewSendGrid(apiKey, from, fromName string) *SendGridProvider {
	return &SendGridProvider{apiKey: apiKey, from: from, fromName: fromName}
}

func (p *SendGridProvider) Send(ctx context.Context, to string, subject string, htmlBody string) error {
	if p.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(p.fromName, p.from),
		subject,
		mail.NewEmail("", to),
		"",
		htmlBody,
	)

	client := sendgrid.NewSendClient(p.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}
	return nil
}
