package email

import "context"

// SendConfirmationEmail asks a new subscriber to follow confirmationLink.
func (c *Client) SendConfirmationEmail(ctx context.Context, to, name, confirmationLink string) error {
	// Data keys must match what the templates expect.
	data := map[string]string{
		"SubscriberName":   name,
		"ConfirmationLink": confirmationLink,
	}

	return c.SendEmail(ctx, to, "Welcome!", TemplateConfirmation, data)
}

// SendWelcomeEmail thanks a subscriber once the subscription is confirmed.
func (c *Client) SendWelcomeEmail(ctx context.Context, to, name string) error {
	data := map[string]string{
		"SubscriberName": name,
	}

	return c.SendEmail(ctx, to, "You're subscribed", TemplateWelcome, data)
}

// SendNewsletterIssue delivers a published issue. The bodies are authored by
// the publisher and sent unchanged.
func (c *Client) SendNewsletterIssue(ctx context.Context, to, title, html, text string) error {
	return c.Send(ctx, Message{
		To:      to,
		Subject: title,
		HTML:    html,
		Text:    text,
	})
}
