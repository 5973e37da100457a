// Package email provides an email sending client.
//
// Delivery goes through a Sender. Two are available:
//   - HTTPSender posts to a SendGrid-style `/mail/send` endpoint (the default)
//   - ResendSender uses the Resend API (resend-go)
//
// Client renders the embedded templates and hands the result to the Sender.
package email

import (
	"context"
	"fmt"

	"github.com/deppfellow/newsletter/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Message is a fully rendered email addressed to one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client renders templates and delivers them through a Sender.
type Client struct {
	sender    Sender
	templates *templateSet
	logger    *zerolog.Logger
}

// NewClient builds a Client whose Sender is picked by cfg.Email.Provider.
func NewClient(cfg *config.Config, logger *zerolog.Logger) (*Client, error) {
	var sender Sender

	switch cfg.Email.Provider {
	case config.EmailProviderResend:
		sender = NewResendSender(cfg.Email)
	case config.EmailProviderHTTP, "":
		sender = NewHTTPSender(cfg.Email)
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}

	return NewClientWithSender(sender, logger)
}

// NewClientWithSender builds a Client around an existing Sender.
func NewClientWithSender(sender Sender, logger *zerolog.Logger) (*Client, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	return &Client{
		sender:    sender,
		templates: templates,
		logger:    logger,
	}, nil
}

// SendEmail renders templateName with data and sends it to a single
// recipient.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data map[string]string) error {
	html, text, err := c.templates.render(templateName, data)
	if err != nil {
		return err
	}

	return c.Send(ctx, Message{
		To:      to,
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
}

// Send delivers msg as is.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if err := c.sender.Send(ctx, msg); err != nil {
		return errors.Wrapf(err, "failed to send email %q", msg.Subject)
	}

	c.logger.Debug().
		Str("subject", msg.Subject).
		Msg("email sent")

	return nil
}
