package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newTestClient(t *testing.T, sender Sender) *Client {
	t.Helper()
	logger := zerolog.Nop()
	client, err := NewClientWithSender(sender, &logger)
	require.NoError(t, err)
	return client
}

func TestClient_ConfirmationEmailContainsLinkOnce(t *testing.T) {
	sender := &recordingSender{}
	client := newTestClient(t, sender)

	link := PreviewData[TemplateConfirmation]["ConfirmationLink"]
	err := client.SendConfirmationEmail(context.Background(), "ursula@example.com", "Ursula", link)
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "ursula@example.com", msg.To)
	assert.Equal(t, 1, strings.Count(msg.HTML, link))
	assert.Equal(t, 1, strings.Count(msg.Text, link))
	assert.Contains(t, msg.HTML, "Hi Ursula")
}

func TestClient_TemplatesRenderWithPreviewData(t *testing.T) {
	client := newTestClient(t, &recordingSender{})

	for name, data := range PreviewData {
		t.Run(string(name), func(t *testing.T) {
			html, text, err := client.templates.render(name, data)
			require.NoError(t, err)
			assert.NotEmpty(t, html)
			assert.NotEmpty(t, text)
			assert.NotContains(t, html, "<no value>")
			assert.NotContains(t, text, "<no value>")
		})
	}
}

func TestClient_EscapesNameInHTML(t *testing.T) {
	sender := &recordingSender{}
	client := newTestClient(t, sender)

	require.NoError(t, client.SendWelcomeEmail(context.Background(), "a@b.io", "<b>bold</b>"))
	assert.NotContains(t, sender.sent[0].HTML, "<b>bold</b>")
}

func TestClient_NewsletterIssuePassesBodiesThrough(t *testing.T) {
	sender := &recordingSender{}
	client := newTestClient(t, sender)

	err := client.SendNewsletterIssue(context.Background(), "a@b.io", "Issue", "<p>body</p>", "body")
	require.NoError(t, err)
	assert.Equal(t, Message{To: "a@b.io", Subject: "Issue", HTML: "<p>body</p>", Text: "body"}, sender.sent[0])
}

func TestClient_WrapsSenderError(t *testing.T) {
	boom := errors.New("boom")
	client := newTestClient(t, &recordingSender{err: boom})

	err := client.SendWelcomeEmail(context.Background(), "a@b.io", "Ursula")
	assert.ErrorIs(t, err, boom)
}

func TestClient_UnknownTemplate(t *testing.T) {
	client := newTestClient(t, &recordingSender{})

	err := client.SendEmail(context.Background(), "a@b.io", "x", Template("missing"), nil)
	assert.Error(t, err)
}
