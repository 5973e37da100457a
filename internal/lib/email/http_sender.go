package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/deppfellow/newsletter/internal/config"
)

// HTTPSender talks to an email API exposing `POST {base_url}/mail/send`
// with a bearer token.
type HTTPSender struct {
	httpClient  *http.Client
	baseURL     string
	sender      string
	senderName  string
	bearerToken string
}

func NewHTTPSender(cfg config.EmailConfig) *HTTPSender {
	return &HTTPSender{
		httpClient:  &http.Client{Timeout: cfg.Timeout()},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		sender:      cfg.SenderEmail,
		senderName:  cfg.SenderName,
		bearerToken: cfg.AuthorizationToken,
	}
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type personalization struct {
	To []address `json:"to"`
}

type sendRequest struct {
	From             address           `json:"from"`
	ReplyTo          address           `json:"reply_to"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
	Personalizations []personalization `json:"personalizations"`
}

// APIError is returned when the email API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("email API responded with status %d: %s", e.StatusCode, e.Body)
}

func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	from := address{Email: s.sender, Name: s.senderName}

	body, err := json.Marshal(sendRequest{
		From:    from,
		ReplyTo: from,
		Subject: msg.Subject,
		Content: []content{
			{Type: "text/html", Value: msg.HTML},
			{Type: "text/plain", Value: msg.Text},
		},
		Personalizations: []personalization{
			{To: []address{{Email: msg.To}}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
