package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deppfellow/newsletter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPSender(baseURL string, timeout time.Duration) *HTTPSender {
	return NewHTTPSender(config.EmailConfig{
		BaseURL:             baseURL,
		SenderEmail:         "newsletter@example.com",
		SenderName:          "Newsletter",
		AuthorizationToken:  "my-secret-token",
		TimeoutMilliseconds: int(timeout / time.Millisecond),
	})
}

func TestHTTPSender_SendsExpectedRequest(t *testing.T) {
	var (
		gotPath   string
		gotMethod string
		gotAuth   string
		gotBody   map[string]any
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := newTestHTTPSender(server.URL+"/", time.Second)
	err := sender.Send(context.Background(), Message{
		To:      "ursula@example.com",
		Subject: "Issue #1",
		HTML:    "<p>hello</p>",
		Text:    "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "/mail/send", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer my-secret-token", gotAuth)

	for _, key := range []string{"from", "reply_to", "subject", "content", "personalizations"} {
		assert.Contains(t, gotBody, key)
	}
	assert.Equal(t, "Issue #1", gotBody["subject"])
	assert.Equal(t, "newsletter@example.com", gotBody["from"].(map[string]any)["email"])

	parts := gotBody["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "text/html", parts[0].(map[string]any)["type"])
	assert.Equal(t, "<p>hello</p>", parts[0].(map[string]any)["value"])
	assert.Equal(t, "text/plain", parts[1].(map[string]any)["type"])

	to := gotBody["personalizations"].([]any)[0].(map[string]any)["to"].([]any)[0].(map[string]any)
	assert.Equal(t, "ursula@example.com", to["email"])
}

func TestHTTPSender_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	err := newTestHTTPSender(server.URL, time.Second).Send(context.Background(), Message{To: "a@b.io"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Body)
}

func TestHTTPSender_TimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	err := newTestHTTPSender(server.URL, 100*time.Millisecond).Send(context.Background(), Message{To: "a@b.io"})

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
