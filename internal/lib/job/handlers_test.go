package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/deppfellow/newsletter/internal/metrics"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	welcomes []WelcomeEmailPayload
	issues   []NewsletterIssuePayload
	err      error
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, to, name string) error {
	if m.err != nil {
		return m.err
	}
	m.welcomes = append(m.welcomes, WelcomeEmailPayload{To: to, Name: name})
	return nil
}

func (m *fakeMailer) SendNewsletterIssue(_ context.Context, to, title, html, text string) error {
	if m.err != nil {
		return m.err
	}
	m.issues = append(m.issues, NewsletterIssuePayload{To: to, Title: title, HTML: html, Text: text})
	return nil
}

func newTestJobService(mailer Mailer) *JobService {
	logger := zerolog.Nop()
	return &JobService{mailer: mailer, metrics: metrics.New(), logger: &logger}
}

func TestNewWelcomeEmailTask(t *testing.T) {
	task, err := NewWelcomeEmailTask("ursula@example.com", "Ursula")
	require.NoError(t, err)

	assert.Equal(t, TaskWelcome, task.Type())

	var p WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, WelcomeEmailPayload{To: "ursula@example.com", Name: "Ursula"}, p)
}

func TestHandleWelcomeEmailTask(t *testing.T) {
	mailer := &fakeMailer{}
	j := newTestJobService(mailer)

	task, err := NewWelcomeEmailTask("ursula@example.com", "Ursula")
	require.NoError(t, err)

	require.NoError(t, j.handleWelcomeEmailTask(context.Background(), task))
	assert.Equal(t, []WelcomeEmailPayload{{To: "ursula@example.com", Name: "Ursula"}}, mailer.welcomes)
}

func TestHandleWelcomeEmailTask_SendFailureIsRetried(t *testing.T) {
	boom := errors.New("boom")
	j := newTestJobService(&fakeMailer{err: boom})

	task, err := NewWelcomeEmailTask("ursula@example.com", "Ursula")
	require.NoError(t, err)

	err = j.handleWelcomeEmailTask(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleTasks_BadPayloadSkipsRetry(t *testing.T) {
	j := newTestJobService(&fakeMailer{})

	err := j.handleWelcomeEmailTask(context.Background(), asynq.NewTask(TaskWelcome, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = j.handleNewsletterIssueTask(context.Background(), asynq.NewTask(TaskNewsletterIssue, []byte("nope")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleNewsletterIssueTask(t *testing.T) {
	mailer := &fakeMailer{}
	j := newTestJobService(mailer)

	task, err := NewNewsletterIssueTask("ursula@example.com", "Issue #1", "<p>hi</p>", "hi")
	require.NoError(t, err)
	assert.Equal(t, TaskNewsletterIssue, task.Type())

	require.NoError(t, j.handleNewsletterIssueTask(context.Background(), task))
	require.Len(t, mailer.issues, 1)
	assert.Equal(t, NewsletterIssuePayload{To: "ursula@example.com", Title: "Issue #1", HTML: "<p>hi</p>", Text: "hi"}, mailer.issues[0])
}

func TestMux_RoutesBothTaskTypes(t *testing.T) {
	mailer := &fakeMailer{}
	j := newTestJobService(mailer)
	mux := j.mux()

	welcome, err := NewWelcomeEmailTask("a@b.io", "A")
	require.NoError(t, err)
	issue, err := NewNewsletterIssueTask("a@b.io", "T", "<p>h</p>", "h")
	require.NoError(t, err)

	require.NoError(t, mux.ProcessTask(context.Background(), welcome))
	require.NoError(t, mux.ProcessTask(context.Background(), issue))

	assert.Len(t, mailer.welcomes, 1)
	assert.Len(t, mailer.issues, 1)
}
