package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

const (
	// Task type names stored in Redis; asynq routes on them.
	TaskWelcome         = "email:welcome"
	TaskNewsletterIssue = "email:newsletter_issue"
)

// WelcomeEmailPayload is the JSON payload for TaskWelcome.
type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

// NewsletterIssuePayload is the JSON payload for TaskNewsletterIssue.
type NewsletterIssuePayload struct {
	To    string `json:"to"`
	Title string `json:"title"`
	HTML  string `json:"html"`
	Text  string `json:"text"`
}

// NewWelcomeEmailTask retries up to 3 times with a 30s timeout per attempt.
func NewWelcomeEmailTask(to, name string) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{
		To:   to,
		Name: name,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	), nil
}

// NewNewsletterIssueTask goes to the low queue so confirmations are not
// starved by a large issue.
func NewNewsletterIssueTask(to, title, html, text string) (*asynq.Task, error) {
	payload, err := json.Marshal(NewsletterIssuePayload{
		To:    to,
		Title: title,
		HTML:  html,
		Text:  text,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskNewsletterIssue,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(QueueLow),
		asynq.Timeout(30*time.Second),
	), nil
}
