// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - You enqueue tasks (producer) using asynq.Client.
//   - A server runs workers that process those tasks (consumer) using asynq.Server.
//
// Two task types exist: the welcome email sent after a subscription is
// confirmed, and one delivery of a newsletter issue to one subscriber.
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/newsletter/internal/config"
	"github.com/deppfellow/newsletter/internal/metrics"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Mailer is the part of email.Client the task handlers need.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, to, name string) error
	SendNewsletterIssue(ctx context.Context, to, title, html, text string) error
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client *asynq.Client
	server *asynq.Server

	mailer  Mailer
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Queue weights give "critical" tasks more worker share:
//
//	critical: 6, default: 3, low: 1
func NewJobService(logger *zerolog.Logger, cfg *config.Config, mailer Mailer, m *metrics.Metrics) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
		},
	)

	return &JobService{
		Client:  asynq.NewClient(redisOpt),
		server:  server,
		mailer:  mailer,
		metrics: m,
		logger:  logger,
	}
}

// Start registers task handlers and starts the worker server. It does not
// block; workers run until Stop.
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(j.mux()); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}

	return nil
}

func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcome, j.handleWelcomeEmailTask)
	mux.HandleFunc(TaskNewsletterIssue, j.handleNewsletterIssueTask)
	return mux
}

// Stop waits for in-flight tasks and closes the enqueue client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}

// EnqueueWelcomeEmail schedules the welcome email for a confirmed subscriber.
func (j *JobService) EnqueueWelcomeEmail(ctx context.Context, to, name string) error {
	task, err := NewWelcomeEmailTask(to, name)
	if err != nil {
		return err
	}

	return j.enqueue(ctx, task)
}

// EnqueueNewsletterIssue schedules one delivery of an issue.
func (j *JobService) EnqueueNewsletterIssue(ctx context.Context, to, title, html, text string) error {
	task, err := NewNewsletterIssueTask(to, title, html, text)
	if err != nil {
		return err
	}

	return j.enqueue(ctx, task)
}

func (j *JobService) enqueue(ctx context.Context, task *asynq.Task) error {
	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", task.Type(), err)
	}

	j.logger.Debug().
		Str("type", task.Type()).
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("task enqueued")

	return nil
}
