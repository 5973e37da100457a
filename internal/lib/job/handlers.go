package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/newsletter/internal/lib/utils"
	"github.com/deppfellow/newsletter/internal/metrics"
	"github.com/hibiken/asynq"
)

func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A payload that cannot be decoded will never succeed.
		return fmt.Errorf("failed to unmarshal welcome email payload: %v: %w", err, asynq.SkipRetry)
	}

	logger := j.logger.With().
		Str("type", "welcome").
		Str("to", utils.MaskEmail(p.To)).
		Logger()

	logger.Info().Msg("Processing welcome email task")

	if err := j.mailer.SendWelcomeEmail(ctx, p.To, p.Name); err != nil {
		logger.Error().Err(err).Msg("Failed to send welcome email")
		return err
	}

	logger.Info().Msg("Successfully sent welcome email")

	return nil
}

func (j *JobService) handleNewsletterIssueTask(ctx context.Context, t *asynq.Task) error {
	var p NewsletterIssuePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal newsletter issue payload: %v: %w", err, asynq.SkipRetry)
	}

	logger := j.logger.With().
		Str("type", "newsletter_issue").
		Str("to", utils.MaskEmail(p.To)).
		Logger()

	if err := j.mailer.SendNewsletterIssue(ctx, p.To, p.Title, p.HTML, p.Text); err != nil {
		j.metrics.Delivery(metrics.OutcomeFailed)
		logger.Error().Err(err).Msg("Failed to deliver newsletter issue")
		return err
	}

	j.metrics.Delivery(metrics.OutcomeSent)
	logger.Debug().Msg("Delivered newsletter issue")

	return nil
}
