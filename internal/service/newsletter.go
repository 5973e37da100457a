package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/newsletter/internal/config"
	"github.com/deppfellow/newsletter/internal/domain"
	"github.com/deppfellow/newsletter/internal/lib/utils"
	"github.com/deppfellow/newsletter/internal/metrics"
	"github.com/rs/zerolog"
)

// ErrQueueUnavailable is returned when queue delivery is configured but no
// job queue is wired in.
var ErrQueueUnavailable = errors.New("newsletter delivery is set to queue but no job queue is available")

type SubscriberLister interface {
	ListConfirmed(ctx context.Context) ([]domain.Subscriber, error)
}

type IssueMailer interface {
	SendNewsletterIssue(ctx context.Context, to, title, html, text string) error
}

type IssueEnqueuer interface {
	EnqueueNewsletterIssue(ctx context.Context, to, title, html, text string) error
}

// Issue is one newsletter edition as submitted by a publisher.
type Issue struct {
	Title string
	HTML  string
	Text  string
}

// PublishResult counts what happened to each confirmed subscriber.
type PublishResult struct {
	Delivered int `json:"delivered"`
	Queued    int `json:"queued"`
	Skipped   int `json:"skipped"`
}

type NewsletterService struct {
	subscribers SubscriberLister
	mailer      IssueMailer
	queue       IssueEnqueuer
	metrics     *metrics.Metrics
	delivery    string
}

func NewNewsletterService(
	subscribers SubscriberLister,
	mailer IssueMailer,
	queue IssueEnqueuer,
	m *metrics.Metrics,
	delivery string,
) *NewsletterService {
	return &NewsletterService{
		subscribers: subscribers,
		mailer:      mailer,
		queue:       queue,
		metrics:     m,
		delivery:    delivery,
	}
}

// Publish sends issue to every confirmed subscriber. Stored addresses that
// no longer validate are skipped. In inline mode the first failed send
// aborts the publish; in queue mode one task per subscriber is enqueued.
func (s *NewsletterService) Publish(ctx context.Context, issue Issue) (*PublishResult, error) {
	logger := zerolog.Ctx(ctx)

	queued := s.delivery == config.DeliveryQueue
	if queued && s.queue == nil {
		logger.Error().Msg("queue delivery configured without a job queue, refusing to publish")
		return nil, ErrQueueUnavailable
	}

	subscribers, err := s.subscribers.ListConfirmed(ctx)
	if err != nil {
		return nil, err
	}

	result := &PublishResult{}

	for _, subscriber := range subscribers {
		email, err := domain.ParseSubscriberEmail(subscriber.Email)
		if err != nil {
			result.Skipped++
			s.metrics.Delivery(metrics.OutcomeSkipped)
			logger.Warn().
				Str("subscriber_id", subscriber.ID.String()).
				Msg("skipping a confirmed subscriber, stored contact details are invalid")
			continue
		}

		if queued {
			if err := s.queue.EnqueueNewsletterIssue(ctx, email.String(), issue.Title, issue.HTML, issue.Text); err != nil {
				return result, fmt.Errorf("failed to enqueue newsletter issue for %s: %w", utils.MaskEmail(email.String()), err)
			}
			result.Queued++
			s.metrics.Delivery(metrics.OutcomeQueued)
			continue
		}

		if err := s.mailer.SendNewsletterIssue(ctx, email.String(), issue.Title, issue.HTML, issue.Text); err != nil {
			s.metrics.Delivery(metrics.OutcomeFailed)
			return result, fmt.Errorf("failed to send newsletter issue to %s: %w", utils.MaskEmail(email.String()), err)
		}
		result.Delivered++
		s.metrics.Delivery(metrics.OutcomeSent)
	}

	s.metrics.NewsletterPublished()

	logger.Info().
		Int("delivered", result.Delivered).
		Int("queued", result.Queued).
		Int("skipped", result.Skipped).
		Msg("newsletter issue published")

	return result, nil
}
