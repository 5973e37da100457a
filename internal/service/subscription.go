package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/newsletter/internal/domain"
	"github.com/deppfellow/newsletter/internal/lib/utils"
	"github.com/deppfellow/newsletter/internal/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ErrUnknownToken is returned by Confirm when no subscriber owns the token.
var ErrUnknownToken = errors.New("subscription token is not associated with any subscriber")

// ConfirmPath is the route confirmation links point at.
const ConfirmPath = "/subscriptions/confirm"

type SubscriptionStore interface {
	FindByEmail(ctx context.Context, email domain.SubscriberEmail) (*domain.Subscriber, error)
	CreatePending(ctx context.Context, sub domain.NewSubscriber, token domain.SubscriptionToken) (*domain.Subscriber, error)
	StoreToken(ctx context.Context, subscriberID uuid.UUID, token domain.SubscriptionToken) error
	LatestToken(ctx context.Context, subscriberID uuid.UUID) (domain.SubscriptionToken, error)
	SubscriberIDByToken(ctx context.Context, token domain.SubscriptionToken) (uuid.UUID, error)
	Confirm(ctx context.Context, subscriberID uuid.UUID) (*domain.Subscriber, error)
}

type ConfirmationMailer interface {
	SendConfirmationEmail(ctx context.Context, to, name, confirmationLink string) error
}

type WelcomeEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, to, name string) error
}

type SubscriptionService struct {
	store   SubscriptionStore
	mailer  ConfirmationMailer
	welcome WelcomeEnqueuer
	metrics *metrics.Metrics
	baseURL string
}

// NewSubscriptionService builds the service. welcome may be nil, in which
// case no welcome email is scheduled on confirmation.
func NewSubscriptionService(
	store SubscriptionStore,
	mailer ConfirmationMailer,
	welcome WelcomeEnqueuer,
	m *metrics.Metrics,
	baseURL string,
) *SubscriptionService {
	return &SubscriptionService{
		store:   store,
		mailer:  mailer,
		welcome: welcome,
		metrics: m,
		baseURL: baseURL,
	}
}

// Subscribe registers sub and emails a confirmation link.
//
//   - new email: subscriber and token are written in one transaction
//   - pending email: the stored token is reused and the link resent
//   - confirmed email: nothing happens
//
// A failed email returns an error; the stored rows are kept so the
// subscriber can simply try again.
func (s *SubscriptionService) Subscribe(ctx context.Context, sub domain.NewSubscriber) error {
	logger := zerolog.Ctx(ctx).With().
		Str("subscriber_email", utils.MaskEmail(sub.Email.String())).
		Logger()

	existing, err := s.store.FindByEmail(ctx, sub.Email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to look up subscriber: %w", err)
	}

	var token domain.SubscriptionToken

	switch {
	case existing == nil:
		token, err = domain.NewSubscriptionToken()
		if err != nil {
			return err
		}

		if _, err := s.store.CreatePending(ctx, sub, token); err != nil {
			return err
		}
		s.metrics.SubscriptionCreated()
		logger.Info().Msg("new subscriber stored")

	case existing.IsConfirmed():
		logger.Info().Msg("subscriber already confirmed, nothing to do")
		return nil

	default:
		token, err = s.pendingToken(ctx, existing.ID)
		if err != nil {
			return err
		}
		logger.Info().Msg("subscriber still pending, resending confirmation")
	}

	if err := s.mailer.SendConfirmationEmail(ctx, sub.Email.String(), sub.Name.String(), s.ConfirmationLink(token)); err != nil {
		s.metrics.ConfirmationEmail(metrics.OutcomeFailed)
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	s.metrics.ConfirmationEmail(metrics.OutcomeSent)

	return nil
}

// pendingToken returns the subscriber's latest token, issuing one if none
// is stored.
func (s *SubscriptionService) pendingToken(ctx context.Context, subscriberID uuid.UUID) (domain.SubscriptionToken, error) {
	token, err := s.store.LatestToken(ctx, subscriberID)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	token, err = domain.NewSubscriptionToken()
	if err != nil {
		return "", err
	}
	if err := s.store.StoreToken(ctx, subscriberID, token); err != nil {
		return "", err
	}
	return token, nil
}

// ConfirmationLink is the absolute URL mailed to a pending subscriber.
func (s *SubscriptionService) ConfirmationLink(token domain.SubscriptionToken) string {
	return s.baseURL + ConfirmPath + "?subscription_token=" + token.String()
}

// Confirm marks the token's subscriber as confirmed and schedules the
// welcome email. Scheduling failures are logged, not returned.
func (s *SubscriptionService) Confirm(ctx context.Context, token domain.SubscriptionToken) error {
	logger := zerolog.Ctx(ctx)

	subscriberID, err := s.store.SubscriberIDByToken(ctx, token)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUnknownToken
	}
	if err != nil {
		return fmt.Errorf("failed to look up subscription token: %w", err)
	}

	subscriber, err := s.store.Confirm(ctx, subscriberID)
	if err != nil {
		return err
	}
	s.metrics.SubscriptionConfirmed()

	logger.Info().
		Str("subscriber_id", subscriberID.String()).
		Msg("subscription confirmed")

	if s.welcome != nil {
		if err := s.welcome.EnqueueWelcomeEmail(ctx, subscriber.Email, subscriber.Name); err != nil {
			logger.Warn().Err(err).
				Str("subscriber_id", subscriberID.String()).
				Msg("failed to enqueue welcome email")
		}
	}

	return nil
}
