package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/newsletter/internal/domain"
	"github.com/deppfellow/newsletter/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	subscriptionsTable      = "subscriptions"
	subscriptionTokensTable = "subscription_tokens"
)

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) FindByEmail(ctx context.Context, email domain.SubscriberEmail) (*domain.Subscriber, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, subscribed_at, status
		FROM subscriptions
		WHERE email = @email
	`, pgx.NamedArgs{"email": email.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriber by email: %w", err)
	}

	return collectSubscriber(rows)
}

// CreatePending stores a pending subscriber and its first token in one
// transaction. Either both rows exist afterwards or neither does.
func (r *SubscriptionRepository) CreatePending(
	ctx context.Context,
	sub domain.NewSubscriber,
	token domain.SubscriptionToken,
) (*domain.Subscriber, error) {
	created := &domain.Subscriber{
		ID:           uuid.New(),
		Email:        sub.Email.String(),
		Name:         sub.Name.String(),
		SubscribedAt: time.Now().UTC(),
		Status:       domain.StatusPendingConfirmation,
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO subscriptions (id, email, name, subscribed_at, status)
			VALUES (@id, @email, @name, @subscribed_at, @status)
		`, pgx.NamedArgs{
			"id":            created.ID,
			"email":         created.Email,
			"name":          created.Name,
			"subscribed_at": created.SubscribedAt,
			"status":        string(created.Status),
		})
		if err != nil {
			return fmt.Errorf("failed to insert subscriber: %w", err)
		}

		return storeToken(ctx, tx, created.ID, token)
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// StoreToken adds another token for an existing subscriber.
func (r *SubscriptionRepository) StoreToken(ctx context.Context, subscriberID uuid.UUID, token domain.SubscriptionToken) error {
	return storeToken(ctx, r.pool, subscriberID, token)
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func storeToken(ctx context.Context, db execer, subscriberID uuid.UUID, token domain.SubscriptionToken) error {
	_, err := db.Exec(ctx, `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES (@token, @subscriber_id)
	`, pgx.NamedArgs{
		"token":         token.String(),
		"subscriber_id": subscriberID,
	})
	if err != nil {
		return fmt.Errorf("failed to store subscription token: %w", err)
	}
	return nil
}

// LatestToken returns the most recently issued token of a subscriber.
func (r *SubscriptionRepository) LatestToken(ctx context.Context, subscriberID uuid.UUID) (domain.SubscriptionToken, error) {
	var token string

	err := r.pool.QueryRow(ctx, `
		SELECT subscription_token
		FROM subscription_tokens
		WHERE subscriber_id = @subscriber_id
		ORDER BY created_at DESC
		LIMIT 1
	`, pgx.NamedArgs{"subscriber_id": subscriberID}).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", sqlerr.NotFound(subscriptionTokensTable)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query subscription token: %w", err)
	}

	return domain.SubscriptionToken(token), nil
}

func (r *SubscriptionRepository) SubscriberIDByToken(ctx context.Context, token domain.SubscriptionToken) (uuid.UUID, error) {
	var id uuid.UUID

	err := r.pool.QueryRow(ctx, `
		SELECT subscriber_id
		FROM subscription_tokens
		WHERE subscription_token = @token
	`, pgx.NamedArgs{"token": token.String()}).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, sqlerr.NotFound(subscriptionTokensTable)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to query subscriber by token: %w", err)
	}

	return id, nil
}

// Confirm marks the subscriber confirmed and returns the updated row.
// Confirming twice is harmless.
func (r *SubscriptionRepository) Confirm(ctx context.Context, subscriberID uuid.UUID) (*domain.Subscriber, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE subscriptions
		SET status = @status
		WHERE id = @id
		RETURNING id, email, name, subscribed_at, status
	`, pgx.NamedArgs{
		"id":     subscriberID,
		"status": string(domain.StatusConfirmed),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm subscriber: %w", err)
	}

	return collectSubscriber(rows)
}

// ListConfirmed returns every confirmed subscriber, oldest first.
func (r *SubscriptionRepository) ListConfirmed(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, subscribed_at, status
		FROM subscriptions
		WHERE status = @status
		ORDER BY subscribed_at
	`, pgx.NamedArgs{"status": string(domain.StatusConfirmed)})
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmed subscribers: %w", err)
	}

	subscribers, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Subscriber])
	if err != nil {
		return nil, fmt.Errorf("failed to collect confirmed subscribers: %w", err)
	}

	return subscribers, nil
}

func collectSubscriber(rows pgx.Rows) (*domain.Subscriber, error) {
	subscriber, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[domain.Subscriber])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound(subscriptionsTable)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect subscriber: %w", err)
	}
	return subscriber, nil
}
