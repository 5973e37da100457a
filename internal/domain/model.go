package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is a row of the subscriptions table. Email is kept as stored;
// rows written before validation tightened may not parse.
type Subscriber struct {
	ID           uuid.UUID          `db:"id"`
	Email        string             `db:"email"`
	Name         string             `db:"name"`
	SubscribedAt time.Time          `db:"subscribed_at"`
	Status       SubscriptionStatus `db:"status"`
}

// IsConfirmed reports whether the subscriber completed the confirmation step.
func (s Subscriber) IsConfirmed() bool {
	return s.Status == StatusConfirmed
}

// User is an account allowed to publish newsletters.
type User struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
