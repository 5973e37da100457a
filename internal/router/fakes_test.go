package router

import (
	"context"
	"sync"
	"time"

	"github.com/deppfellow/newsletter/internal/domain"
	"github.com/deppfellow/newsletter/internal/lib/email"
	"github.com/deppfellow/newsletter/internal/sqlerr"
	"github.com/google/uuid"
)

type memorySubscriptions struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]*domain.Subscriber
	tokens      map[domain.SubscriptionToken]uuid.UUID
}

func newMemorySubscriptions() *memorySubscriptions {
	return &memorySubscriptions{
		subscribers: make(map[uuid.UUID]*domain.Subscriber),
		tokens:      make(map[domain.SubscriptionToken]uuid.UUID),
	}
}

func (m *memorySubscriptions) add(email, name string, status domain.SubscriptionStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New()
	m.subscribers[id] = &domain.Subscriber{ID: id, Email: email, Name: name, Status: status, SubscribedAt: time.Now()}
}

func (m *memorySubscriptions) byEmail(email string) *domain.Subscriber {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subscribers {
		if sub.Email == email {
			copied := *sub
			return &copied
		}
	}
	return nil
}

func (m *memorySubscriptions) FindByEmail(_ context.Context, email domain.SubscriberEmail) (*domain.Subscriber, error) {
	if sub := m.byEmail(email.String()); sub != nil {
		return sub, nil
	}
	return nil, sqlerr.NotFound("subscriptions")
}

func (m *memorySubscriptions) CreatePending(_ context.Context, sub domain.NewSubscriber, token domain.SubscriptionToken) (*domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := &domain.Subscriber{
		ID:           uuid.New(),
		Email:        sub.Email.String(),
		Name:         sub.Name.String(),
		Status:       domain.StatusPendingConfirmation,
		SubscribedAt: time.Now(),
	}
	m.subscribers[created.ID] = created
	m.tokens[token] = created.ID

	copied := *created
	return &copied, nil
}

func (m *memorySubscriptions) StoreToken(_ context.Context, subscriberID uuid.UUID, token domain.SubscriptionToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[token] = subscriberID
	return nil
}

func (m *memorySubscriptions) LatestToken(_ context.Context, subscriberID uuid.UUID) (domain.SubscriptionToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for token, id := range m.tokens {
		if id == subscriberID {
			return token, nil
		}
	}
	return "", sqlerr.NotFound("subscription_tokens")
}

func (m *memorySubscriptions) SubscriberIDByToken(_ context.Context, token domain.SubscriptionToken) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.tokens[token]; ok {
		return id, nil
	}
	return uuid.Nil, sqlerr.NotFound("subscription_tokens")
}

func (m *memorySubscriptions) Confirm(_ context.Context, subscriberID uuid.UUID) (*domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subscribers[subscriberID]
	if !ok {
		return nil, sqlerr.NotFound("subscriptions")
	}
	sub.Status = domain.StatusConfirmed

	copied := *sub
	return &copied, nil
}

func (m *memorySubscriptions) ListConfirmed(_ context.Context) ([]domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var confirmed []domain.Subscriber
	for _, sub := range m.subscribers {
		if sub.IsConfirmed() {
			confirmed = append(confirmed, *sub)
		}
	}
	return confirmed, nil
}

type memoryUsers struct {
	users map[string]*domain.User
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if user, ok := m.users[username]; ok {
		return user, nil
	}
	return nil, sqlerr.NotFound("users")
}

func (m *memoryUsers) Create(_ context.Context, username, passwordHash string) (*domain.User, error) {
	user := &domain.User{ID: uuid.New(), Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.users[username] = user
	return user, nil
}

type recordingSender struct {
	mu       sync.Mutex
	messages []email.Message
	err      error
}

func (r *recordingSender) Send(_ context.Context, msg email.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordingSender) sent() []email.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]email.Message(nil), r.messages...)
}
