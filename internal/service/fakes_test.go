package service

import (
	"context"
	"sync"
	"time"

	"github.com/deppfellow/newsletter/internal/domain"
	"github.com/deppfellow/newsletter/internal/sqlerr"
	"github.com/google/uuid"
)

// fakeSubscriptionStore keeps subscribers and tokens in memory.
type fakeSubscriptionStore struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]*domain.Subscriber
	tokens      map[domain.SubscriptionToken]uuid.UUID
	order       []domain.SubscriptionToken
	err         error
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{
		subscribers: make(map[uuid.UUID]*domain.Subscriber),
		tokens:      make(map[domain.SubscriptionToken]uuid.UUID),
	}
}

func (f *fakeSubscriptionStore) add(email, name string, status domain.SubscriptionStatus) *domain.Subscriber {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &domain.Subscriber{ID: uuid.New(), Email: email, Name: name, Status: status, SubscribedAt: time.Now()}
	f.subscribers[sub.ID] = sub
	return sub
}

func (f *fakeSubscriptionStore) FindByEmail(_ context.Context, email domain.SubscriberEmail) (*domain.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	for _, sub := range f.subscribers {
		if sub.Email == email.String() {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, sqlerr.NotFound("subscriptions")
}

func (f *fakeSubscriptionStore) CreatePending(_ context.Context, sub domain.NewSubscriber, token domain.SubscriptionToken) (*domain.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	created := &domain.Subscriber{
		ID:     uuid.New(),
		Email:  sub.Email.String(),
		Name:   sub.Name.String(),
		Status: domain.StatusPendingConfirmation,
	}
	f.subscribers[created.ID] = created
	f.tokens[token] = created.ID
	f.order = append(f.order, token)
	return created, nil
}

func (f *fakeSubscriptionStore) StoreToken(_ context.Context, subscriberID uuid.UUID, token domain.SubscriptionToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens[token] = subscriberID
	f.order = append(f.order, token)
	return nil
}

func (f *fakeSubscriptionStore) LatestToken(_ context.Context, subscriberID uuid.UUID) (domain.SubscriptionToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.order) - 1; i >= 0; i-- {
		if f.tokens[f.order[i]] == subscriberID {
			return f.order[i], nil
		}
	}
	return "", sqlerr.NotFound("subscription_tokens")
}

func (f *fakeSubscriptionStore) SubscriberIDByToken(_ context.Context, token domain.SubscriptionToken) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.tokens[token]
	if !ok {
		return uuid.Nil, sqlerr.NotFound("subscription_tokens")
	}
	return id, nil
}

func (f *fakeSubscriptionStore) Confirm(_ context.Context, subscriberID uuid.UUID) (*domain.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.subscribers[subscriberID]
	if !ok {
		return nil, sqlerr.NotFound("subscriptions")
	}
	sub.Status = domain.StatusConfirmed
	copied := *sub
	return &copied, nil
}

func (f *fakeSubscriptionStore) ListConfirmed(_ context.Context) ([]domain.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Subscriber
	for _, sub := range f.subscribers {
		if sub.IsConfirmed() {
			out = append(out, *sub)
		}
	}
	return out, nil
}

type sentConfirmation struct {
	To, Name, Link string
}

type sentIssue struct {
	To, Title, HTML, Text string
}

// fakeMailer records every email instead of sending it.
type fakeMailer struct {
	confirmations []sentConfirmation
	issues        []sentIssue
	welcomes      []string
	err           error
}

func (m *fakeMailer) SendConfirmationEmail(_ context.Context, to, name, link string) error {
	if m.err != nil {
		return m.err
	}
	m.confirmations = append(m.confirmations, sentConfirmation{To: to, Name: name, Link: link})
	return nil
}

func (m *fakeMailer) SendNewsletterIssue(_ context.Context, to, title, html, text string) error {
	if m.err != nil {
		return m.err
	}
	m.issues = append(m.issues, sentIssue{To: to, Title: title, HTML: html, Text: text})
	return nil
}

func (m *fakeMailer) EnqueueWelcomeEmail(_ context.Context, to, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.welcomes = append(m.welcomes, to)
	return nil
}

func (m *fakeMailer) EnqueueNewsletterIssue(ctx context.Context, to, title, html, text string) error {
	return m.SendNewsletterIssue(ctx, to, title, html, text)
}

type fakeUserStore struct {
	users map[string]*domain.User
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, sqlerr.NotFound("users")
	}
	return user, nil
}

func (f *fakeUserStore) Create(_ context.Context, username, passwordHash string) (*domain.User, error) {
	if f.users == nil {
		f.users = make(map[string]*domain.User)
	}
	user := &domain.User{ID: uuid.New(), Username: username, PasswordHash: passwordHash}
	f.users[username] = user
	return user, nil
}
