package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deppfellow/newsletter/internal/domain"
	"github.com/deppfellow/newsletter/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://127.0.0.1:8000"

func newSubscriber(t *testing.T) domain.NewSubscriber {
	t.Helper()
	sub, err := domain.ParseNewSubscriber("ursula_le_guin@gmail.com", "le guin")
	require.NoError(t, err)
	return sub
}

func tokenFromLink(t *testing.T, link string) domain.SubscriptionToken {
	t.Helper()
	prefix := testBaseURL + ConfirmPath + "?subscription_token="
	require.True(t, strings.HasPrefix(link, prefix), link)
	token, err := domain.ParseSubscriptionToken(strings.TrimPrefix(link, prefix))
	require.NoError(t, err)
	return token
}

func TestSubscribe_NewSubscriberGetsConfirmationLink(t *testing.T) {
	store := newFakeSubscriptionStore()
	mailer := &fakeMailer{}
	svc := NewSubscriptionService(store, mailer, mailer, metrics.New(), testBaseURL)

	require.NoError(t, svc.Subscribe(context.Background(), newSubscriber(t)))

	require.Len(t, mailer.confirmations, 1)
	assert.Equal(t, "ursula_le_guin@gmail.com", mailer.confirmations[0].To)
	assert.Equal(t, "le guin", mailer.confirmations[0].Name)

	token := tokenFromLink(t, mailer.confirmations[0].Link)
	id, err := store.SubscriberIDByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingConfirmation, store.subscribers[id].Status)
}

func TestSubscribe_PendingSubscriberReusesToken(t *testing.T) {
	store := newFakeSubscriptionStore()
	mailer := &fakeMailer{}
	svc := NewSubscriptionService(store, mailer, nil, nil, testBaseURL)

	require.NoError(t, svc.Subscribe(context.Background(), newSubscriber(t)))
	require.NoError(t, svc.Subscribe(context.Background(), newSubscriber(t)))

	require.Len(t, mailer.confirmations, 2)
	assert.Equal(t, mailer.confirmations[0].Link, mailer.confirmations[1].Link)
	assert.Len(t, store.subscribers, 1)
}

func TestSubscribe_PendingWithoutTokenGetsNewOne(t *testing.T) {
	store := newFakeSubscriptionStore()
	store.add("ursula_le_guin@gmail.com", "le guin", domain.StatusPendingConfirmation)
	mailer := &fakeMailer{}
	svc := NewSubscriptionService(store, mailer, nil, nil, testBaseURL)

	require.NoError(t, svc.Subscribe(context.Background(), newSubscriber(t)))

	require.Len(t, mailer.confirmations, 1)
	token := tokenFromLink(t, mailer.confirmations[0].Link)
	_, err := store.SubscriberIDByToken(context.Background(), token)
	assert.NoError(t, err)
}

func TestSubscribe_ConfirmedSubscriberIsNotEmailed(t *testing.T) {
	store := newFakeSubscriptionStore()
	store.add("ursula_le_guin@gmail.com", "le guin", domain.StatusConfirmed)
	mailer := &fakeMailer{}
	svc := NewSubscriptionService(store, mailer, nil, nil, testBaseURL)

	require.NoError(t, svc.Subscribe(context.Background(), newSubscriber(t)))
	assert.Empty(t, mailer.confirmations)
}

func TestSubscribe_EmailFailureKeepsRows(t *testing.T) {
	store := newFakeSubscriptionStore()
	boom := errors.New("email api down")
	svc := NewSubscriptionService(store, &fakeMailer{err: boom}, nil, nil, testBaseURL)

	err := svc.Subscribe(context.Background(), newSubscriber(t))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, store.subscribers, 1)
	assert.Len(t, store.tokens, 1)
}

func TestSubscribe_StoreFailure(t *testing.T) {
	store := newFakeSubscriptionStore()
	store.err = errors.New("connection refused")
	mailer := &fakeMailer{}
	svc := NewSubscriptionService(store, mailer, nil, nil, testBaseURL)

	assert.Error(t, svc.Subscribe(context.Background(), newSubscriber(t)))
	assert.Empty(t, mailer.confirmations)
}

func TestConfirm(t *testing.T) {
	store := newFakeSubscriptionStore()
	mailer := &fakeMailer{}
	svc := NewSubscriptionService(store, mailer, mailer, metrics.New(), testBaseURL)

	require.NoError(t, svc.Subscribe(context.Background(), newSubscriber(t)))
	token := tokenFromLink(t, mailer.confirmations[0].Link)

	require.NoError(t, svc.Confirm(context.Background(), token))
	require.NoError(t, svc.Confirm(context.Background(), token))

	sub, err := store.FindByEmail(context.Background(), "ursula_le_guin@gmail.com")
	require.NoError(t, err)
	assert.True(t, sub.IsConfirmed())
	assert.Equal(t, []string{"ursula_le_guin@gmail.com", "ursula_le_guin@gmail.com"}, mailer.welcomes)
}

func TestConfirm_UnknownToken(t *testing.T) {
	svc := NewSubscriptionService(newFakeSubscriptionStore(), &fakeMailer{}, nil, nil, testBaseURL)

	token, err := domain.NewSubscriptionToken()
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Confirm(context.Background(), token), ErrUnknownToken)
}

func TestConfirm_WelcomeFailureIsNotFatal(t *testing.T) {
	store := newFakeSubscriptionStore()
	mailer := &fakeMailer{}
	svc := NewSubscriptionService(store, mailer, &fakeMailer{err: errors.New("redis down")}, nil, testBaseURL)

	require.NoError(t, svc.Subscribe(context.Background(), newSubscriber(t)))
	token := tokenFromLink(t, mailer.confirmations[0].Link)

	assert.NoError(t, svc.Confirm(context.Background(), token))
}
