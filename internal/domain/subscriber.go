package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rivo/uniseg"
)

// MaxNameLength is measured in grapheme clusters, so "å" counts once
// however it is encoded.
const MaxNameLength = 256

// forbiddenNameCharacters could be used to smuggle markup or paths into
// places the name is rendered.
const forbiddenNameCharacters = `/()"<>\{}`

var (
	ErrEmptyName         = errors.New("name must not be empty")
	ErrNameTooLong       = fmt.Errorf("name must not exceed %d characters", MaxNameLength)
	ErrNameForbiddenChar = fmt.Errorf("name must not contain any of %s", forbiddenNameCharacters)
	ErrInvalidEmail      = errors.New("email must be a valid email address")
)

var validate = validator.New()

// SubscriberName is a trimmed, non-empty, display-safe name.
type SubscriberName string

// ParseSubscriberName validates raw and returns it trimmed.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	name := strings.TrimSpace(raw)

	switch {
	case name == "":
		return "", ErrEmptyName
	case uniseg.GraphemeClusterCount(name) > MaxNameLength:
		return "", ErrNameTooLong
	case strings.ContainsAny(name, forbiddenNameCharacters):
		return "", ErrNameForbiddenChar
	}

	return SubscriberName(name), nil
}

func (n SubscriberName) String() string {
	return string(n)
}

// SubscriberEmail is a syntactically valid email address.
type SubscriberEmail string

// ParseSubscriberEmail validates raw with the same rule request payloads use.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	email := strings.TrimSpace(raw)
	if err := validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return SubscriberEmail(email), nil
}

func (e SubscriberEmail) String() string {
	return string(e)
}

// NewSubscriber is a subscription request that passed validation.
type NewSubscriber struct {
	Email SubscriberEmail
	Name  SubscriberName
}

// ParseNewSubscriber validates both fields, reporting the email error first.
func ParseNewSubscriber(email, name string) (NewSubscriber, error) {
	parsedEmail, err := ParseSubscriberEmail(email)
	if err != nil {
		return NewSubscriber{}, err
	}

	parsedName, err := ParseSubscriberName(name)
	if err != nil {
		return NewSubscriber{}, err
	}

	return NewSubscriber{Email: parsedEmail, Name: parsedName}, nil
}

// SubscriptionStatus is the lifecycle state stored in subscriptions.status.
type SubscriptionStatus string

const (
	StatusPendingConfirmation SubscriptionStatus = "pending_confirmation"
	StatusConfirmed           SubscriptionStatus = "confirmed"
)
