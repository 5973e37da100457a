package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// TokenLength is the number of characters in a subscription token.
const TokenLength = 25

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var ErrInvalidToken = errors.New("subscription token is malformed")

// SubscriptionToken is the secret embedded in a confirmation link.
type SubscriptionToken string

// NewSubscriptionToken draws TokenLength alphanumeric characters from
// crypto/rand.
func NewSubscriptionToken() (SubscriptionToken, error) {
	alphabetSize := big.NewInt(int64(len(tokenAlphabet)))
	token := make([]byte, TokenLength)

	for i := range token {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate subscription token: %w", err)
		}
		token[i] = tokenAlphabet[n.Int64()]
	}

	return SubscriptionToken(token), nil
}

// ParseSubscriptionToken rejects anything that could not have come from
// NewSubscriptionToken, so malformed input never reaches the database.
func ParseSubscriptionToken(raw string) (SubscriptionToken, error) {
	if len(raw) != TokenLength {
		return "", ErrInvalidToken
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return "", ErrInvalidToken
		}
	}
	return SubscriptionToken(raw), nil
}

func (t SubscriptionToken) String() string {
	return string(t)
}
