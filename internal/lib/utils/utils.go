// Package utils contains small helper functions used across the project.
//
// These are usually generic helpers that don't belong to a specific domain.
package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// MaskEmail hides most of the local part so addresses can be logged.
//
//	ursula_le_guin@gmail.com -> u***@gmail.com
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// SignMessage returns the hex HMAC-SHA256 of message under key.
func SignMessage(key, message string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyMessage reports whether tag is SignMessage(key, message), comparing
// in constant time.
func VerifyMessage(key, message, tag string) bool {
	got, err := hex.DecodeString(tag)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hmac.Equal(got, mac.Sum(nil))
}
