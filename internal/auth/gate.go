// Package auth implements the credential gate that guards every translate endpoint.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/pricofy/translate-gateway/internal/domain"
)

// HeaderName is the request header carrying the caller's secret.
const HeaderName = "x-api-key"

// FailureMessage is the single message shown for every authentication failure.
const FailureMessage = "Authentication failed. Invalid or missing API key."

// Gate compares caller credentials against the one configured secret.
// It is immutable after construction and safe for concurrent use.
type Gate struct {
	digest [sha256.Size]byte
}

// NewGate creates a gate for the given secret.
func NewGate(secret string) *Gate {
	return &Gate{digest: sha256.Sum256([]byte(secret))}
}

// Check validates a credential. present reports whether the header was sent at all.
func (g *Gate) Check(credential string, present bool) error {
	// Hash first so the comparison takes the same time for every input length.
	got := sha256.Sum256([]byte(credential))
	match := subtle.ConstantTimeCompare(got[:], g.digest[:]) == 1

	if !present || credential == "" {
		return &domain.AuthenticationError{Reason: "missing credential"}
	}
	if !match {
		return &domain.AuthenticationError{Reason: "invalid credential"}
	}
	return nil
}
