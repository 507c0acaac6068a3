// Package auth implements the challenge and response protocol that proves a
// caller controls the private key of the address sending a transaction.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/ledgerworks/blockchain/foundation/blockchain/signature"
)

// DefaultTTL is how long an issued challenge stays valid.
const DefaultTTL = 5 * time.Minute

// Set of errors the protocol can return. None of them are fatal.
var (
	ErrMissingField      = errors.New("missing field")
	ErrInvalidValue      = errors.New("value must be a positive number")
	ErrMissingChallenge  = errors.New("no challenge issued for sender")
	ErrExpiredChallenge  = errors.New("challenge expired")
	ErrMalformedAddress  = database.ErrMalformedAddress
	ErrSignatureLength   = signature.ErrSignatureLength
	ErrSignatureMismatch = errors.New("signature does not match sender")
)

// IsAuthError reports whether the error is one of the errors that must be
// reported to the caller without any detail.
func IsAuthError(err error) bool {
	switch {
	case errors.Is(err, ErrMissingChallenge),
		errors.Is(err, ErrExpiredChallenge),
		errors.Is(err, ErrSignatureLength),
		errors.Is(err, ErrSignatureMismatch),
		errors.Is(err, signature.ErrInvalidSignature):
		return true
	}

	return false
}

// =============================================================================

// Store represents the behavior required to keep the one time challenge
// bound to each sender. Take must remove the challenge whether or not it
// has expired.
type Store interface {
	Put(ctx context.Context, sender database.Address, token string, ttl time.Duration) error
	Take(ctx context.Context, sender database.Address) (string, error)
}

// Request represents a signed transaction request as it was submitted. The
// value is kept as the raw text since it's part of the signed message.
type Request struct {
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Value     string `json:"value"`
	Token     string `json:"nonce"`
	Signature string `json:"signature"`
}

// Message returns the text the sender is expected to sign.
func Message(sender string, receiver string, value string, token string) string {
	return sender + receiver + value + token
}

// Verified represents a request that passed authentication.
type Verified struct {
	Sender   database.Address
	Receiver database.Address
	Value    float64
}

// =============================================================================

// Authenticator issues challenges and verifies the signed responses.
type Authenticator struct {
	store Store
	ttl   time.Duration
}

// New constructs an authenticator using the specified store. A zero ttl
// uses the default.
func New(store Store, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Authenticator{
		store: store,
		ttl:   ttl,
	}
}

// TTL returns how long an issued challenge stays valid.
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// IssueChallenge generates a new random token and binds it to the sender,
// replacing any challenge previously issued for it.
func (a *Authenticator) IssueChallenge(ctx context.Context, sender string) (string, error) {
	if strings.TrimSpace(sender) == "" {
		return "", fmt.Errorf("%w: sender", ErrMissingField)
	}

	addr, err := database.ToAddress(sender)
	if err != nil {
		return "", err
	}

	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	if err := a.store.Put(ctx, addr, token, a.ttl); err != nil {
		return "", fmt.Errorf("store challenge: %w", err)
	}

	return token, nil
}

// Authenticate verifies the signature over the request against the
// challenge bound to the sender. The challenge is consumed by every
// attempt, successful or not.
func (a *Authenticator) Authenticate(ctx context.Context, req Request) (Verified, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"sender", req.Sender},
		{"receiver", req.Receiver},
		{"value", req.Value},
		{"nonce", req.Token},
		{"signature", req.Signature},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			return Verified{}, fmt.Errorf("%w: %s", ErrMissingField, field.name)
		}
	}

	token, err := a.store.Take(ctx, database.Normalize(req.Sender))
	if err != nil {
		return Verified{}, err
	}

	sender, err := database.ToAddress(req.Sender)
	if err != nil {
		return Verified{}, fmt.Errorf("sender: %w", err)
	}

	receiver, err := database.ToAddress(req.Receiver)
	if err != nil {
		return Verified{}, fmt.Errorf("receiver: %w", err)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(req.Value), 64)
	if err != nil || value <= 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return Verified{}, fmt.Errorf("%w: %q", ErrInvalidValue, req.Value)
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(req.Token)) != 1 {
		return Verified{}, ErrSignatureMismatch
	}

	recovered, err := signature.RecoverText(Message(req.Sender, req.Receiver, req.Value, token), req.Signature)
	if err != nil {
		return Verified{}, err
	}

	if database.Normalize(recovered) != sender {
		return Verified{}, ErrSignatureMismatch
	}

	v := Verified{
		Sender:   sender,
		Receiver: receiver,
		Value:    value,
	}

	return v, nil
}
