package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

type Status string

const (
	StatusCreated   Status = "created"
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

var (
	ErrInvalidKind           = errors.New("kind must be credit or debit")
	ErrInvalidAmount         = errors.New("amount must be a positive decimal")
	ErrMissingIdempotencyKey = errors.New("Idempotency-Key header or client_request_id is required")
	ErrIdempotencyConflict   = errors.New("idempotency key reused with different payload")
)

// Transaction is the central entity. Kind and Amount are fixed at creation;
// only Status (and UpdatedAt with it) ever changes, and only through the
// processor's locked read-modify-write path.
type Transaction struct {
	ID              string
	Kind            Kind
	Amount          decimal.Decimal
	Status          Status
	IdempotencyKey  *string
	ClientRequestID *string
	RequestHash     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewTransaction(kind Kind, amount decimal.Decimal, idempotencyKey, clientRequestID *string) (*Transaction, error) {
	if kind != KindCredit && kind != KindDebit {
		return nil, ErrInvalidKind
	}
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if !hasValue(idempotencyKey) && !hasValue(clientRequestID) {
		return nil, ErrMissingIdempotencyKey
	}

	now := time.Now().UTC()
	return &Transaction{
		ID:              uuid.NewString(),
		Kind:            kind,
		Amount:          amount,
		Status:          StatusCreated,
		IdempotencyKey:  idempotencyKey,
		ClientRequestID: clientRequestID,
		RequestHash:     PayloadHash(kind, amount),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// PayloadHash digests the request payload so a reused idempotency key with a
// different body can be detected. The amount is fixed to two decimal places
// first, so "10.0" and "10.00" hash identically.
func PayloadHash(kind Kind, amount decimal.Decimal) string {
	raw := fmt.Sprintf("%s:%s", kind, amount.StringFixed(2))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// CanTransition reports whether moving from s to target is legal. The
// lifecycle only moves forward: created -> pending -> processed|failed.
func (s Status) CanTransition(target Status) bool {
	switch s {
	case StatusCreated:
		return target == StatusPending
	case StatusPending:
		return target == StatusProcessed || target == StatusFailed
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

func hasValue(s *string) bool {
	return s != nil && *s != ""
}
