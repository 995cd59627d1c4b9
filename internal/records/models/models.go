package models

import (
	"fmt"
	"time"

	identity "redhope/internal/identity/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/platform/sentinel"
)

// ErrUnknownUser and ErrUnknownBank name the missing side of a new record.
// Both match sentinel.ErrNotFound.
var (
	ErrUnknownUser = fmt.Errorf("user %w", sentinel.ErrNotFound)
	ErrUnknownBank = fmt.Errorf("bank %w", sentinel.ErrNotFound)
)

// Kind selects between the two record collections.
type Kind string

const (
	KindDonation Kind = "donation"
	KindRequest  Kind = "request"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDonation, KindRequest:
		return Kind(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown record kind")
	}
}

// Status values with a defined meaning. Any other integer is stored as given.
const (
	StatusPending   = 0
	StatusCompleted = 1
)

// Record is a donation or a blood request. CreatedAt is set once at creation.
type Record struct {
	ID         id.RecordID   `json:"id"`
	Kind       Kind          `json:"kind"`
	UserID     id.UserID     `json:"user_id"`
	BankID     id.BankID     `json:"bank_id"`
	BloodGroup id.BloodGroup `json:"blood_group"`
	Units      int           `json:"units"`
	Urgent     bool          `json:"urgent,omitempty"`
	Status     int           `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewRecordInput is what a user submits.
type NewRecordInput struct {
	UserID     id.UserID
	BankID     id.BankID
	BloodGroup id.BloodGroup
	Units      int
	Urgent     bool
}

// WithUser is a bank's view of a record: the counterpart user's public profile.
type WithUser struct {
	Record
	User *identity.UserProfile `json:"user"`
}

// WithBank is a user's view of a record: the counterpart bank's public profile.
type WithBank struct {
	Record
	Bank *identity.BankProfile `json:"bank"`
}
