package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "redhope/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so ids of different entities cannot be
// swapped at compile time.
type (
	UserID   uuid.UUID
	BankID   uuid.UUID
	RecordID uuid.UUID
	CampID   uuid.UUID
)

func NewUserID() UserID     { return UserID(uuid.New()) }
func NewBankID() BankID     { return BankID(uuid.New()) }
func NewRecordID() RecordID { return RecordID(uuid.New()) }
func NewCampID() CampID     { return CampID(uuid.New()) }

// parseUUID enforces the id invariant: a well-formed, non-nil UUID.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParseBankID(s string) (BankID, error) {
	u, err := parseUUID(s, "bank id")
	return BankID(u), err
}

func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s, "record id")
	return RecordID(u), err
}

func ParseCampID(s string) (CampID, error) {
	u, err := parseUUID(s, "camp id")
	return CampID(u), err
}

func (id UserID) String() string   { return uuid.UUID(id).String() }
func (id BankID) String() string   { return uuid.UUID(id).String() }
func (id RecordID) String() string { return uuid.UUID(id).String() }
func (id CampID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id BankID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CampID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps JSON and log output in canonical UUID form.

func (id UserID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id BankID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id RecordID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id CampID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error   { return unmarshalID((*uuid.UUID)(id), b) }
func (id *BankID) UnmarshalText(b []byte) error   { return unmarshalID((*uuid.UUID)(id), b) }
func (id *RecordID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }
func (id *CampID) UnmarshalText(b []byte) error   { return unmarshalID((*uuid.UUID)(id), b) }

func unmarshalID(dst *uuid.UUID, b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid id")
	}
	*dst = u
	return nil
}
