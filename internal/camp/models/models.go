package models

import (
	"strings"
	"time"

	identity "redhope/internal/identity/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
)

// Donor status values. Fulfilled is terminal.
const (
	DonorEnrolled  = 0
	DonorFulfilled = 1
)

// Donor is one roster entry. A camp holds at most one entry per user.
type Donor struct {
	UserID id.UserID `json:"user_id"`
	Status int       `json:"status"`
	Units  int       `json:"units"`
}

// Camp is a bank-run donation drive. Date is fixed at creation.
type Camp struct {
	ID        id.CampID
	BankID    id.BankID
	Name      string
	Location  identity.Location
	Date      time.Time
	Donors    []Donor
	CreatedAt time.Time
}

// HasDonor reports whether userID is on the roster in any state.
func (c *Camp) HasDonor(userID id.UserID) bool {
	for _, d := range c.Donors {
		if d.UserID == userID {
			return true
		}
	}
	return false
}

// Clone returns a copy whose roster can be mutated independently.
func (c *Camp) Clone() *Camp {
	out := *c
	out.Donors = append([]Donor(nil), c.Donors...)
	return &out
}

// Summary is the roster-free projection served to the public.
type Summary struct {
	ID     id.CampID `json:"id"`
	BankID id.BankID `json:"bank_id"`
	Name   string    `json:"name"`
	identity.Location
	Date time.Time `json:"date"`
}

func (c *Camp) Summary() Summary {
	return Summary{ID: c.ID, BankID: c.BankID, Name: c.Name, Location: c.Location, Date: c.Date}
}

// WithBank is a public listing entry: donors withheld, owning bank expanded.
type WithBank struct {
	Summary
	Bank *identity.BankProfile `json:"bank"`
}

// WithBankName is the date lookup entry; only the bank's name is exposed.
type WithBankName struct {
	Summary
	BankName string `json:"bank_name"`
}

// RosterEntry is a donor with the user's public profile.
type RosterEntry struct {
	Donor
	User *identity.UserProfile `json:"user"`
}

// WithRoster is the owning bank's view of a camp.
type WithRoster struct {
	Summary
	Donors []RosterEntry `json:"donors"`
}

// CampInput is what a bank submits to schedule a camp.
type CampInput struct {
	Name     string
	Location identity.Location
	Date     time.Time
}

func (in *CampInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "camp name is required")
	}
	if strings.TrimSpace(in.Location.State) == "" || strings.TrimSpace(in.Location.District) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "state and district are required")
	}
	if in.Date.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "camp date is required")
	}
	return nil
}

// DayLayout is the calendar-day format accepted by the date lookup.
const DayLayout = "2006-01-02"

// ParseDay returns the UTC window [start, end) for a calendar day. It accepts
// a bare date or an RFC 3339 timestamp, whose date part is used.
func ParseDay(raw string) (start, end time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(DayLayout, raw)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, raw)
		if tsErr != nil {
			return time.Time{}, time.Time{}, false
		}
		t = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	return t, t.AddDate(0, 0, 1), true
}
