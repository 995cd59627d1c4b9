package domain

import (
	"math"
	"strconv"

	dErrors "redhope/pkg/domain-errors"
)

// BloodGroup is a domain value naming an ABO/Rh blood group.
// Invariant: the value must be one of the eight supported labels.
//
// Usage: construct via ParseBloodGroup at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

// bloodGroups is the single source of truth, in display order.
var bloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupABPos, BloodGroupABNeg,
	BloodGroupOPos, BloodGroupONeg,
}

// BloodGroups returns all supported groups in display order.
func BloodGroups() []BloodGroup {
	return append([]BloodGroup(nil), bloodGroups...)
}

// ParseBloodGroup constructs a BloodGroup from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseBloodGroup(s string) (BloodGroup, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "blood group cannot be empty")
	}
	g := BloodGroup(s)
	if !g.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unrecognized blood group: "+s)
	}
	return g, nil
}

// IsValid checks if the group is one of the supported labels.
func (g BloodGroup) IsValid() bool {
	for _, v := range bloodGroups {
		if v == g {
			return true
		}
	}
	return false
}

func (g BloodGroup) String() string {
	return string(g)
}

// MaxUnits caps a single adjustment and any stored count, matching the
// int4 range of the persisted counts.
const MaxUnits = math.MaxInt32

// ValidateUnits accepts 1..MaxUnits.
func ValidateUnits(units int) error {
	if units <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "units must be greater than zero")
	}
	if units > MaxUnits {
		return dErrors.New(dErrors.CodeInvalidInput, "units must not exceed "+strconv.Itoa(MaxUnits))
	}
	return nil
}

// Role distinguishes the two kinds of authenticated principal.
type Role string

const (
	RoleUser Role = "user"
	RoleBank Role = "bank"
)

// ParseRole validates a role claim.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleBank:
		return Role(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
}
