// Package email normalizes account emails so lookups are case-insensitive.
package email

import (
	"net/mail"
	"strings"

	dErrors "redhope/pkg/domain-errors"
)

const maxLength = 254

// Normalize trims and lowercases an address and checks it parses as a bare
// addr-spec (no display name).
func Normalize(raw string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(raw))
	if e == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if len(e) > maxLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is too long")
	}
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e || !strings.Contains(e[strings.IndexByte(e, '@')+1:], ".") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is invalid")
	}
	return e, nil
}
