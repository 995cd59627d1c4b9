//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseBankID checks that parsing never panics and that accepted ids
// round-trip through String.
func FuzzParseBankID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseBankID(input)
		if err == nil {
			roundTrip, err2 := ParseBankID(id.String())
			if err2 != nil {
				t.Errorf("valid id failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed id value")
			}
			if id.IsNil() {
				t.Error("nil id accepted")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errUser := ParseUserID(input)
		_, errBank := ParseBankID(input)
		_, errRecord := ParseRecordID(input)
		_, errCamp := ParseCampID(input)

		if (errUser == nil) != (errBank == nil) ||
			(errUser == nil) != (errRecord == nil) ||
			(errUser == nil) != (errCamp == nil) {
			t.Error("inconsistent parsing across id types")
		}
	})
}

func FuzzParseBloodGroup(f *testing.F) {
	for _, g := range BloodGroups() {
		f.Add(string(g))
	}
	f.Add("C+")
	f.Add("a+")

	f.Fuzz(func(t *testing.T, input string) {
		g, err := ParseBloodGroup(input)
		if err == nil && !g.IsValid() {
			t.Errorf("accepted unsupported group %q", input)
		}
	})
}
