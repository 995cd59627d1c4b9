package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "redhope/pkg/domain"
)

func TestUnique(t *testing.T) {
	a, b := id.NewUserID(), id.NewUserID()

	tests := []struct {
		name     string
		input    []id.UserID
		expected []id.UserID
	}{
		{name: "nil stays nil", input: nil, expected: nil},
		{name: "empty stays empty", input: []id.UserID{}, expected: []id.UserID{}},
		{name: "keeps first occurrence order", input: []id.UserID{b, a, b, a, b}, expected: []id.UserID{b, a}},
		{name: "no repeats untouched", input: []id.UserID{a, b}, expected: []id.UserID{a, b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Unique(tt.input))
		})
	}
}

func TestUniqueBy(t *testing.T) {
	type donation struct {
		bank  string
		units int
	}
	got := UniqueBy([]donation{{"north", 1}, {"south", 2}, {"north", 3}}, func(d donation) string { return d.bank })
	assert.Equal(t, []string{"north", "south"}, got)

	assert.Empty(t, UniqueBy(nil, func(d donation) string { return d.bank }))
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: []string{}},
		{name: "only separators and spaces", input: " , ,, ", expected: []string{}},
		{name: "single broker", input: "localhost:9092", expected: []string{"localhost:9092"}},
		{name: "trims and dedupes", input: " a:9092, b:9092 ,,a:9092", expected: []string{"a:9092", "b:9092"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}
