package models

import (
	id "redhope/pkg/domain"
)

// Stock maps each blood group to a non-negative unit count.
type Stock map[id.BloodGroup]int

// ZeroStock returns a stock map with every blood group at 0.
func ZeroStock() Stock {
	s := make(Stock, len(id.BloodGroups()))
	for _, g := range id.BloodGroups() {
		s[g] = 0
	}
	return s
}

// Clone copies s; nil stays nil.
func (s Stock) Clone() Stock {
	if s == nil {
		return nil
	}
	out := make(Stock, len(s))
	for g, n := range s {
		out[g] = n
	}
	return out
}

// Total sums all groups.
func (s Stock) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Direction labels an adjustment for metrics and audit.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)
