// Package collections holds order-preserving slice helpers shared by the
// listing services and config parsing.
package collections

import "strings"

// Unique drops repeated values and keeps the first occurrence of each.
// A nil slice stays nil.
func Unique[T comparable](values []T) []T {
	if values == nil {
		return nil
	}
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// UniqueBy collects key(v) for every element, without repeats.
func UniqueBy[T any, K comparable](values []T, key func(T) K) []K {
	keys := make([]K, 0, len(values))
	for _, v := range values {
		keys = append(keys, key(v))
	}
	return Unique(keys)
}

// SplitList parses a comma-separated list such as KAFKA_BROKERS. Blank
// entries and repeats are dropped; surrounding whitespace is trimmed.
//
//	SplitList(" a:9092, b:9092 ,,a:9092") // []string{"a:9092", "b:9092"}
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return Unique(out)
}
