package revocation

import (
	"errors"
	"time"
)

var errNonPositiveTTL = errors.New("ttl must be positive")

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return errNonPositiveTTL
	}
	return nil
}
