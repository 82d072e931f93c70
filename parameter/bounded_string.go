// Package parameter parses and validates every inbound authorize and token
// request field into a strongly typed value.
package parameter

import (
	"fmt"
	"math"
)

// SecureLength is the minimum length of values that must resist guessing
// (RFC 6749 section 10.10).
const SecureLength = 20

// Unbounded can be used as the upper bound of ParseBounded.
const Unbounded = math.MaxInt

// ParseBounded checks that value has a length within [lower, upper] inclusive.
// Empty input is reported as ErrEmpty when lower > 0, never as ErrTooShort.
func ParseBounded(value string, lower, upper int) (string, error) {
	if value == "" && lower > 0 {
		return "", ErrEmpty
	}

	if len(value) < lower {
		return "", fmt.Errorf("%w, must be at least %d characters long: found %d", ErrTooShort, lower, len(value))
	}

	if len(value) > upper {
		return "", fmt.Errorf("%w, must be at most %d characters long: found %d", ErrTooLong, upper, len(value))
	}

	return value, nil
}
