// AngelaMos | 2026
// lifetime.go

package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

var ErrInvalidLifetime = errors.New("invalid lifetime")

var lifetimePattern = regexp.MustCompile(`^(\d+)([smhd])$`)

var lifetimeUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseLifetime parses token lifetimes written as <integer><unit>, unit one
// of s, m, h, d. The result is always positive and fits in a time.Duration.
func ParseLifetime(s string) (time.Duration, error) {
	match := lifetimePattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidLifetime)
	}

	unit := lifetimeUnits[match[2]]

	value, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || value == 0 || value > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("%q out of range: %w", s, ErrInvalidLifetime)
	}

	return time.Duration(value) * unit, nil
}
