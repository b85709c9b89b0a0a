// AngelaMos | 2026
// lifetime.go

package core

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/kurakampus-api/internal/config"
)

const defaultExpiresInSeconds = 900

// ParseLifetime parses a token lifetime, reporting bad input as
// ErrInvalidInput.
func ParseLifetime(s string) (time.Duration, error) {
	d, err := config.ParseLifetime(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return d, nil
}

func ExpiresInSeconds(s string) int {
	d, err := ParseLifetime(s)
	if err != nil {
		return defaultExpiresInSeconds
	}
	return int(d / time.Second)
}
