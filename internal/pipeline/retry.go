package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/Batipro56920/batipro/internal/devis"
)

// IsRetryable checks if an import error is worth retrying. Validation and
// parse failures are deterministic; storage failures are assumed transient.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrBadRequest) || errors.Is(err, devis.ErrTextTooShort) {
		return false
	}
	return true
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3
