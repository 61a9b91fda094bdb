package playout

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// multipleCount parses "N" or "MIN-MAX". Ranges are drawn from the playout
// seed and the activation start so a resumed build draws the same count.
func multipleCount(expr *string, seed int64, start time.Time) (int, error) {
	if expr == nil || strings.TrimSpace(*expr) == "" {
		return 0, fmt.Errorf("%w: multiple count not set", ErrInvalidPolicy)
	}
	text := strings.TrimSpace(*expr)

	lo, hi, isRange := strings.Cut(text, "-")
	minimum, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, fmt.Errorf("%w: multiple count %q", ErrInvalidPolicy, text)
	}
	maximum := minimum
	if isRange {
		if maximum, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
			return 0, fmt.Errorf("%w: multiple count %q", ErrInvalidPolicy, text)
		}
	}
	if minimum < 1 || maximum < minimum {
		return 0, fmt.Errorf("%w: multiple count %q out of range", ErrInvalidPolicy, text)
	}
	if minimum == maximum {
		return minimum, nil
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(start.Unix())))
	return minimum + rng.IntN(maximum-minimum+1), nil
}
