package retention

import (
	"strconv"
	"time"
)

// Clock supplies the current time to operations.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant (for testing).
type FixedClock struct {
	T time.Time
}

// Now returns c.T.
func (c FixedClock) Now() time.Time {
	return c.T
}

// Cutoff returns the instant days calendar days before now. Records strictly
// older than the cutoff are eligible; a record exactly at the cutoff is kept.
func Cutoff(now time.Time, days int) (time.Time, error) {
	if err := validateDays(days); err != nil {
		return time.Time{}, err
	}
	return now.AddDate(0, 0, -days), nil
}

// ParseDays parses an age threshold given as text.
func ParseDays(raw string) (int, error) {
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewInvalidArgumentError(ParamAgeThresholdDays, raw, "not an integer")
	}
	if err := validateDays(days); err != nil {
		return 0, err
	}
	return days, nil
}

func validateDays(days int) error {
	if days < 0 {
		return NewInvalidArgumentError(ParamAgeThresholdDays, strconv.Itoa(days), "must be zero or positive")
	}
	return nil
}
