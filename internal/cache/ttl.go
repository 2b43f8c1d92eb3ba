package cache

import (
	"fmt"
	"strconv"
	"time"
)

// TTL bounds.
const (
	// DefaultTTL is used when no lifetime is configured.
	DefaultTTL = 24 * time.Hour

	MinTTL = time.Minute
	MaxTTL = 30 * 24 * time.Hour
)

// ErrInvalidTTL is returned for lifetimes outside [MinTTL, MaxTTL].
var ErrInvalidTTL = fmt.Errorf("TTL must be between %s and %s", FormatTTL(MinTTL), FormatTTL(MaxTTL))

// ValidateTTL checks that d is within the allowed range.
func ValidateTTL(d time.Duration) error {
	if d < MinTTL || d > MaxTTL {
		return fmt.Errorf("%w: got %s", ErrInvalidTTL, d)
	}
	return nil
}

// ParseTTL accepts integer seconds ("3600") or a Go duration ("1h30m").
func ParseTTL(s string) (time.Duration, error) {
	var d time.Duration
	if secs, err := strconv.Atoi(s); err == nil {
		d = time.Duration(secs) * time.Second
	} else {
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid TTL %q: %w", s, err)
		}
	}
	if err := ValidateTTL(d); err != nil {
		return 0, err
	}
	return d, nil
}

// FormatTTL renders d with its two largest units, e.g. "5m", "1h30m", "7d".
func FormatTTL(d time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < day:
		h, m := int(d/time.Hour), int(d%time.Hour/time.Minute)
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	default:
		days, h := int(d/day), int(d%day/time.Hour)
		if h == 0 {
			return fmt.Sprintf("%dd", days)
		}
		return fmt.Sprintf("%dd%dh", days, h)
	}
}
