package engine

import (
	"fmt"
	"math"
)

// Config holds the parameters of a virtual list.
type Config[K comparable] struct {
	// Keeps is the number of items the window holds once the collection is at least that long.
	Keeps int

	// HeaderOffset is the fixed size of content placed before the first item (e.g. a sticky header).
	HeaderOffset float64

	// Buffer is the number of extra items scrolled past before the window shifts.
	Buffer int

	// EstimateSize is the fallback size of an item nobody has measured yet.
	EstimateSize float64

	// Keys are the stable item keys in display order. Keys must be unique.
	Keys []K
}

// Validate checks the configuration and returns an error wrapping ErrInvalidConfig.
func (c *Config[K]) Validate() error {
	if c.Keeps < 1 {
		return fmt.Errorf("%w: keeps must be >= 1, got %d", ErrInvalidConfig, c.Keeps)
	}
	if c.Buffer < 0 {
		return fmt.Errorf("%w: buffer must be >= 0, got %d", ErrInvalidConfig, c.Buffer)
	}
	if !isFinite(c.EstimateSize) || c.EstimateSize < 0 {
		return fmt.Errorf("%w: estimate size must be a finite value >= 0, got %v", ErrInvalidConfig, c.EstimateSize)
	}
	if !isFinite(c.HeaderOffset) {
		return fmt.Errorf("%w: header offset must be finite, got %v", ErrInvalidConfig, c.HeaderOffset)
	}
	return validateKeys(c.Keys)
}

// validateKeys rejects key lists containing duplicates.
func validateKeys[K comparable](keys []K) error {
	seen := make(map[K]struct{}, len(keys))
	for i, k := range keys {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: duplicate key %v at index %d", ErrInvalidConfig, k, i)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Window is the range of items to materialize plus the space taken by
// everything outside it. Start and End are inclusive indices into the key list.
type Window struct {
	Start     int     `json:"start"`
	End       int     `json:"end"`
	PadFront  float64 `json:"pad_front"`
	PadBehind float64 `json:"pad_behind"`
}

// Len returns the number of items in the window.
func (w Window) Len() int {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start + 1
}

// Empty reports whether the window holds no items (empty collection).
func (w Window) Empty() bool {
	return w.Len() == 0
}

// Contains reports whether index falls inside the window.
func (w Window) Contains(index int) bool {
	return index >= w.Start && index <= w.End
}

// UpdateFunc receives every new window. It is called synchronously from the handler that produced it.
type UpdateFunc func(Window)

// Direction is the last observed scroll direction.
type Direction int

const (
	// DirectionNone means no scroll has been reported since (re)initialization.
	DirectionNone Direction = iota
	// DirectionFront is scrolling toward index 0.
	DirectionFront
	// DirectionBehind is scrolling away from index 0.
	DirectionBehind
)

func (d Direction) String() string {
	switch d {
	case DirectionFront:
		return "front"
	case DirectionBehind:
		return "behind"
	default:
		return "none"
	}
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name written by MarshalText.
func (d *Direction) UnmarshalText(text []byte) error {
	for _, candidate := range []Direction{DirectionNone, DirectionFront, DirectionBehind} {
		if string(text) == candidate.String() {
			*d = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", text)
}

// SizeMode is the read-only view of the size classifier.
type SizeMode int

const (
	// ModeUninitialized means no measurement has been recorded yet.
	ModeUninitialized SizeMode = iota
	// ModeFixed means every measurement so far had the same size.
	ModeFixed
	// ModeDynamic means at least two measurements disagreed.
	ModeDynamic
)

func (m SizeMode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeDynamic:
		return "dynamic"
	default:
		return "uninitialized"
	}
}

// MarshalText encodes the mode by name.
func (m SizeMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name written by MarshalText.
func (m *SizeMode) UnmarshalText(text []byte) error {
	for _, candidate := range []SizeMode{ModeUninitialized, ModeFixed, ModeDynamic} {
		if string(text) == candidate.String() {
			*m = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown size mode %q", text)
}
