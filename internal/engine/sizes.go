package engine

import (
	"fmt"
	"math"
)

// sizeMode is the size classifier state. Exactly one of uninitialized, fixed
// or dynamic; transitions only go forward.
type sizeMode interface {
	mode() SizeMode
}

type uninitialized struct{}

type fixed struct {
	size float64
}

type dynamic struct{}

func (uninitialized) mode() SizeMode { return ModeUninitialized }
func (fixed) mode() SizeMode         { return ModeFixed }
func (dynamic) mode() SizeMode       { return ModeDynamic }

// classify returns the classifier state after observing size.
func classify(current sizeMode, size float64) sizeMode {
	switch c := current.(type) {
	case uninitialized:
		return fixed{size: size}
	case fixed:
		if c.size != size {
			return dynamic{}
		}
		return c
	default:
		return current
	}
}

// runningAverage seeds estimates for unmeasured items in dynamic mode. It only
// samples while the first window is being populated and then freezes.
type runningAverage struct {
	total   float64
	average float64
	frozen  bool
}

// sample updates the average from the full set of measurements, or freezes it
// once count reaches threshold. It reports whether the average changed.
func (a *runningAverage) sample(total float64, count, threshold int) bool {
	if a.frozen {
		return false
	}
	if count >= threshold {
		a.frozen = true
		return false
	}

	prev := a.average
	a.total = total
	a.average = math.Round(total / float64(count))
	return a.average != prev
}

// SaveSize records the measured size of the item identified by key.
//
// Negative or non-finite sizes are rejected with ErrInvalidMeasurement and the
// previous measurement is kept. Without a configuration ErrNotConfigured is
// returned. SaveSize never emits a window.
func (e *Engine[K]) SaveSize(key K, size float64) error {
	if !isFinite(size) || size < 0 {
		e.logger.Warn().
			Str("key", fmt.Sprint(key)).
			Float64("size", size).
			Msg("rejected size measurement")
		return fmt.Errorf("%w: %v", ErrInvalidMeasurement, size)
	}
	if e.cfg == nil {
		return ErrNotConfigured
	}

	prev, had := e.sizes[key]
	e.sizes[key] = size

	before := e.mode.mode()
	e.mode = classify(e.mode, size)
	after := e.mode.mode()
	if before != after {
		e.logger.Debug().
			Stringer("from", before).
			Stringer("to", after).
			Float64("size", size).
			Msg("size classifier changed")
	}

	estimateChanged := before != after
	if after == ModeDynamic {
		threshold := min(e.cfg.Keeps, len(e.cfg.Keys))
		wasFrozen := e.average.frozen
		if e.average.sample(e.sumSizes(), len(e.sizes), threshold) {
			estimateChanged = true
		}
		if !wasFrozen && e.average.frozen {
			e.logger.Debug().
				Float64("average", e.average.average).
				Int("sample", len(e.sizes)).
				Msg("first range average frozen")
		}
	}

	switch {
	case estimateChanged:
		e.offsets.reset()
	case !had || prev != size:
		if idx, ok := e.index[key]; ok {
			e.offsets.truncate(idx)
		}
	}

	return nil
}

// Size returns the last measurement recorded for key.
func (e *Engine[K]) Size(key K) (float64, bool) {
	size, ok := e.sizes[key]
	return size, ok
}

// EstimateSize returns the size assumed for an item that has not been measured.
func (e *Engine[K]) EstimateSize() float64 {
	if f, ok := e.mode.(fixed); ok {
		return f.size
	}
	if e.average.average != 0 {
		return e.average.average
	}
	if e.cfg == nil {
		return 0
	}
	return e.cfg.EstimateSize
}

func (e *Engine[K]) sumSizes() float64 {
	var total float64
	for _, v := range e.sizes {
		total += v
	}
	return total
}
