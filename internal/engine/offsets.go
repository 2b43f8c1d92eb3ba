package engine

import "math"

// offsetCache holds prefix sums of item sizes: prefix[i] is the cumulative
// offset of item i. Entries are filled lazily and dropped when sizes or
// estimates they depend on change.
type offsetCache struct {
	prefix []float64
}

func (c *offsetCache) reset() {
	c.prefix = c.prefix[:0]
}

// truncate drops every entry that depends on the size of item idx.
func (c *offsetCache) truncate(idx int) {
	if len(c.prefix) > idx+1 {
		c.prefix = c.prefix[:idx+1]
	}
}

// indexOffset returns the sum of measured-or-estimated sizes of items
// [0, given), clamped to the collection, and records the highest index reached.
func (e *Engine[K]) indexOffset(given int) float64 {
	given = min(given, len(e.cfg.Keys))
	if given <= 0 {
		return 0
	}

	if len(e.offsets.prefix) == 0 {
		e.offsets.prefix = append(e.offsets.prefix, 0)
	}
	if len(e.offsets.prefix) <= given {
		estimate := e.EstimateSize()
		for i := len(e.offsets.prefix) - 1; i < given; i++ {
			size, ok := e.sizes[e.cfg.Keys[i]]
			if !ok {
				size = estimate
			}
			e.offsets.prefix = append(e.offsets.prefix, e.offsets.prefix[i]+size)
		}
	}

	e.lastCalcIndex = min(max(e.lastCalcIndex, given-1), e.lastIndex())

	return e.offsets.prefix[given]
}

// scrollOvers maps the current scroll offset to the index of the item it has
// passed over.
func (e *Engine[K]) scrollOvers() int {
	offset := e.offset - e.cfg.HeaderOffset
	if offset <= 0 {
		return 0
	}

	n := len(e.cfg.Keys)

	if f, ok := e.mode.(fixed); ok {
		// zero-size items: every positive offset is past the end
		if f.size <= 0 {
			return n
		}
		overs := math.Floor(offset / f.size)
		if overs > float64(n) {
			return n
		}
		return int(overs)
	}

	low, high := 0, n
	for low <= high {
		middle := low + (high-low)/2
		middleOffset := e.indexOffset(middle)

		switch {
		case middleOffset == offset:
			return middle
		case middleOffset < offset:
			low = middle + 1
		default:
			high = middle - 1
		}
	}

	if low > 0 {
		return low - 1
	}
	return 0
}
