package engine

// HandleScroll records a new scroll offset and moves the window when the
// offset has left the buffered range. Repeating an offset never moves the
// window. Without a configuration only the direction and offset are recorded.
func (e *Engine[K]) HandleScroll(offset float64) {
	if !isFinite(offset) {
		e.logger.Warn().Float64("offset", offset).Msg("ignoring non-finite scroll offset")
		return
	}
	// an unchanged offset keeps the previous direction and window
	if offset == e.offset && e.direction != DirectionNone {
		return
	}

	if offset < e.offset {
		e.direction = DirectionFront
	} else {
		e.direction = DirectionBehind
	}
	e.offset = offset

	if e.cfg == nil {
		return
	}

	switch e.direction {
	case DirectionFront:
		e.handleFront()
	case DirectionBehind:
		e.handleBehind()
	}
}

// HandleDataSourcesChange revalidates the window after the key list changed.
// The window moves leadingBuffer items in the current scroll direction and is
// always emitted.
func (e *Engine[K]) HandleDataSourcesChange() error {
	if e.cfg == nil {
		return ErrNotConfigured
	}

	start := e.window.Start
	switch e.direction {
	case DirectionFront:
		start -= leadingBuffer
	case DirectionBehind:
		start += leadingBuffer
	}
	start = max(start, 0)

	start, end := e.correct(start, e.endByStart(start))
	e.updateRange(start, end)
	return nil
}

// HandleSlotSizeChange revalidates the window after the header offset changed.
func (e *Engine[K]) HandleSlotSizeChange() error {
	return e.HandleDataSourcesChange()
}

func (e *Engine[K]) handleFront() {
	overs := e.scrollOvers()
	// still behind the window start, nothing new to show
	if overs > e.window.Start {
		return
	}

	start := max(overs-e.cfg.Buffer, 0)
	e.checkRange(start, e.endByStart(start))
}

func (e *Engine[K]) handleBehind() {
	overs := e.scrollOvers()
	// within buffer tolerance
	if overs < e.window.Start+e.cfg.Buffer {
		return
	}

	e.checkRange(overs, e.endByStart(overs))
}

// checkRange corrects [start, end] and emits it when the start moved.
func (e *Engine[K]) checkRange(start, end int) {
	start, end = e.correct(start, end)
	if e.window.Start != start {
		e.updateRange(start, end)
	}
}

// correct forces the whole collection when it fits in keeps, and otherwise
// keeps the window keeps items long, pinned to end.
func (e *Engine[K]) correct(start, end int) (int, int) {
	keeps := e.cfg.Keeps
	total := len(e.cfg.Keys)

	if total <= keeps {
		return 0, e.lastIndex()
	}
	if end-start+1 < keeps {
		start = max(end-keeps+1, 0)
	}
	return start, end
}

// endByStart returns the end of a keeps-long window starting at start.
func (e *Engine[K]) endByStart(start int) int {
	return min(start+e.cfg.Keeps-1, e.lastIndex())
}

// updateRange sets the window, computes its padding and notifies the callback.
func (e *Engine[K]) updateRange(start, end int) {
	e.window.Start = start
	e.window.End = end
	e.window.PadFront = e.padFront()
	e.window.PadBehind = e.padBehind()

	e.logger.Debug().
		Int("start", e.window.Start).
		Int("end", e.window.End).
		Float64("pad_front", e.window.PadFront).
		Float64("pad_behind", e.window.PadBehind).
		Int("last_calc_index", e.lastCalcIndex).
		Stringer("mode", e.Mode()).
		Msg("window updated")

	if e.onUpdate != nil {
		e.onUpdate(e.window)
	}
}

func (e *Engine[K]) padFront() float64 {
	if f, ok := e.mode.(fixed); ok {
		return f.size * float64(e.window.Start)
	}
	return e.indexOffset(e.window.Start)
}

// padBehind is exact once the tail has been walked by an offset computation,
// and 0 before that.
func (e *Engine[K]) padBehind() float64 {
	end := e.window.End
	lastIndex := e.lastIndex()

	if f, ok := e.mode.(fixed); ok {
		return float64(lastIndex-end) * f.size
	}

	if lastIndex < 0 || e.lastCalcIndex != lastIndex {
		return 0
	}
	return e.indexOffset(lastIndex+1) - e.indexOffset(end+1)
}
