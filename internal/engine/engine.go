package engine

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// leadingBuffer is how many items a forced update moves the window in the current scroll direction.
const leadingBuffer = 2

// Engine computes the render window of a virtual list. The zero value is not
// usable; construct one with New.
//
// Engine is not safe for concurrent use.
type Engine[K comparable] struct {
	// cfg is nil until the list is ready.
	cfg *Config[K]

	// onUpdate receives every emitted window.
	onUpdate UpdateFunc

	logger zerolog.Logger

	// sizes maps item keys to their last measured size.
	sizes map[K]float64

	// index maps item keys to their position in cfg.Keys.
	index map[K]int

	// mode is the size classifier.
	mode sizeMode

	// average seeds estimates in dynamic mode.
	average runningAverage

	// offsets caches cumulative offsets for dynamic mode.
	offsets offsetCache

	// lastCalcIndex is the highest index any cumulative offset computation reached.
	lastCalcIndex int

	// offset is the last reported scroll offset.
	offset float64

	direction Direction
	window    Window
}

type options struct {
	logger zerolog.Logger
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger used for debug output. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates an engine. cfg may be nil to represent a list that is not ready
// yet; supply it later with Configure. When cfg is present the initial window
// [0, min(keeps, len(keys))-1] is emitted before New returns.
func New[K comparable](cfg *Config[K], onUpdate UpdateFunc, opts ...Option) (*Engine[K], error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine[K]{
		onUpdate: onUpdate,
		logger:   o.logger,
	}

	if cfg == nil {
		e.init()
		return e, nil
	}

	if err := e.Configure(*cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// Configure replaces the configuration, discards all measurements and scroll
// state, and emits the initial window.
func (e *Engine[K]) Configure(cfg Config[K]) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.Keys = slices.Clone(cfg.Keys)
	e.cfg = &cfg
	e.init()
	return nil
}

// Destroy clears all state and releases the configuration and callback.
func (e *Engine[K]) Destroy() {
	e.cfg = nil
	e.onUpdate = nil
	e.init()
}

// init resets size, scroll and range data. With a configuration present the
// initial window is emitted.
func (e *Engine[K]) init() {
	e.sizes = make(map[K]float64)
	e.mode = uninitialized{}
	e.average = runningAverage{}
	e.offsets.reset()
	e.lastCalcIndex = 0

	e.offset = 0
	e.direction = DirectionNone

	e.window = Window{}
	e.rebuildIndex()

	if e.cfg == nil {
		return
	}

	start, end := e.correct(0, e.cfg.Keeps-1)
	e.updateRange(start, end)
}

func (e *Engine[K]) rebuildIndex() {
	if e.cfg == nil {
		e.index = make(map[K]int)
		return
	}
	e.index = make(map[K]int, len(e.cfg.Keys))
	for i, k := range e.cfg.Keys {
		e.index[k] = i
	}
}

// SetKeys replaces the ordered key list and drops measurements of keys that
// are no longer present. It does not emit; follow it with HandleDataSourcesChange.
func (e *Engine[K]) SetKeys(keys []K) error {
	if e.cfg == nil {
		return ErrNotConfigured
	}
	if err := validateKeys(keys); err != nil {
		return err
	}

	e.cfg.Keys = slices.Clone(keys)
	e.rebuildIndex()

	pruned := 0
	for k := range e.sizes {
		if _, ok := e.index[k]; !ok {
			delete(e.sizes, k)
			pruned++
		}
	}

	e.offsets.reset()
	e.lastCalcIndex = min(e.lastCalcIndex, max(e.lastIndex(), 0))

	e.logger.Debug().
		Int("keys", len(keys)).
		Int("pruned_sizes", pruned).
		Msg("key list replaced")
	return nil
}

// SetEstimateSize replaces the fallback size used for unmeasured items.
func (e *Engine[K]) SetEstimateSize(size float64) error {
	if e.cfg == nil {
		return ErrNotConfigured
	}
	if !isFinite(size) || size < 0 {
		return fmt.Errorf("%w: estimate size must be a finite value >= 0, got %v", ErrInvalidConfig, size)
	}
	e.cfg.EstimateSize = size
	e.offsets.reset()
	return nil
}

// SetHeaderOffset replaces the header offset. Follow it with HandleSlotSizeChange.
func (e *Engine[K]) SetHeaderOffset(offset float64) error {
	if e.cfg == nil {
		return ErrNotConfigured
	}
	if !isFinite(offset) {
		return fmt.Errorf("%w: header offset must be finite, got %v", ErrInvalidConfig, offset)
	}
	e.cfg.HeaderOffset = offset
	return nil
}

// SetKeeps replaces the window length. Follow it with HandleDataSourcesChange.
func (e *Engine[K]) SetKeeps(keeps int) error {
	if e.cfg == nil {
		return ErrNotConfigured
	}
	if keeps < 1 {
		return fmt.Errorf("%w: keeps must be >= 1, got %d", ErrInvalidConfig, keeps)
	}
	e.cfg.Keeps = keeps
	return nil
}

// SetBuffer replaces the scroll buffer.
func (e *Engine[K]) SetBuffer(buffer int) error {
	if e.cfg == nil {
		return ErrNotConfigured
	}
	if buffer < 0 {
		return fmt.Errorf("%w: buffer must be >= 0, got %d", ErrInvalidConfig, buffer)
	}
	e.cfg.Buffer = buffer
	return nil
}

// OffsetOf returns the scroll offset at which the item at index starts,
// including the header offset. index is clamped to [0, Len()].
func (e *Engine[K]) OffsetOf(index int) (float64, error) {
	if e.cfg == nil {
		return 0, ErrNotConfigured
	}
	index = min(max(index, 0), len(e.cfg.Keys))

	var offset float64
	if index >= 1 {
		offset = e.indexOffset(index)
	}
	return offset + e.cfg.HeaderOffset, nil
}

// Window returns the current window.
func (e *Engine[K]) Window() Window {
	return e.window
}

// Direction returns the last observed scroll direction.
func (e *Engine[K]) Direction() Direction {
	return e.direction
}

// IsFront reports whether the last scroll moved toward index 0.
func (e *Engine[K]) IsFront() bool {
	return e.direction == DirectionFront
}

// IsBehind reports whether the last scroll moved away from index 0.
func (e *Engine[K]) IsBehind() bool {
	return e.direction == DirectionBehind
}

// IsFixed reports whether the engine believes every item has the same size.
func (e *Engine[K]) IsFixed() bool {
	_, ok := e.mode.(fixed)
	return ok
}

// Mode returns the size classifier state.
func (e *Engine[K]) Mode() SizeMode {
	return e.mode.mode()
}

// Configured reports whether a configuration is present.
func (e *Engine[K]) Configured() bool {
	return e.cfg != nil
}

// Len returns the number of keys, or 0 when not configured.
func (e *Engine[K]) Len() int {
	if e.cfg == nil {
		return 0
	}
	return len(e.cfg.Keys)
}

// Keeps returns the window length, or 0 when not configured.
func (e *Engine[K]) Keeps() int {
	if e.cfg == nil {
		return 0
	}
	return e.cfg.Keeps
}

// ScrollOffset returns the last reported scroll offset.
func (e *Engine[K]) ScrollOffset() float64 {
	return e.offset
}

func (e *Engine[K]) lastIndex() int {
	return len(e.cfg.Keys) - 1
}
