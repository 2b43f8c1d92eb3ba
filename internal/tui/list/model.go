package listview

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/nullishamy/dakko/internal/engine"
	"github.com/nullishamy/dakko/internal/engine/batch"
)

// Window defaults used when no option overrides them.
const (
	defaultKeeps          = 30
	defaultBuffer         = 10
	defaultEstimateHeight = 1
)

// maxSettlePasses bounds the scroll/measure loop run after every navigation.
const maxSettlePasses = 3

// RenderFunc is a function that renders an item.
// The selected parameter indicates whether this item is currently selected.
type RenderFunc[T any] func(item T, selected bool) string

// KeyFunc returns the stable key of an item. Keys must be unique.
type KeyFunc[T any] func(item T) string

// Predicate reports whether an item passes the current filter.
type Predicate[T any] func(item T) bool

type options struct {
	keeps    int
	buffer   int
	estimate float64
	header   string
	pageSize int
	keyMap   KeyMap
	logger   zerolog.Logger
}

// Option configures a VirtualListModel.
type Option func(*options)

// WithWindow sets how many items are rendered at once and how many items
// may be scrolled past before the window shifts.
func WithWindow(keeps, buffer int) Option {
	return func(o *options) {
		o.keeps = keeps
		o.buffer = buffer
	}
}

// WithEstimateHeight sets the height in lines assumed for unmeasured items.
func WithEstimateHeight(lines float64) Option {
	return func(o *options) {
		o.estimate = lines
	}
}

// WithHeader renders header above the first item.
func WithHeader(header string) Option {
	return func(o *options) {
		o.header = header
	}
}

// WithPageSize sets the page size used by Append.
func WithPageSize(size int) Option {
	return func(o *options) {
		o.pageSize = size
	}
}

// WithKeyMap replaces the navigation bindings.
func WithKeyMap(km KeyMap) Option {
	return func(o *options) {
		o.keyMap = km
	}
}

// WithLogger sets the logger handed to the window engine.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// VirtualListModel implements virtual scrolling for large lists of variable
// height items. Only the items in the engine's window are rendered; the
// space above and below them is filled with blank lines.
type VirtualListModel[T any] struct {
	// items contains all list items
	items []T

	// visible holds the items passing filter, in order
	visible []T

	filter     Predicate[T]
	keyFunc    KeyFunc[T]
	renderFunc RenderFunc[T]

	eng    *engine.Engine[string]
	window engine.Window

	keyMap   KeyMap
	header   string
	pageSize int
	logger   zerolog.Logger

	// keeps is the configured window length; the engine may hold more so
	// the window always spans the viewport
	keeps  int
	buffer int

	// appended is the progress of the last Append
	appended batch.Progress

	// selected is the selected index into visible
	selected int

	// offset is the first line shown, counted from the top of the header
	offset int

	// height is the viewport height in rows
	height int

	// width is the viewport width in columns
	width int
}

// NewVirtualListModel creates a new virtual list model.
// items: the complete list of items to display.
// keyFunc: returns the unique key of an item.
// height: viewport height in rows.
// width: viewport width in columns.
// renderFunc: function to render each item.
func NewVirtualListModel[T any](
	items []T,
	keyFunc KeyFunc[T],
	height, width int,
	renderFunc RenderFunc[T],
	opts ...Option,
) (*VirtualListModel[T], error) {
	o := options{
		keeps:    defaultKeeps,
		buffer:   defaultBuffer,
		estimate: defaultEstimateHeight,
		pageSize: batch.DefaultPageSize,
		keyMap:   DefaultKeyMap(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &VirtualListModel[T]{
		items:      slices.Clone(items),
		keyFunc:    keyFunc,
		renderFunc: renderFunc,
		keyMap:     o.keyMap,
		header:     o.header,
		pageSize:   o.pageSize,
		logger:     o.logger,
		keeps:      o.keeps,
		buffer:     o.buffer,
		height:     height,
		width:      width,
	}
	m.visible = m.filtered()

	cfg := engine.Config[string]{
		Keeps:        m.windowKeeps(),
		Buffer:       o.buffer,
		EstimateSize: o.estimate,
		HeaderOffset: float64(m.headerLines()),
		Keys:         m.keysOf(m.visible),
	}
	eng, err := engine.New(&cfg, m.onWindow, engine.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("creating list engine: %w", err)
	}
	m.eng = eng

	m.settle()
	return m, nil
}

// Init initializes the model (required for tea.Model interface).
func (m *VirtualListModel[T]) Init() tea.Cmd {
	return nil
}

// Update handles keyboard and resize messages.
func (m *VirtualListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}

	return m, nil
}

// handleKeyMsg processes keyboard input for navigation.
func (m *VirtualListModel[T]) handleKeyMsg(msg tea.KeyMsg) {
	n := len(m.visible)
	if n == 0 {
		return
	}

	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(msg, m.keyMap.Down):
		if m.selected < n-1 {
			m.selected++
		}

	case key.Matches(msg, m.keyMap.PageUp):
		m.offset = m.clampOffset(m.offset - m.height)
		m.selected = m.itemAt(m.offset)

	case key.Matches(msg, m.keyMap.PageDown):
		next := m.clampOffset(m.offset + m.height)
		if next == m.offset {
			m.selected = n - 1
		} else {
			m.offset = next
			m.selected = m.itemAt(next)
		}

	case key.Matches(msg, m.keyMap.Home):
		m.selected = 0

	case key.Matches(msg, m.keyMap.End):
		m.selected = n - 1

	default:
		return
	}

	m.settle()
}

// onWindow is the engine's update callback.
func (m *VirtualListModel[T]) onWindow(w engine.Window) {
	m.window = w
}

// settle scrolls the selected item into view, reports the offset to the
// engine and measures the resulting window, repeating while measurements
// move the item.
func (m *VirtualListModel[T]) settle() {
	for _i := 0; _i < maxSettlePasses; _i++ {
		m.ensureSelectedVisible()
		m.scroll()
		if !m.measureWindow(false) {
			return
		}
	}
}

// scroll reports the offset to the engine. A data change can leave the
// window shifted off the viewport while the offset stays put, and the engine
// ignores a repeated offset, so the window is then rebuilt from the top.
func (m *VirtualListModel[T]) scroll() {
	m.eng.HandleScroll(float64(m.offset))
	if m.windowCoversViewport() {
		return
	}
	m.logger.Debug().
		Int("offset", m.offset).
		Int("start", m.window.Start).
		Int("end", m.window.End).
		Msg("realigning window with viewport")
	m.eng.HandleScroll(-1)
	m.eng.HandleScroll(float64(m.offset))
}

// windowCoversViewport reports whether every item on screen is in the window.
func (m *VirtualListModel[T]) windowCoversViewport() bool {
	if len(m.visible) == 0 || m.height <= 0 {
		return true
	}
	last := min(m.offset+m.height, m.totalLines()) - 1
	if last < m.offset {
		return true
	}
	return m.window.Start <= m.itemAt(m.offset) && m.window.End >= m.itemAt(last)
}

// windowKeeps is the engine window length for the current height. Every item
// is at least one line tall, so height+buffer+1 items always reach past the
// bottom of the viewport before the engine shifts the window.
func (m *VirtualListModel[T]) windowKeeps() int {
	return max(m.keeps, m.height+m.buffer+1)
}

// fitWindow grows or shrinks the engine window after a resize.
func (m *VirtualListModel[T]) fitWindow() {
	keeps := m.windowKeeps()
	if keeps == m.eng.Keeps() {
		return
	}
	if err := m.eng.SetKeeps(keeps); err != nil {
		m.logger.Error().Err(err).Int("keeps", keeps).Msg("resizing list window")
		return
	}
	if err := m.eng.HandleDataSourcesChange(); err != nil {
		m.logger.Error().Err(err).Msg("revalidating list window")
	}
}

func (m *VirtualListModel[T]) ensureSelectedVisible() {
	if len(m.visible) == 0 {
		m.offset = 0
		return
	}

	top := m.lineOf(m.selected)
	if m.selected == 0 {
		// keep the header in view
		top = 0
	}
	bottom := m.lineOf(m.selected + 1)

	switch {
	case top < m.offset:
		m.offset = top
	case bottom > m.offset+m.height:
		m.offset = bottom - m.height
	}
	m.offset = m.clampOffset(m.offset)
}

// measureWindow renders the items of the window and reports their heights.
// Already measured items are skipped unless force is set. It returns true
// when any stored height changed.
func (m *VirtualListModel[T]) measureWindow(force bool) bool {
	changed := false
	for i := m.window.Start; i <= m.window.End && i < len(m.visible); i++ {
		k := m.keyFunc(m.visible[i])
		prev, measured := m.eng.Size(k)
		if measured && !force {
			continue
		}

		height := float64(lipgloss.Height(m.renderFunc(m.visible[i], i == m.selected)))
		if measured && prev == height {
			continue
		}
		if err := m.eng.SaveSize(k, height); err != nil {
			m.logger.Warn().Err(err).Str("key", k).Msg("skipping item measurement")
			continue
		}
		changed = true
	}
	return changed
}

// lineOf returns the first line of the item at index, header included.
func (m *VirtualListModel[T]) lineOf(index int) int {
	offset, err := m.eng.OffsetOf(index)
	if err != nil {
		m.logger.Error().Err(err).Int("index", index).Msg("resolving item offset")
		return 0
	}
	return int(math.Round(offset))
}

// totalLines is the height of the header plus every item, measured or estimated.
func (m *VirtualListModel[T]) totalLines() int {
	return m.lineOf(len(m.visible))
}

func (m *VirtualListModel[T]) clampOffset(offset int) int {
	maxOffset := max(m.totalLines()-m.height, 0)
	return min(max(offset, 0), maxOffset)
}

// itemAt returns the index of the item covering line.
func (m *VirtualListModel[T]) itemAt(line int) int {
	n := len(m.visible)
	idx := sort.Search(n, func(i int) bool {
		return m.lineOf(i+1) > line
	})
	return min(idx, n-1)
}

func (m *VirtualListModel[T]) headerLines() int {
	if m.header == "" {
		return 0
	}
	return lipgloss.Height(m.header)
}

func (m *VirtualListModel[T]) filtered() []T {
	if m.filter == nil {
		return m.items
	}
	out := make([]T, 0, len(m.items))
	for _, item := range m.items {
		if m.filter(item) {
			out = append(out, item)
		}
	}
	return out
}

func (m *VirtualListModel[T]) keysOf(items []T) []string {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = m.keyFunc(item)
	}
	return keys
}

// refresh hands the filtered items to the engine and revalidates the window.
func (m *VirtualListModel[T]) refresh() error {
	visible := m.filtered()
	if err := m.eng.SetKeys(m.keysOf(visible)); err != nil {
		return err
	}
	m.visible = visible

	if err := m.eng.HandleDataSourcesChange(); err != nil {
		return err
	}

	m.selected = min(m.selected, max(len(m.visible)-1, 0))
	m.offset = m.clampOffset(m.offset)
	m.settle()
	return nil
}

// View renders the lines of the viewport.
func (m *VirtualListModel[T]) View() string {
	if m.height <= 0 {
		return ""
	}
	last := min(m.offset+m.height, m.totalLines())
	if last <= m.offset {
		return ""
	}

	var headerLines []string
	if m.header != "" {
		headerLines = strings.Split(m.header, "\n")
	}

	startLine := len(headerLines) + int(math.Round(m.window.PadFront))
	var windowLines []string
	for i := m.window.Start; i <= m.window.End && i < len(m.visible); i++ {
		rendered := m.renderFunc(m.visible[i], i == m.selected)
		windowLines = append(windowLines, strings.Split(rendered, "\n")...)
	}

	lines := make([]string, 0, last-m.offset)
	for line := m.offset; line < last; line++ {
		switch {
		case line < len(headerLines):
			lines = append(lines, headerLines[line])
		case line >= startLine && line < startLine+len(windowLines):
			lines = append(lines, windowLines[line-startLine])
		default:
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}

// SetFilter keeps only the items for which pred returns true. A nil
// predicate shows every item.
func (m *VirtualListModel[T]) SetFilter(pred Predicate[T]) error {
	prev := m.filter
	m.filter = pred
	if err := m.refresh(); err != nil {
		m.filter = prev
		return err
	}
	return nil
}

// Append adds items to the end of the list one page at a time. Each page is
// handed to the engine before the next one is delivered.
func (m *VirtualListModel[T]) Append(ctx context.Context, items ...T) error {
	if len(items) == 0 {
		return nil
	}

	proc, err := batch.NewProcessor[T](m.pageSize)
	if err != nil {
		return err
	}
	m.appended = batch.Progress{TotalItems: len(items), PageSize: m.pageSize}
	proc.WithProgressCallback(func(p batch.Progress) {
		m.appended = p
		m.logger.Debug().
			Int("delivered", p.DeliveredItems).
			Int("total", p.TotalItems).
			Float64("percent", p.PercentComplete()).
			Msg("append page delivered")
	})

	return proc.Process(ctx, items, func(_ context.Context, page []T, _ int) error {
		prev := m.items
		m.items = append(slices.Clip(m.items), page...)
		if refreshErr := m.refresh(); refreshErr != nil {
			m.items = prev
			return refreshErr
		}
		return nil
	})
}

// SetHeader replaces the text rendered above the first item.
func (m *VirtualListModel[T]) SetHeader(header string) error {
	m.header = header
	if err := m.eng.SetHeaderOffset(float64(m.headerLines())); err != nil {
		return err
	}
	if err := m.eng.HandleSlotSizeChange(); err != nil {
		return err
	}
	m.offset = m.clampOffset(m.offset)
	m.settle()
	return nil
}

// SetSize changes the viewport and re-measures the window, since item
// heights may depend on the width.
func (m *VirtualListModel[T]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.fitWindow()
	m.measureWindow(true)
	m.offset = m.clampOffset(m.offset)
	m.settle()
}

// Keeps returns the window length the engine currently holds.
func (m *VirtualListModel[T]) Keeps() int {
	return m.eng.Keeps()
}

// AppendProgress reports how far the last Append got.
func (m *VirtualListModel[T]) AppendProgress() batch.Progress {
	return m.appended
}

// ItemCount returns the number of items passing the filter.
func (m *VirtualListModel[T]) ItemCount() int {
	return len(m.visible)
}

// TotalCount returns the number of items, filtered or not.
func (m *VirtualListModel[T]) TotalCount() int {
	return len(m.items)
}

// Selected returns the currently selected item index.
func (m *VirtualListModel[T]) Selected() int {
	return m.selected
}

// SetSelected sets the selected item index, capping to valid bounds, and
// scrolls it into view.
func (m *VirtualListModel[T]) SetSelected(index int) {
	if len(m.visible) == 0 {
		m.selected = 0
		return
	}
	m.selected = min(max(index, 0), len(m.visible)-1)
	m.settle()
}

// GetSelectedItem returns the currently selected item.
// Returns nil if list is empty.
func (m *VirtualListModel[T]) GetSelectedItem() *T {
	if len(m.visible) == 0 || m.selected < 0 || m.selected >= len(m.visible) {
		return nil
	}
	return &m.visible[m.selected]
}

// Window returns the engine's current window.
func (m *VirtualListModel[T]) Window() engine.Window {
	return m.window
}

// Mode returns the engine's size classification of the items.
func (m *VirtualListModel[T]) Mode() engine.SizeMode {
	return m.eng.Mode()
}

// Offset returns the first visible line.
func (m *VirtualListModel[T]) Offset() int {
	return m.offset
}

// Height returns the viewport height.
func (m *VirtualListModel[T]) Height() int {
	return m.height
}

// Width returns the viewport width.
func (m *VirtualListModel[T]) Width() int {
	return m.width
}

// KeyMap returns the navigation bindings, for help rendering.
func (m *VirtualListModel[T]) KeyMap() KeyMap {
	return m.keyMap
}
