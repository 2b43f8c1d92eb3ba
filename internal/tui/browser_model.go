package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	listview "github.com/nullishamy/dakko/internal/tui/list"
)

// ViewState represents the current state of the browser.
type ViewState int

const (
	// ViewStateList shows the list and accepts navigation keys.
	ViewStateList ViewState = iota
	// ViewStateFilter routes keys to the filter input.
	ViewStateFilter
	// ViewStateQuitting renders nothing while the program exits.
	ViewStateQuitting
)

const (
	defaultWidth         = 80
	defaultHeight        = 24
	defaultAppendCount   = 50
	filterInputCharLimit = 64
	filterInputWidth     = 40
	statusBarHeight      = 1
	minListHeight        = 1
)

// BrowserOptions configures a BrowserModel.
type BrowserOptions struct {
	// Keeps and Buffer are handed to the window engine.
	Keeps  int
	Buffer int

	// EstimateHeight is the height assumed for rows not yet measured.
	EstimateHeight float64

	// MinHeight and MaxHeight bound the rows generated by "load more".
	MinHeight int
	MaxHeight int

	// AppendCount is the number of rows added by "load more".
	AppendCount int

	// PageSize is the number of rows handed to the engine per page.
	PageSize int

	Width  int
	Height int

	Logger *zerolog.Logger
}

// BrowserModel is the Bubble Tea model of `dakko tui`: a virtual list with a
// filter prompt, a status bar describing the engine window and a help line.
type BrowserModel struct {
	state ViewState

	list        *listview.VirtualListModel[Row]
	filterInput textinput.Model
	help        help.Model
	keys        browserKeyMap
	helpKeys    helpKeyMap

	// query is the filter currently applied to the list
	query string

	minHeight   int
	maxHeight   int
	appendCount int

	width  int
	height int

	err error
}

// NewBrowserModel creates a browser over rows.
func NewBrowserModel(rows []Row, opts BrowserOptions) (*BrowserModel, error) {
	m := &BrowserModel{
		state:       ViewStateList,
		filterInput: newFilterInput(),
		help:        help.New(),
		keys:        defaultBrowserKeyMap(),
		minHeight:   opts.MinHeight,
		maxHeight:   opts.MaxHeight,
		appendCount: opts.AppendCount,
		width:       opts.Width,
		height:      opts.Height,
	}
	if m.width <= 0 {
		m.width = defaultWidth
	}
	if m.height <= 0 {
		m.height = defaultHeight
	}
	if m.appendCount <= 0 {
		m.appendCount = defaultAppendCount
	}
	m.helpKeys = helpKeyMap{list: listview.DefaultKeyMap(), browser: m.keys}

	listOpts := []listview.Option{
		listview.WithHeader(HeaderStyle.Render(fmt.Sprintf("%-12s %s", "ID", "TITLE"))),
	}
	if opts.Keeps > 0 {
		listOpts = append(listOpts, listview.WithWindow(opts.Keeps, opts.Buffer))
	}
	if opts.EstimateHeight > 0 {
		listOpts = append(listOpts, listview.WithEstimateHeight(opts.EstimateHeight))
	}
	if opts.PageSize > 0 {
		listOpts = append(listOpts, listview.WithPageSize(opts.PageSize))
	}
	if opts.Logger != nil {
		listOpts = append(listOpts, listview.WithLogger(*opts.Logger))
	}

	list, err := listview.NewVirtualListModel(rows, RowKey, m.listHeight(), m.width, renderRow, listOpts...)
	if err != nil {
		return nil, err
	}
	m.list = list
	return m, nil
}

func newFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Filter rows..."
	ti.CharLimit = filterInputCharLimit
	ti.Width = filterInputWidth
	return ti
}

// Init initializes the model.
func (m *BrowserModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if winMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = winMsg.Width
		m.height = winMsg.Height
		m.help.Width = winMsg.Width
		m.resizeList()
		return m, nil
	}

	switch m.state {
	case ViewStateFilter:
		return m.handleFilterInput(msg)
	case ViewStateList:
		return m.handleListUpdate(msg)
	case ViewStateQuitting:
		return m, nil
	default:
		return m, nil
	}
}

func (m *BrowserModel) handleFilterInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMsg.Type == tea.KeyCtrlC:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Apply):
			m.closeFilter()
			m.applyFilter(m.filterInput.Value())
			return m, nil
		case key.Matches(keyMsg, m.keys.ClearFilter):
			m.filterInput.SetValue(m.query)
			m.closeFilter()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *BrowserModel) handleListUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			m.state = ViewStateQuitting
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Filter):
			m.state = ViewStateFilter
			m.resizeList()
			return m, m.filterInput.Focus()
		case key.Matches(keyMsg, m.keys.ClearFilter):
			if m.query != "" {
				m.filterInput.SetValue("")
				m.applyFilter("")
			}
			return m, nil
		case key.Matches(keyMsg, m.keys.Append):
			m.loadMore()
			return m, nil
		case key.Matches(keyMsg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resizeList()
			return m, nil
		}
	}

	_, cmd := m.list.Update(msg)
	return m, cmd
}

func (m *BrowserModel) closeFilter() {
	m.state = ViewStateList
	m.filterInput.Blur()
	m.resizeList()
}

// applyFilter narrows the list to rows matching query.
func (m *BrowserModel) applyFilter(query string) {
	if err := m.list.SetFilter(matchQuery(query)); err != nil {
		m.err = fmt.Errorf("applying filter %q: %w", query, err)
		return
	}
	m.query = query
	m.err = nil
}

// loadMore appends a page of generated rows to the end of the list.
func (m *BrowserModel) loadMore() {
	rows := GenerateRows(m.list.TotalCount(), m.appendCount, m.minHeight, m.maxHeight)
	if err := m.list.Append(context.Background(), rows...); err != nil {
		m.err = fmt.Errorf("loading more rows: %w", err)
		return
	}
	m.err = nil
}

func (m *BrowserModel) helpView() string {
	return m.help.View(m.helpKeys)
}

// listHeight is the terminal height left after the status bar, help and the
// filter prompt.
func (m *BrowserModel) listHeight() int {
	chrome := statusBarHeight + lipgloss.Height(m.helpView())
	if m.state == ViewStateFilter {
		chrome++
	}
	return max(m.height-chrome, minListHeight)
}

func (m *BrowserModel) resizeList() {
	m.list.SetSize(m.width, m.listHeight())
}

// View renders the current view.
func (m *BrowserModel) View() string {
	if m.state == ViewStateQuitting {
		return ""
	}

	// pad the list so the status bar stays anchored on short lists
	listView := lipgloss.NewStyle().Height(m.list.Height()).Render(m.list.View())
	sections := []string{listView}
	if m.state == ViewStateFilter {
		sections = append(sections, "Filter: "+m.filterInput.View())
	}
	sections = append(sections, m.renderStatusBar(), m.helpView())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *BrowserModel) renderStatusBar() string {
	if m.err != nil {
		return ErrorStyle.Width(m.width).MaxHeight(statusBarHeight).Render(m.err.Error())
	}

	w := m.list.Window()
	window := "empty"
	if !w.Empty() {
		window = fmt.Sprintf("%d..%d", w.Start, w.End)
	}
	status := fmt.Sprintf(" %s %s  %s %.0f/%.0f  %s %s  %s %d/%d",
		StatusKeyStyle.Render("window"), window,
		StatusKeyStyle.Render("pad"), w.PadFront, w.PadBehind,
		StatusKeyStyle.Render("mode"), m.list.Mode(),
		StatusKeyStyle.Render("rows"), m.list.ItemCount(), m.list.TotalCount(),
	)
	if p := m.list.AppendProgress(); p.TotalItems > 0 {
		if p.IsComplete() {
			status += fmt.Sprintf("  %s +%d", StatusKeyStyle.Render("loaded"), p.DeliveredItems)
		} else {
			status += fmt.Sprintf("  %s +%d/%d (%d left)", StatusKeyStyle.Render("loaded"),
				p.DeliveredItems, p.TotalItems, p.Remaining())
		}
	}
	if m.query != "" {
		status += fmt.Sprintf("  %s %q", StatusKeyStyle.Render("filter"), m.query)
	}
	return StatusStyle.Width(m.width).MaxHeight(statusBarHeight).Render(status)
}

// State returns the current view state.
func (m *BrowserModel) State() ViewState {
	return m.state
}

// Query returns the filter applied to the list.
func (m *BrowserModel) Query() string {
	return m.query
}

// List returns the underlying list view.
func (m *BrowserModel) List() *listview.VirtualListModel[Row] {
	return m.list
}

// Err returns the last error shown in the status bar.
func (m *BrowserModel) Err() error {
	return m.err
}
