// Package listview provides a virtual scrolling list for Bubble Tea TUI applications.
//
// The list keeps every item in memory but only renders the items inside the
// window computed by the window engine. Everything above and below the window
// is represented by blank spacer lines whose heights come from the engine's
// front and back padding, so the line offset of the viewport behaves as if
// the whole collection had been rendered. Key features:
//   - Variable height items, measured with lipgloss after rendering
//   - Keyboard navigation (up/down, pgup/pgdn, home/end, j/k)
//   - Caller supplied filter predicates applied before keys reach the engine
//   - Paged appends for "load more" style growth
package listview
