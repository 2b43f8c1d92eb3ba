package tui

import (
	"fmt"
	"strings"
)

// heightStride spreads consecutive rows over the allowed height range so
// neighbours rarely share a height.
const heightStride = 7

// Row is one generated entry of the browser.
type Row struct {
	ID    string
	Title string
	Lines int
}

// RowKey returns the unique key of a row.
func RowKey(r Row) string {
	return r.ID
}

// GenerateRows returns n rows numbered from start whose heights vary
// between minHeight and maxHeight lines.
func GenerateRows(start, n, minHeight, maxHeight int) []Row {
	if minHeight < 1 {
		minHeight = 1
	}
	if maxHeight < minHeight {
		maxHeight = minHeight
	}
	span := maxHeight - minHeight + 1

	rows := make([]Row, 0, max(n, 0))
	for i := start; i < start+n; i++ {
		rows = append(rows, Row{
			ID:    fmt.Sprintf("row-%06d", i),
			Title: fmt.Sprintf("row %d", i),
			Lines: minHeight + (i*heightStride)%span,
		})
	}
	return rows
}

// renderRow draws the title line followed by Lines-1 detail lines.
func renderRow(r Row, selected bool) string {
	var sb strings.Builder
	_, _ = sb.WriteString(fmt.Sprintf("%-12s %s", r.ID, r.Title))
	for j := 1; j < r.Lines; j++ {
		_, _ = sb.WriteString("\n")
		_, _ = sb.WriteString(DetailStyle.Render(fmt.Sprintf("    detail %d/%d", j, r.Lines-1)))
	}

	if selected {
		return SelectedStyle.Render(sb.String())
	}
	return sb.String()
}

// matchQuery returns a predicate matching rows whose ID or title contains
// query, ignoring case. An empty query matches everything.
func matchQuery(query string) func(Row) bool {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	return func(r Row) bool {
		return strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.ID), q)
	}
}
