package batch

import (
	"context"
	"errors"
	"fmt"
)

// Page size bounds.
const (
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 50

	// MinPageSize is the minimum allowed page size.
	MinPageSize = 1

	// MaxPageSize is the maximum allowed page size.
	MaxPageSize = 1000
)

// Common batch errors.
var (
	ErrInvalidPageSize = fmt.Errorf("page size must be between %d and %d", MinPageSize, MaxPageSize)
	ErrNilPageFunc     = errors.New("page func cannot be nil")
	ErrEmptyItems      = errors.New("items slice cannot be empty")
)

// PageFunc receives one page of items and its 0-based index.
type PageFunc[T any] func(ctx context.Context, page []T, pageIndex int) error

// ProgressFunc is invoked after each delivered page.
type ProgressFunc func(progress Progress)

// Processor splits items into pages and delivers them in order.
type Processor[T any] struct {
	pageSize   int
	onProgress ProgressFunc
}

// NewProcessor creates a processor with the given page size.
func NewProcessor[T any](pageSize int) (*Processor[T], error) {
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, pageSize)
	}

	return &Processor[T]{
		pageSize: pageSize,
	}, nil
}

// NewProcessorWithDefaults creates a processor with DefaultPageSize.
func NewProcessorWithDefaults[T any]() *Processor[T] {
	return &Processor[T]{
		pageSize: DefaultPageSize,
	}
}

// WithProgressCallback sets a progress callback for the processor.
func (p *Processor[T]) WithProgressCallback(callback ProgressFunc) *Processor[T] {
	p.onProgress = callback
	return p
}

// Process delivers items page by page and stops at the first error.
func (p *Processor[T]) Process(ctx context.Context, items []T, fn PageFunc[T]) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	if fn == nil {
		return ErrNilPageFunc
	}

	pages := p.Pages(len(items))
	progress := Progress{
		TotalItems: len(items),
		TotalPages: len(pages),
		PageSize:   p.pageSize,
	}

	for pageIndex, bounds := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		page := items[bounds[0]:bounds[1]]
		if err := fn(ctx, page, pageIndex); err != nil {
			return fmt.Errorf("page %d failed: %w", pageIndex, err)
		}

		progress.DeliveredItems += len(page)
		progress.DeliveredPages++
		if p.onProgress != nil {
			p.onProgress(progress)
		}
	}

	return nil
}

// PageSize returns the configured page size.
func (p *Processor[T]) PageSize() int {
	return p.pageSize
}

// Pages returns the [start, end) bounds of every page for totalItems items.
func (p *Processor[T]) Pages(totalItems int) [][2]int {
	if totalItems <= 0 {
		return nil
	}

	count := (totalItems + p.pageSize - 1) / p.pageSize
	pages := make([][2]int, count)
	for i := 0; i < count; i++ {
		start := i * p.pageSize
		pages[i] = [2]int{start, min(start+p.pageSize, totalItems)}
	}
	return pages
}
