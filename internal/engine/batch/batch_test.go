package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_Process(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	t.Run("InOrder", func(t *testing.T) {
		p, err := NewProcessor[int](10)
		require.NoError(t, err)

		var got []int
		var indices []int
		fn := func(_ context.Context, page []int, pageIndex int) error {
			got = append(got, page...)
			indices = append(indices, pageIndex)
			return nil
		}

		require.NoError(t, p.Process(context.Background(), items, fn))
		assert.Equal(t, items, got)
		assert.Equal(t, []int{0, 1, 2}, indices)
	})

	t.Run("Progress", func(t *testing.T) {
		var reports []Progress
		p := NewProcessorWithDefaults[int]().WithProgressCallback(func(pr Progress) {
			reports = append(reports, pr)
		})

		require.NoError(t, p.Process(context.Background(), items, func(context.Context, []int, int) error {
			return nil
		}))
		require.Len(t, reports, 1)
		assert.True(t, reports[0].IsComplete())
		assert.Equal(t, 25, reports[0].DeliveredItems)
	})

	t.Run("ErrorStops", func(t *testing.T) {
		p, _ := NewProcessor[int](10)
		calls := 0
		fn := func(_ context.Context, _ []int, pageIndex int) error {
			calls++
			if pageIndex == 1 {
				return errors.New("fail")
			}
			return nil
		}

		err := p.Process(context.Background(), items, fn)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "page 1 failed")
		assert.Equal(t, 2, calls)
	})

	t.Run("Cancelled", func(t *testing.T) {
		p, _ := NewProcessor[int](5)
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		fn := func(_ context.Context, _ []int, _ int) error {
			calls++
			cancel()
			return nil
		}

		err := p.Process(ctx, items, fn)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		p := NewProcessorWithDefaults[int]()
		assert.Equal(t, ErrEmptyItems, p.Process(context.Background(), nil, nil))
	})

	t.Run("NilPageFunc", func(t *testing.T) {
		p := NewProcessorWithDefaults[int]()
		assert.Equal(t, ErrNilPageFunc, p.Process(context.Background(), items, nil))
	})

	t.Run("InvalidPageSize", func(t *testing.T) {
		_, err := NewProcessor[int](0)
		require.ErrorIs(t, err, ErrInvalidPageSize)
		_, err = NewProcessor[int](2000)
		require.ErrorIs(t, err, ErrInvalidPageSize)
	})
}

func TestProgress(t *testing.T) {
	p := Progress{TotalItems: 100, TotalPages: 10, PageSize: 10}
	assert.InDelta(t, 0.0, p.PercentComplete(), 0)
	assert.False(t, p.IsComplete())
	assert.Equal(t, 100, p.Remaining())

	p.DeliveredItems = 40
	assert.InDelta(t, 40.0, p.PercentComplete(), 0)
	assert.Equal(t, 60, p.Remaining())

	p.DeliveredItems = 100
	assert.True(t, p.IsComplete())
	assert.Equal(t, 0, p.Remaining())

	assert.InDelta(t, 0.0, Progress{}.PercentComplete(), 0)
}

func TestProcessor_Pages(t *testing.T) {
	p, _ := NewProcessor[int](10)
	pages := p.Pages(25)
	require.Len(t, pages, 3)
	assert.Equal(t, [2]int{0, 10}, pages[0])
	assert.Equal(t, [2]int{10, 20}, pages[1])
	assert.Equal(t, [2]int{20, 25}, pages[2])
	assert.Equal(t, 10, p.PageSize())
	assert.Nil(t, p.Pages(0))
}
