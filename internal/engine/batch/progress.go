package batch

// percentMultiplier is used to convert a ratio to percentage (0-100).
const percentMultiplier = 100

// Progress is a snapshot of page delivery.
type Progress struct {
	// TotalItems is the number of items being delivered.
	TotalItems int

	// DeliveredItems is the number of items handed to the PageFunc so far.
	DeliveredItems int

	// TotalPages is the number of pages.
	TotalPages int

	// DeliveredPages is the number of pages handed to the PageFunc so far.
	DeliveredPages int

	// PageSize is the configured page size.
	PageSize int
}

// PercentComplete returns the completion percentage (0-100).
func (p Progress) PercentComplete() float64 {
	if p.TotalItems == 0 {
		return 0
	}
	return (float64(p.DeliveredItems) / float64(p.TotalItems)) * percentMultiplier
}

// IsComplete returns true once every item has been delivered.
func (p Progress) IsComplete() bool {
	return p.DeliveredItems >= p.TotalItems
}

// Remaining returns the number of items not delivered yet.
func (p Progress) Remaining() int {
	return max(p.TotalItems-p.DeliveredItems, 0)
}
