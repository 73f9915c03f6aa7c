package inventory

import "errors"

var (
	// ErrInsufficientStock reports that allocation ran out of batches.
	// Batches already decremented in the same call stay decremented; the
	// caller must not assume the item was reserved.
	ErrInsufficientStock = errors.New("not enough stock available")

	ErrNoBatches = errors.New("no inventory found for this product")
)
