package cart

import "errors"

var (
	ErrItemNotFound = errors.New("cart item not found")
	ErrBadQuantity  = errors.New("quantity must be greater than zero")
)
