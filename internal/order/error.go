package order

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("order status cannot be updated")
	ErrValidation        = errors.New("invalid order input")
	ErrUnauthorized      = errors.New("unauthorized")
)
