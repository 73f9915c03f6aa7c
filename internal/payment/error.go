package payment

import "errors"

var (
	ErrInvalidSignature    = errors.New("invalid callback signature")
	ErrProviderUnavailable = errors.New("payment provider request failed")
)
