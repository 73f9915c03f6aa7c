package payment

import (
	"time"

	"furnimart-be/internal/order"
)

const (
	ProviderMoMo    = "momo"
	ProviderZaloPay = "zalopay"
)

// CreatePaymentInput is what the checkout endpoint sends to start a
// gateway payment. Items are snapshotted into the order before the
// provider is contacted.
type CreatePaymentInput struct {
	UserID      uint
	Amount      int64
	Items       []order.OrderItem
	Address     order.ShippingAddress
	RedirectURL string
}

// CreatePaymentResult carries the provider checkout URL plus the
// correlation id the callback will reference.
type CreatePaymentResult struct {
	OrderID string `json:"orderId"`
	PayURL  string `json:"payUrl"`
}

// GatewayStatus is the normalized answer of a provider status poll.
type GatewayStatus struct {
	Status        order.PaymentStatus
	TransactionID string
	PaidAt        *time.Time
}

// CallbackResult is the verified, normalized content of a provider
// callback, ready for reconciliation.
type CallbackResult struct {
	Provider      string
	OrderID       string
	TransactionID string
	Status        order.PaymentStatus
}
