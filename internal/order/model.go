package order

import "time"

type OrderStatus string

const (
	StatusSubmitted OrderStatus = "SUBMITTED"
	StatusInTransit OrderStatus = "IN_TRANSIT"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

type PaymentMethod string

const (
	MethodCOD     PaymentMethod = "cash_on_delivery"
	MethodMoMo    PaymentMethod = "momo"
	MethodZaloPay PaymentMethod = "zalopay"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
)

type ShippingAddress struct {
	FullName    string `json:"fullName"`
	Street      string `json:"street"`
	PhoneNumber string `json:"phoneNumber"`
	Note        string `json:"note,omitempty"`
}

type PaymentDetails struct {
	TransactionID string        `json:"transactionId,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentDate   *time.Time    `json:"paymentDate,omitempty"`
}

// OrderItem snapshots name, price and image at checkout time so order
// history never re-joins live catalog pricing.
type OrderItem struct {
	ID        uint   `json:"id"`
	OrderID   uint   `json:"-"`
	ProductID uint   `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image,omitempty"`
}

type Order struct {
	ID       uint   `json:"id"`
	OrderID  string `json:"orderId"` // provider correlation id for gateway orders
	UserID   uint   `json:"userId"`
	Items    []OrderItem
	Total    int64           `json:"totalAmount"`
	Address  ShippingAddress `json:"shippingAddress"`
	Status   OrderStatus     `json:"orderStatus"`
	Method   PaymentMethod   `json:"paymentMethod"`
	Payment  PaymentDetails  `json:"paymentDetails"`
	Tracking string          `json:"trackingNumber,omitempty"`

	// StockAllocated records whether the ledger was debited for this
	// order, so cancellation restores only what was actually deducted.
	StockAllocated bool      `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CreateOrderInput struct {
	OrderID string
	UserID  uint
	Items   []OrderItem
	Total   int64
	Address ShippingAddress
	Method  PaymentMethod
}
