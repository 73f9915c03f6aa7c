package order

import (
	"context"
	"fmt"
	"time"

	"furnimart-be/internal/inventory"
	"furnimart-be/internal/logger"
	"furnimart-be/internal/mail"

	"go.uber.org/zap"
)

type Service interface {
	// Create validates and persists a Submitted order. For cash on
	// delivery the ledger is debited immediately; gateway orders are
	// debited by payment reconciliation on the Completed callback.
	Create(ctx context.Context, in CreateOrderInput) (*Order, error)

	// Transition moves an order through the state machine on behalf of
	// actorRole, running the cancellation restore or COD settlement side
	// effects the edge requires.
	Transition(ctx context.Context, id uint, to OrderStatus, actorRole string) (*Order, error)

	GetDetail(ctx context.Context, userID, id uint, isStaff bool) (*Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Count(ctx context.Context) (int64, error)
	SearchByPhone(ctx context.Context, phone string) ([]Order, error)
	SearchByCustomerName(ctx context.Context, name string) ([]Order, error)

	// ApplyPaymentResult conditionally records a payment outcome for the
	// correlation id. It reports whether this call newly completed the
	// payment; redelivered callbacks see false and must not rerun side
	// effects. Order fulfillment status is never touched here.
	ApplyPaymentResult(ctx context.Context, orderID, transactionID string, status PaymentStatus) (bool, *Order, error)

	// MarkStockAllocated flags that the ledger was debited for the order.
	MarkStockAllocated(ctx context.Context, id uint) error
}

type service struct {
	repo      Repository
	stock     inventory.Service
	mailer    mail.Sender
	mailAsync bool
}

func NewService(repo Repository, stock inventory.Service, mailer mail.Sender) Service {
	return &service{repo: repo, stock: stock, mailer: mailer, mailAsync: true}
}

func (s *service) Create(ctx context.Context, in CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Uint("user_id", in.UserID),
		zap.Int("item_count", len(in.Items)),
	)

	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one product", ErrValidation)
	}
	if in.Total <= 0 {
		return nil, fmt.Errorf("%w: total amount must be greater than zero", ErrValidation)
	}
	if in.Address.FullName == "" || in.Address.Street == "" || in.Address.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: shipping address must contain fullName, street and phoneNumber", ErrValidation)
	}
	if !ValidPaymentMethod(in.Method) {
		return nil, fmt.Errorf("%w: unrecognized payment method %q", ErrValidation, in.Method)
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be greater than zero", ErrValidation)
		}
	}

	orderID := in.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("ORD-%d", time.Now().UnixMilli())
	}

	o := &Order{
		OrderID: orderID,
		UserID:  in.UserID,
		Items:   in.Items,
		Total:   in.Total,
		Address: in.Address,
		Status:  StatusSubmitted,
		Method:  in.Method,
		Payment: PaymentDetails{PaymentStatus: PaymentPending},
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error("failed to persist order", zap.Error(err))
		return nil, err
	}

	// COD reserves stock at submission; gateway methods reserve on the
	// payment-completed callback instead.
	if in.Method == MethodCOD {
		for _, item := range o.Items {
			if err := s.stock.Allocate(ctx, item.ProductID, item.Quantity); err != nil {
				log.Warn("eager allocation failed",
					zap.Uint("product_id", item.ProductID),
					zap.Error(err),
				)
				return o, err
			}
		}
		if err := s.repo.SetStockAllocated(ctx, o.ID, true); err != nil {
			log.Error("failed to flag stock allocation", zap.Error(err))
		}
		o.StockAllocated = true
	}

	s.sendConfirmation(ctx, o)

	log.Info("order created", zap.String("order_id", o.OrderID))
	return o, nil
}

// sendConfirmation is best effort; a mail failure never fails the order.
func (s *service) sendConfirmation(ctx context.Context, o *Order) {
	if s.mailer == nil {
		return
	}

	send := func() {
		subject := fmt.Sprintf("Order %s received", o.OrderID)
		body := fmt.Sprintf("Hi %s,\n\nwe received your order %s for a total of %d.\nWe will notify you when it ships.",
			o.Address.FullName, o.OrderID, o.Total)
		if err := s.mailer.Send(context.Background(), o.UserID, subject, body); err != nil {
			logger.L().Warn("order confirmation mail failed",
				zap.String("order_id", o.OrderID),
				zap.Error(err),
			)
		}
	}

	if s.mailAsync {
		go send()
	} else {
		send()
	}
}

func (s *service) Transition(ctx context.Context, id uint, to OrderStatus, actorRole string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Transition"),
		zap.Uint("order_id", id),
		zap.String("to", string(to)),
		zap.String("actor", actorRole),
	)

	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, to, actorRole) {
		log.Warn("transition rejected", zap.String("from", string(o.Status)))
		return nil, ErrInvalidTransition
	}

	from := o.Status
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	o.Status = to

	switch {
	case to == StatusCancelled:
		s.restoreAfterCancellation(ctx, o)

	case to == StatusCompleted && o.Method == MethodCOD:
		// Cash settles on delivery.
		now := time.Now()
		if err := s.repo.SetPaymentStatus(ctx, o.ID, PaymentCompleted, &now); err != nil {
			log.Error("failed to settle COD payment", zap.Error(err))
		} else {
			o.Payment.PaymentStatus = PaymentCompleted
			o.Payment.PaymentDate = &now
		}
	}

	log.Info("order transition applied", zap.String("from_status", string(from)))
	return o, nil
}

// restoreAfterCancellation reverses the eager deduction. Restore failures
// are logged and do not undo the cancellation itself.
func (s *service) restoreAfterCancellation(ctx context.Context, o *Order) {
	log := logger.FromCtx(ctx).With(zap.String("order_id", o.OrderID))

	if !o.StockAllocated {
		log.Info("cancellation without prior allocation, nothing to restore")
		return
	}

	for _, item := range o.Items {
		if err := s.stock.Restore(ctx, item.ProductID, item.Quantity); err != nil {
			log.Error("failed to restore stock after cancellation",
				zap.Uint("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}

	if err := s.repo.SetStockAllocated(ctx, o.ID, false); err != nil {
		log.Error("failed to clear allocation flag", zap.Error(err))
	}
	o.StockAllocated = false
}

func (s *service) GetDetail(ctx context.Context, userID, id uint, isStaff bool) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff && o.UserID != userID {
		return nil, ErrUnauthorized
	}
	return o, nil
}

func (s *service) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

func (s *service) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context) ([]Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *service) SearchByPhone(ctx context.Context, phone string) ([]Order, error) {
	return s.repo.SearchByPhone(ctx, phone)
}

func (s *service) SearchByCustomerName(ctx context.Context, name string) ([]Order, error) {
	return s.repo.SearchByCustomerName(ctx, name)
}

func (s *service) ApplyPaymentResult(ctx context.Context, orderID, transactionID string, status PaymentStatus) (bool, *Order, error) {
	o, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return false, nil, err
	}

	var paidAt *time.Time
	if status == PaymentCompleted {
		now := time.Now()
		paidAt = &now
	}

	applied, err := s.repo.UpdatePaymentIfPending(ctx, orderID, transactionID, status, paidAt)
	if err != nil {
		return false, nil, err
	}

	o.Payment.TransactionID = transactionID
	if applied {
		o.Payment.PaymentStatus = status
		o.Payment.PaymentDate = paidAt
	}

	newlyCompleted := applied && status == PaymentCompleted
	return newlyCompleted, o, nil
}

func (s *service) MarkStockAllocated(ctx context.Context, id uint) error {
	return s.repo.SetStockAllocated(ctx, id, true)
}
