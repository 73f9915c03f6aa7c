package payment

import (
	"context"

	"furnimart-be/internal/logger"
	"furnimart-be/internal/order"

	"go.uber.org/zap"
)

// Service starts gateway checkouts. The pending order is persisted
// only after the provider accepted the transaction, under the
// provider-facing correlation id so the callback can find it.
type Service interface {
	CreateMomoPayment(ctx context.Context, in CreatePaymentInput) (*CreatePaymentResult, error)
	CreateZaloPayPayment(ctx context.Context, in CreatePaymentInput) (*CreatePaymentResult, error)
	CheckMomoStatus(ctx context.Context, orderID string) (*GatewayStatus, error)
	CheckZaloPayStatus(ctx context.Context, orderID string) (*GatewayStatus, error)
}

// OrderCreator persists the pending order a checkout produces.
type OrderCreator interface {
	Create(ctx context.Context, in order.CreateOrderInput) (*order.Order, error)
}

type service struct {
	momo    *MomoGateway
	zalopay *ZaloPayGateway
	orders  OrderCreator
}

func NewService(momo *MomoGateway, zalopay *ZaloPayGateway, orders OrderCreator) Service {
	return &service{momo: momo, zalopay: zalopay, orders: orders}
}

func (s *service) CreateMomoPayment(ctx context.Context, in CreatePaymentInput) (*CreatePaymentResult, error) {
	orderID := s.momo.NewOrderID()

	result, err := s.momo.CreatePayment(ctx, orderID, in.Amount, in.RedirectURL)
	if err != nil {
		return nil, err
	}

	if err := s.saveOrder(ctx, orderID, order.MethodMoMo, in); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) CreateZaloPayPayment(ctx context.Context, in CreatePaymentInput) (*CreatePaymentResult, error) {
	orderID := s.zalopay.NewOrderID()

	result, err := s.zalopay.CreatePayment(ctx, orderID, in.UserID, in.Amount, in.Items, in.RedirectURL)
	if err != nil {
		return nil, err
	}

	if err := s.saveOrder(ctx, orderID, order.MethodZaloPay, in); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) saveOrder(ctx context.Context, orderID string, method order.PaymentMethod, in CreatePaymentInput) error {
	_, err := s.orders.Create(ctx, order.CreateOrderInput{
		OrderID: orderID,
		UserID:  in.UserID,
		Items:   in.Items,
		Total:   in.Amount,
		Address: in.Address,
		Method:  method,
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to persist pending gateway order",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
	return err
}

func (s *service) CheckMomoStatus(ctx context.Context, orderID string) (*GatewayStatus, error) {
	return s.momo.QueryStatus(ctx, orderID)
}

func (s *service) CheckZaloPayStatus(ctx context.Context, orderID string) (*GatewayStatus, error) {
	return s.zalopay.QueryStatus(ctx, orderID)
}
