package payment

import (
	"context"
	"encoding/json"
	"errors"

	"furnimart-be/internal/inventory"
	"furnimart-be/internal/logger"
	"furnimart-be/internal/metrics"
	"furnimart-be/internal/order"

	"go.uber.org/zap"
)

// PaymentRecorder is the slice of the order service the reconciler
// needs: the conditional payment write and the allocation flag.
type PaymentRecorder interface {
	ApplyPaymentResult(ctx context.Context, orderID, transactionID string, status order.PaymentStatus) (bool, *order.Order, error)
	MarkStockAllocated(ctx context.Context, id uint) error
}

// StockAllocator debits the stock ledger for one product.
type StockAllocator interface {
	Allocate(ctx context.Context, productID uint, qty int) error
}

// CartClearer empties a user's cart after a settled payment.
type CartClearer interface {
	Clear(ctx context.Context, userID uint) error
}

// Reconciler applies a verified provider callback to the order it
// references. The pipeline is: record the delivery, conditionally
// write the payment outcome, and run fulfillment side effects exactly
// once for the delivery that newly completed the payment.
type Reconciler struct {
	repo   Repository
	orders PaymentRecorder
	stock  StockAllocator
	carts  CartClearer

	// Internal failures are swallowed so the provider gets its ack;
	// these counters keep them visible.
	SideEffectFailures metrics.Counter
	DuplicateCallbacks metrics.Counter
}

func NewReconciler(repo Repository, orders PaymentRecorder, stock StockAllocator, carts CartClearer) *Reconciler {
	return &Reconciler{
		repo:   repo,
		orders: orders,
		stock:  stock,
		carts:  carts,
	}
}

// Stats reports the failure counters for the operational surface.
func (rc *Reconciler) Stats() map[string]uint64 {
	return map[string]uint64{
		"duplicateCallbacks": rc.DuplicateCallbacks.Load(),
		"sideEffectFailures": rc.SideEffectFailures.Load(),
	}
}

// Apply processes one verified callback. It never returns an error for
// anything that happened after the payment outcome was durably
// recorded; providers retry on non-success responses and a retry must
// not double-apply fulfillment.
func (rc *Reconciler) Apply(ctx context.Context, result CallbackResult, rawPayload json.RawMessage) error {
	log := logger.FromCtx(ctx).With(
		zap.String("provider", result.Provider),
		zap.String("order_id", result.OrderID),
		zap.String("transaction_id", result.TransactionID),
		zap.String("status", string(result.Status)),
	)

	eventID := result.OrderID + ":" + result.TransactionID
	webhookID, duplicate, err := rc.repo.SaveWebhook(ctx, result.Provider, eventID,
		result.OrderID, rawPayload, true)
	if err != nil {
		log.Error("failed to record webhook delivery", zap.Error(err))
		return err
	}
	if duplicate {
		rc.DuplicateCallbacks.Inc()
		log.Info("duplicate callback delivery, skipping")
		return nil
	}

	newlyCompleted, o, err := rc.orders.ApplyPaymentResult(ctx, result.OrderID,
		result.TransactionID, result.Status)
	if err != nil {
		_ = rc.repo.MarkWebhookFailed(ctx, webhookID, err.Error())
		log.Error("failed to apply payment result", zap.Error(err))
		return err
	}

	if newlyCompleted {
		// A buyer can cancel while the payment is still pending. The
		// payment outcome is recorded above either way, but a cancelled
		// order must not debit the ledger it never held.
		if o.Status == order.StatusCancelled {
			log.Warn("payment completed for cancelled order, skipping fulfillment")
		} else {
			rc.fulfill(ctx, o, log)
		}
	}

	if err := rc.repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Warn("failed to mark webhook processed", zap.Error(err))
	}
	return nil
}

// fulfill runs the post-payment side effects: debit the stock ledger
// per line item, flag the order, and empty the buyer's cart. Each step
// is best effort once the payment itself is recorded.
func (rc *Reconciler) fulfill(ctx context.Context, o *order.Order, log *zap.Logger) {
	// An insufficient-stock result still commits the partial deduction,
	// so the order is flagged as allocated whenever the ledger may have
	// been touched. Only an untouched ledger skips the flag.
	anyDeducted := false
	for _, item := range o.Items {
		err := rc.stock.Allocate(ctx, item.ProductID, item.Quantity)
		switch {
		case err == nil:
			anyDeducted = true
		case errors.Is(err, inventory.ErrInsufficientStock):
			anyDeducted = true
			rc.SideEffectFailures.Inc()
			log.Error("post-payment stock allocation fell short",
				zap.Uint("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		default:
			rc.SideEffectFailures.Inc()
			log.Error("post-payment stock allocation failed",
				zap.Uint("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}

	if anyDeducted {
		if err := rc.orders.MarkStockAllocated(ctx, o.ID); err != nil {
			rc.SideEffectFailures.Inc()
			log.Error("failed to flag stock allocation", zap.Error(err))
		}
	}

	if err := rc.carts.Clear(ctx, o.UserID); err != nil {
		rc.SideEffectFailures.Inc()
		log.Error("failed to clear cart after payment", zap.Error(err))
	}

	log.Info("payment fulfillment side effects applied")
}
