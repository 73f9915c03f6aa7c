package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"furnimart-be/internal/logger"
	"furnimart-be/internal/payment"
	"furnimart-be/internal/transport"

	"go.uber.org/zap"
)

// MomoHandler receives MoMo IPN deliveries. The provider is always
// acked with its expected envelope once the delivery was recorded;
// internal failures must not trigger provider retries of work that
// already happened.
type MomoHandler struct {
	gateway    *payment.MomoGateway
	reconciler *payment.Reconciler
}

func NewMomoHandler(gateway *payment.MomoGateway, reconciler *payment.Reconciler) *MomoHandler {
	return &MomoHandler{gateway: gateway, reconciler: reconciler}
}

type momoAck struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
}

// Callback handles POST /api/momo/callback
func (h *MomoHandler) Callback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(zap.String("provider", payment.ProviderMoMo))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	var cb payment.MomoCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := h.gateway.VerifyCallback(cb)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			log.Warn("rejected callback with bad signature", zap.String("order_id", cb.OrderID))
			transport.WriteJSON(w, http.StatusOK, momoAck{ReturnCode: 0, ReturnMessage: "Invalid signature"})
			return
		}
		transport.WriteJSON(w, http.StatusOK, momoAck{ReturnCode: 0, ReturnMessage: "Failed to process callback"})
		return
	}

	if err := h.reconciler.Apply(r.Context(), *result, body); err != nil {
		log.Error("callback reconciliation failed", zap.Error(err))
		transport.WriteJSON(w, http.StatusOK, momoAck{ReturnCode: 0, ReturnMessage: "Failed to process callback"})
		return
	}

	transport.WriteJSON(w, http.StatusOK, momoAck{ReturnCode: 1, ReturnMessage: "Success"})
}
