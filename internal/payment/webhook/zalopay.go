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

// ZaloPayHandler receives ZaloPay server callbacks. ZaloPay expects a
// JSON body with return_code 1 on success, -1 on a MAC mismatch and 0
// on processing failure; it retries anything that is not 1.
type ZaloPayHandler struct {
	gateway    *payment.ZaloPayGateway
	reconciler *payment.Reconciler
}

func NewZaloPayHandler(gateway *payment.ZaloPayGateway, reconciler *payment.Reconciler) *ZaloPayHandler {
	return &ZaloPayHandler{gateway: gateway, reconciler: reconciler}
}

type zaloPayAck struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
}

// Callback handles POST /api/zalopay/callback
func (h *ZaloPayHandler) Callback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(zap.String("provider", payment.ProviderZaloPay))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	var cb payment.ZaloPayCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := h.gateway.VerifyCallback(r.Context(), cb)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			log.Warn("rejected callback with bad MAC")
			transport.WriteJSON(w, http.StatusOK, zaloPayAck{ReturnCode: -1, ReturnMessage: "Invalid MAC"})
			return
		}
		log.Error("callback verification failed", zap.Error(err))
		transport.WriteJSON(w, http.StatusOK, zaloPayAck{ReturnCode: 0, ReturnMessage: err.Error()})
		return
	}

	if err := h.reconciler.Apply(r.Context(), *result, body); err != nil {
		log.Error("callback reconciliation failed", zap.Error(err))
		transport.WriteJSON(w, http.StatusOK, zaloPayAck{ReturnCode: 0, ReturnMessage: "Failed to process callback"})
		return
	}

	transport.WriteJSON(w, http.StatusOK, zaloPayAck{ReturnCode: 1, ReturnMessage: "Success"})
}
