package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"furnimart-be/internal/order"
	"furnimart-be/internal/transport"
	"furnimart-be/internal/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type createPaymentRequest struct {
	Amount      int64                 `json:"amount"`
	Items       []order.OrderItem     `json:"items"`
	Address     order.ShippingAddress `json:"shippingAddress"`
	RedirectURL string                `json:"redirectUrl"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request,
	start func(r *http.Request, in CreatePaymentInput) (*CreatePaymentResult, error)) {

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := start(r, CreatePaymentInput{
		UserID:      userID,
		Amount:      req.Amount,
		Items:       req.Items,
		Address:     req.Address,
		RedirectURL: req.RedirectURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrValidation):
			transport.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrProviderUnavailable):
			transport.WriteError(w, http.StatusBadGateway, "payment provider unavailable")
		default:
			transport.WriteError(w, http.StatusInternalServerError, "failed to create payment")
		}
		return
	}
	transport.WriteJSON(w, http.StatusOK, result)
}

// CreateMomo handles POST /api/momo/create
func (h *Handler) CreateMomo(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, func(r *http.Request, in CreatePaymentInput) (*CreatePaymentResult, error) {
		return h.svc.CreateMomoPayment(r.Context(), in)
	})
}

// CreateZaloPay handles POST /api/zalopay/create
func (h *Handler) CreateZaloPay(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, func(r *http.Request, in CreatePaymentInput) (*CreatePaymentResult, error) {
		return h.svc.CreateZaloPayPayment(r.Context(), in)
	})
}

type statusRequest struct {
	OrderID string `json:"orderId"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request,
	query func(r *http.Request, orderID string) (*GatewayStatus, error)) {

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		transport.WriteError(w, http.StatusBadRequest, "orderId is required")
		return
	}

	st, err := query(r, req.OrderID)
	if err != nil {
		transport.WriteError(w, http.StatusBadGateway, "failed to check payment status")
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{
		"paymentStatus": string(st.Status),
	})
}

// MomoStatus handles POST /api/momo/status
func (h *Handler) MomoStatus(w http.ResponseWriter, r *http.Request) {
	h.status(w, r, func(r *http.Request, orderID string) (*GatewayStatus, error) {
		return h.svc.CheckMomoStatus(r.Context(), orderID)
	})
}

// ZaloPayStatus handles POST /api/zalopay/status
func (h *Handler) ZaloPayStatus(w http.ResponseWriter, r *http.Request) {
	h.status(w, r, func(r *http.Request, orderID string) (*GatewayStatus, error) {
		return h.svc.CheckZaloPayStatus(r.Context(), orderID)
	})
}
