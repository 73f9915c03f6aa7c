package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"furnimart-be/internal/inventory"
	"furnimart-be/internal/transport"
	"furnimart-be/internal/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /api/orders
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var in CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	in.UserID = userID

	o, err := h.svc.Create(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			transport.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, inventory.ErrInsufficientStock):
			transport.WriteError(w, http.StatusConflict, "insufficient stock for one or more items")
		default:
			transport.WriteError(w, http.StatusInternalServerError, "failed to create order")
		}
		return
	}
	transport.WriteJSON(w, http.StatusCreated, o)
}

// ListMine handles GET /api/orders
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch orders")
		return
	}
	transport.WriteJSON(w, http.StatusOK, orders)
}

// ListAll handles GET /api/orders/all (staff only, optional search filters)
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	var (
		orders []Order
		err    error
	)
	q := r.URL.Query()
	switch {
	case q.Get("phone") != "":
		orders, err = h.svc.SearchByPhone(r.Context(), q.Get("phone"))
	case q.Get("customer") != "":
		orders, err = h.svc.SearchByCustomerName(r.Context(), q.Get("customer"))
	default:
		orders, err = h.svc.ListAll(r.Context())
	}
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch orders")
		return
	}
	transport.WriteJSON(w, http.StatusOK, orders)
}

// Count handles GET /api/orders/count (staff only)
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Count(r.Context())
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to count orders")
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// Detail handles GET /api/orders/{id}
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := orderPathID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	role := utils.GetUserRoleFromContext(r.Context())
	isStaff := role == utils.RoleStaff || role == utils.RoleCourier

	o, err := h.svc.GetDetail(r.Context(), userID, id, isStaff)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			transport.WriteError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, ErrUnauthorized):
			transport.WriteError(w, http.StatusForbidden, "you do not have access to this order")
		default:
			transport.WriteError(w, http.StatusInternalServerError, "failed to fetch order")
		}
		return
	}
	transport.WriteJSON(w, http.StatusOK, o)
}

// UpdateStatus handles PATCH /api/orders/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderPathID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var payload struct {
		Status OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	role := utils.GetUserRoleFromContext(r.Context())

	o, err := h.svc.Transition(r.Context(), id, payload.Status, role)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			transport.WriteError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, ErrInvalidTransition):
			transport.WriteError(w, http.StatusConflict, "status transition not allowed")
		case errors.Is(err, ErrValidation):
			transport.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			transport.WriteError(w, http.StatusInternalServerError, "failed to update order status")
		}
		return
	}
	transport.WriteJSON(w, http.StatusOK, o)
}

// orderPathID extracts the numeric id from paths like /api/orders/42
// and /api/orders/42/status.
func orderPathID(path string) (uint, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if n, err := strconv.ParseUint(parts[i], 10, 64); err == nil {
			return uint(n), nil
		}
	}
	return 0, strconv.ErrSyntax
}
