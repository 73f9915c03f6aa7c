package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"furnimart-be/internal/catalog"
	"furnimart-be/internal/transport"
	"furnimart-be/internal/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/cart
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := h.svc.List(r.Context(), userID)
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch cart")
		return
	}
	transport.WriteJSON(w, http.StatusOK, items)
}

// Add handles POST /api/cart
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var params AddItemParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	params.UserID = userID

	item, err := h.svc.Add(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, ErrBadQuantity):
			transport.WriteError(w, http.StatusBadRequest, "quantity must be greater than zero")
		case errors.Is(err, catalog.ErrProductNotFound):
			transport.WriteError(w, http.StatusNotFound, "product not available")
		default:
			transport.WriteError(w, http.StatusInternalServerError, "failed to add to cart")
		}
		return
	}
	transport.WriteJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/cart/{productId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	productID, err := cartPathID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.svc.SetQuantity(r.Context(), userID, productID, payload.Quantity); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			transport.WriteError(w, http.StatusNotFound, "cart item not found")
			return
		}
		transport.WriteError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	transport.WriteMessage(w, http.StatusOK, "cart updated")
}

// Remove handles DELETE /api/cart/{productId}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	productID, err := cartPathID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.svc.Remove(r.Context(), userID, productID); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			transport.WriteError(w, http.StatusNotFound, "cart item not found")
			return
		}
		transport.WriteError(w, http.StatusInternalServerError, "failed to remove cart item")
		return
	}
	transport.WriteMessage(w, http.StatusOK, "cart item removed")
}

// Clear handles DELETE /api/cart
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.svc.Clear(r.Context(), userID); err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	transport.WriteMessage(w, http.StatusOK, "cart cleared")
}

func cartPathID(path string) (uint, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	last := parts[len(parts)-1]
	n, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
