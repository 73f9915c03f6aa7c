package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"furnimart-be/internal/transport"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/furniture?category=...
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch furniture")
		return
	}
	transport.WriteJSON(w, http.StatusOK, items)
}

// Get handles GET /api/furniture/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	f, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			transport.WriteError(w, http.StatusNotFound, "furniture not found")
			return
		}
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch furniture")
		return
	}
	transport.WriteJSON(w, http.StatusOK, f)
}

// Update handles PUT /api/furniture/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var params UpdateFurnitureParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	f, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			transport.WriteError(w, http.StatusNotFound, "furniture not found")
			return
		}
		transport.WriteError(w, http.StatusInternalServerError, "failed to update furniture")
		return
	}
	transport.WriteJSON(w, http.StatusOK, f)
}

// Hide handles POST /api/furniture/{id}/hide
func (h *Handler) Hide(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// Unhide handles POST /api/furniture/{id}/unhide
func (h *Handler) Unhide(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := pathID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if active {
		err = h.svc.Unhide(r.Context(), id)
	} else {
		err = h.svc.Hide(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			transport.WriteError(w, http.StatusNotFound, "furniture not found")
			return
		}
		transport.WriteError(w, http.StatusInternalServerError, "failed to update furniture")
		return
	}
	transport.WriteMessage(w, http.StatusOK, "furniture visibility updated")
}

// pathID extracts the numeric id segment from paths like
// /api/furniture/42 and /api/furniture/42/hide.
func pathID(path string) (uint, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if n, err := strconv.ParseUint(parts[i], 10, 64); err == nil {
			return uint(n), nil
		}
	}
	return 0, strconv.ErrSyntax
}
