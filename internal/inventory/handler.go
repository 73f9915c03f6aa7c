package inventory

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

type importRequest struct {
	ProductName string `json:"productName"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Material    string `json:"material"`
	Image       string `json:"image"`
	Quantity    int    `json:"quantity"`
	CostPrice   int64  `json:"originalPrice"`
	SalePrice   int64  `json:"price"`
	Supplier    string `json:"supplier"`
}

// Import handles POST /api/inventory/import (staff only).
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var in importRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if in.ProductName == "" || in.Quantity <= 0 || in.CostPrice <= 0 || in.SalePrice <= 0 || in.Supplier == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing or invalid import fields")
		return
	}

	product, err := h.svc.Import(r.Context(), ImportInput{
		ProductName: in.ProductName,
		Description: in.Description,
		Category:    in.Category,
		Material:    in.Material,
		Image:       in.Image,
		Quantity:    in.Quantity,
		CostPrice:   in.CostPrice,
		SalePrice:   in.SalePrice,
		Supplier:    in.Supplier,
	})
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to import stock")
		return
	}

	transport.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "import recorded",
		"product": product,
	})
}

// Overview handles GET /api/inventory (staff only).
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Overview(r.Context())
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch inventory data")
		return
	}
	transport.WriteJSON(w, http.StatusOK, rows)
}

// ProductBatches handles GET /api/inventory/product/{productId}.
func (h *Handler) ProductBatches(w http.ResponseWriter, r *http.Request) {
	id, err := trailingID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	batches, err := h.svc.ListByProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNoBatches) {
			transport.WriteError(w, http.StatusNotFound, "no inventory found for this product")
			return
		}
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch product inventory")
		return
	}
	transport.WriteJSON(w, http.StatusOK, batches)
}

// TotalStock handles GET /api/inventory/total/{productId}.
func (h *Handler) TotalStock(w http.ResponseWriter, r *http.Request) {
	id, err := trailingID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	total, err := h.svc.TotalRemaining(r.Context(), id)
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch total stock")
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"productId":  id,
		"totalStock": total,
	})
}

// History handles GET /api/import-history (staff only).
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ImportHistory(r.Context())
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch import history")
		return
	}
	transport.WriteJSON(w, http.StatusOK, records)
}

func trailingID(path string) (uint, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	n, err := strconv.ParseUint(parts[len(parts)-1], 10, 64)
	return uint(n), err
}
