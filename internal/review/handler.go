package review

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"furnimart-be/internal/filestore"
	"furnimart-be/internal/transport"
	"furnimart-be/internal/utils"
)

const maxReviewImages = 3

type Handler struct {
	svc   Service
	files *filestore.Store
}

func NewHandler(svc Service, files *filestore.Store) *Handler {
	return &Handler{svc: svc, files: files}
}

// Create handles POST /api/reviews (multipart form with up to three
// image files under the "images" field).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxReviewImages * filestore.MaxImageSize); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	productID, err := strconv.ParseUint(r.FormValue("productId"), 10, 64)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	rating, err := strconv.Atoi(r.FormValue("rating"))
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid rating")
		return
	}

	var images []string
	if r.MultipartForm != nil {
		files := r.MultipartForm.File["images"]
		images, err = h.files.SaveAll(files, maxReviewImages)
		if err != nil {
			transport.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	rv, err := h.svc.Create(r.Context(), CreateReviewInput{
		ProductID: uint(productID),
		UserID:    userID,
		Rating:    rating,
		Comment:   r.FormValue("comment"),
		Images:    images,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRating), errors.Is(err, ErrAlreadyReviewed), errors.Is(err, ErrBannedWord):
			transport.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			transport.WriteError(w, http.StatusInternalServerError, "failed to create review")
		}
		return
	}
	transport.WriteJSON(w, http.StatusCreated, rv)
}

// ListByProduct handles GET /api/reviews/product/{id}
func (h *Handler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	id, err := trailingID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	reviews, err := h.svc.ListByProduct(r.Context(), id)
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch reviews")
		return
	}
	transport.WriteJSON(w, http.StatusOK, reviews)
}

// ReviewedProducts handles GET /api/reviews/reviewed
func (h *Handler) ReviewedProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ids, err := h.svc.ListProductIDsByUser(r.Context(), userID)
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch reviewed products")
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string][]uint{"reviewedProducts": ids})
}

// ListPending handles GET /api/reviews/pending (staff only)
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.ListPending(r.Context())
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch reviews")
		return
	}
	transport.WriteJSON(w, http.StatusOK, reviews)
}

// Delete handles DELETE /api/reviews/{id} (staff only)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := trailingID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid review ID")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			transport.WriteError(w, http.StatusNotFound, "review not found")
			return
		}
		transport.WriteError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}
	transport.WriteMessage(w, http.StatusOK, "review deleted")
}

// Promote handles POST /api/reviews/testimonials (staff only)
func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ReviewID uint `json:"reviewId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	ts, err := h.svc.Promote(r.Context(), payload.ReviewID)
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			transport.WriteError(w, http.StatusNotFound, "review not found")
			return
		}
		transport.WriteError(w, http.StatusInternalServerError, "failed to promote review")
		return
	}
	transport.WriteJSON(w, http.StatusCreated, ts)
}

// Revert handles POST /api/reviews/testimonials/revert (staff only)
func (h *Handler) Revert(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TestimonialID uint `json:"testimonialId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	rv, err := h.svc.Revert(r.Context(), payload.TestimonialID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTestimonialNotFound):
			transport.WriteError(w, http.StatusNotFound, "testimonial not found")
		case errors.Is(err, ErrReviewNotFound):
			transport.WriteError(w, http.StatusNotFound, "source review not found")
		default:
			transport.WriteError(w, http.StatusInternalServerError, "failed to revert testimonial")
		}
		return
	}
	transport.WriteJSON(w, http.StatusOK, rv)
}

// ListTestimonials handles GET /api/reviews/testimonials
func (h *Handler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.svc.ListTestimonials(r.Context())
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch testimonials")
		return
	}
	transport.WriteJSON(w, http.StatusOK, testimonials)
}

// ListBannedWords handles GET /api/banned-words (staff only)
func (h *Handler) ListBannedWords(w http.ResponseWriter, r *http.Request) {
	words, err := h.svc.ListBannedWords(r.Context())
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to fetch banned words")
		return
	}
	transport.WriteJSON(w, http.StatusOK, words)
}

// AddBannedWord handles POST /api/banned-words (staff only)
func (h *Handler) AddBannedWord(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload struct {
		Word string `json:"word"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	bw, err := h.svc.AddBannedWord(r.Context(), payload.Word, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrWordExists), errors.Is(err, ErrEmptyWord):
			transport.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			transport.WriteError(w, http.StatusInternalServerError, "failed to add banned word")
		}
		return
	}
	transport.WriteJSON(w, http.StatusCreated, bw)
}

// DeleteBannedWord handles DELETE /api/banned-words/{id} (staff only)
func (h *Handler) DeleteBannedWord(w http.ResponseWriter, r *http.Request) {
	id, err := trailingID(r.URL.Path)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid banned word ID")
		return
	}

	if err := h.svc.DeleteBannedWord(r.Context(), id); err != nil {
		transport.WriteError(w, http.StatusNotFound, "banned word not found")
		return
	}
	transport.WriteMessage(w, http.StatusOK, "banned word deleted")
}

func trailingID(path string) (uint, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	n, err := strconv.ParseUint(parts[len(parts)-1], 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
