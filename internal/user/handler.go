package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"furnimart-be/internal/transport"
	"furnimart-be/internal/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type credentialsInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in credentialsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if in.Email == "" || in.Password == "" {
		transport.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, u, err := h.svc.Register(r.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			transport.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		transport.WriteError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	transport.WriteJSON(w, http.StatusCreated, authResponse{
		Token: token, ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentialsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	token, u, err := h.svc.Login(in.Email, in.Password)
	if err != nil {
		transport.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	transport.WriteJSON(w, http.StatusOK, authResponse{
		Token: token, ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role),
	})
}

type profileResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Me handles GET /api/users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	u, err := h.svc.GetByID(r.Context(), userID)
	if err != nil {
		transport.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	transport.WriteJSON(w, http.StatusOK, profileResponse{
		ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role),
	})
}
