package account

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"imagerecog/internal/httpx"
	"imagerecog/models"
)

type AccountHandlers struct {
	Service *AccountService
}

func NewAccountHandlers(service *AccountService) *AccountHandlers {
	return &AccountHandlers{Service: service}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AccountHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	err := h.Service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			httpx.WriteStatus(w, models.StatusInvalidUsername, "user already exists")
			return
		}
		log.Printf("Error registering user: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	httpx.WriteStatus(w, models.StatusOK, "registered")
}
