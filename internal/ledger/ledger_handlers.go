package ledger

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"imagerecog/db"
	"imagerecog/internal/httpx"
	"imagerecog/models"
)

type LedgerHandlers struct {
	Service *LedgerService
}

func NewLedgerHandlers(service *LedgerService) *LedgerHandlers {
	return &LedgerHandlers{Service: service}
}

type refillRequest struct {
	Username string `json:"username"`
	AdminPW  string `json:"admin_pw"`
	Amount   int    `json:"amount"`
}

func (h *LedgerHandlers) Refill(w http.ResponseWriter, r *http.Request) {
	var req refillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The ledger trusts the amount it is handed, validation happens here.
	if req.Amount < 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	err := h.Service.Refill(r.Context(), req.Username, req.Amount, req.AdminPW)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			httpx.WriteStatus(w, models.StatusInvalidUsername, "invalid username")
		case errors.Is(err, ErrUnauthorized):
			httpx.WriteStatus(w, models.StatusIncorrectPassword, "incorrect admin password")
		default:
			log.Printf("Error refilling tokens for %q: %v", req.Username, err)
			httpx.WriteError(w, http.StatusInternalServerError, "refill failed")
		}
		return
	}

	httpx.WriteStatus(w, models.StatusOK, "refilled")
}

