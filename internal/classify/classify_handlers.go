package classify

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"imagerecog/db"
	"imagerecog/internal/account"
	"imagerecog/internal/httpx"
	"imagerecog/internal/ledger"
	"imagerecog/models"
)

// ClassifyHandlers orchestrates one classification request: authenticate,
// check the balance, fetch and classify, then commit the debit. The debit
// happens strictly after the collaborators succeed.
type ClassifyHandlers struct {
	Accounts   *account.AccountService
	Ledger     *ledger.LedgerService
	Fetcher    ImageFetcher
	Classifier Classifier
}

func NewClassifyHandlers(accounts *account.AccountService, ldgr *ledger.LedgerService, fetcher ImageFetcher, classifier Classifier) *ClassifyHandlers {
	return &ClassifyHandlers{
		Accounts:   accounts,
		Ledger:     ldgr,
		Fetcher:    fetcher,
		Classifier: classifier,
	}
}

type classifyRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url"`
}

func (h *ClassifyHandlers) Classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()

	if err := h.Accounts.VerifyCredentials(ctx, req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, account.ErrInvalidUsername):
			httpx.WriteStatus(w, models.StatusInvalidUsername, "invalid username")
		case errors.Is(err, account.ErrIncorrectPassword):
			httpx.WriteStatus(w, models.StatusIncorrectPassword, "incorrect password")
		default:
			log.Printf("Error verifying credentials for %q: %v", req.Username, err)
			httpx.WriteError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	ok, err := h.Ledger.Authorize(ctx, req.Username)
	if err != nil {
		log.Printf("Error checking balance for %q: %v", req.Username, err)
		httpx.WriteError(w, http.StatusInternalServerError, "balance check failed")
		return
	}
	if !ok {
		httpx.WriteStatus(w, models.StatusNotEnoughTokens, "not enough tokens")
		return
	}

	if req.URL == "" {
		httpx.WriteError(w, http.StatusBadRequest, "no url provided")
		return
	}

	imageData, err := h.Fetcher.Fetch(ctx, req.URL)
	if err != nil {
		log.Printf("Image fetch failed for %q: %v", req.URL, err)
		httpx.WriteError(w, http.StatusBadGateway, "could not fetch image")
		return
	}

	predictions, err := h.Classifier.Classify(ctx, imageData)
	if err != nil {
		log.Printf("Classification failed for %q: %v", req.URL, err)
		httpx.WriteError(w, http.StatusBadGateway, "classification failed")
		return
	}

	// Charge only now that the external call has succeeded. A concurrent
	// request may have spent the last token since Authorize ran; the
	// conditional decrement catches that.
	if _, err := h.Ledger.CommitDebit(ctx, req.Username); err != nil {
		if errors.Is(err, db.ErrInsufficientTokens) {
			httpx.WriteStatus(w, models.StatusNotEnoughTokens, "not enough tokens")
			return
		}
		log.Printf("Error debiting token for %q: %v", req.Username, err)
		httpx.WriteError(w, http.StatusInternalServerError, "debit failed")
		return
	}

	result := make(map[string]float64, len(predictions))
	for _, p := range predictions {
		result[p.Label] = p.Confidence * 100
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

