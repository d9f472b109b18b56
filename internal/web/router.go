package web

import (
	"net/http"

	"imagerecog/internal/account"
	"imagerecog/internal/classify"
	"imagerecog/internal/httpx"
	"imagerecog/internal/ledger"

	"github.com/gorilla/mux"
)

// NewRouter wires the three API endpoints onto a mux router.
func NewRouter(accounts *account.AccountHandlers, classifier *classify.ClassifyHandlers, tokens *ledger.LedgerHandlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/register", accounts.Register).Methods("POST")
	r.HandleFunc("/classify", classifier.Classify).Methods("POST")
	r.HandleFunc("/refill", tokens.Refill).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(notFound)

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, http.StatusNotFound, "not found")
}
