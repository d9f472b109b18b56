package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"imagerecog/db"
	"imagerecog/internal/account"
	"imagerecog/internal/classify"
	"imagerecog/internal/ledger"
	"imagerecog/internal/web"
	"imagerecog/models"
	"imagerecog/tests/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct{}

func (stubClassifier) Classify(ctx context.Context, image []byte) ([]classify.Prediction, error) {
	return []classify.Prediction{
		{Label: "tabby", Confidence: 0.72},
		{Label: "tiger_cat", Confidence: 0.18},
	}, nil
}

func TestAPI_EndToEnd(t *testing.T) {
	factory, cleanup := testutils.SetupTestRepositoryFactory(t)
	defer cleanup()

	userRepo := factory.NewUserRepository()
	manager := db.NewDBManager()
	defer manager.Stop()
	cfg := testutils.GetTestConfig()

	accountService := account.NewAccountService(userRepo, cfg, manager)
	ledgerService := ledger.NewLedgerService(userRepo, cfg, manager)

	// A real image server and a real fetcher, only the model is stubbed.
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(testutils.MakeTestPNG(t))
	}))
	defer imageServer.Close()

	router := web.NewRouter(
		account.NewAccountHandlers(accountService),
		classify.NewClassifyHandlers(accountService, ledgerService, classify.NewHTTPImageFetcher(), stubClassifier{}),
		ledger.NewLedgerHandlers(ledgerService),
	)

	ts := testutils.NewTestServer(t, router)
	defer ts.Close()

	ctx := context.Background()

	// Register alice: starting balance is 4.
	resp := ts.POST("/register", map[string]string{"username": "alice", "password": "pw1"})
	testutils.AssertStatusResponse(t, resp, models.StatusOK, "registered")

	balance, err := ledgerService.Balance(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, models.StartingTokens, balance)

	classifyReq := map[string]string{
		"username": "alice",
		"password": "pw1",
		"url":      imageServer.URL + "/cat.png",
	}

	// Four classifications succeed and spend the whole grant.
	for i := 0; i < models.StartingTokens; i++ {
		resp := ts.POST("/classify", classifyReq)
		var result map[string]float64
		testutils.AssertJSONResponse(t, resp, http.StatusOK, &result)
		assert.InDelta(t, 72.0, result["tabby"], 0.001)
	}

	balance, err = ledgerService.Balance(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 0, balance)

	// The fifth attempt is refused before the model is ever consulted.
	resp = ts.POST("/classify", classifyReq)
	testutils.AssertStatusResponse(t, resp, models.StatusNotEnoughTokens, "not enough tokens")

	// Admin refill resets the balance to exactly the requested amount.
	resp = ts.POST("/refill", map[string]interface{}{
		"username": "alice", "admin_pw": "test_admin_secret", "amount": 10,
	})
	testutils.AssertStatusResponse(t, resp, models.StatusOK, "refilled")

	balance, err = ledgerService.Balance(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 10, balance)

	// And classification works again.
	resp = ts.POST("/classify", classifyReq)
	var result map[string]float64
	testutils.AssertJSONResponse(t, resp, http.StatusOK, &result)
	require.Len(t, result, 2)
}
