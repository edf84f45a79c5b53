package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	auction "auction-hub/internal/auctionService"
	"auction-hub/internal/auth"
	bidding "auction-hub/internal/biddingService"
	"auction-hub/internal/notifier"
	"auction-hub/internal/registry"
	"auction-hub/internal/server"
	"auction-hub/internal/sweeper"
	handler "auction-hub/services/auction/handler"

	"github.com/gin-gonic/gin"
)

const (
	testHostSecret    = "integration-host-secret"
	testTokenSecret   = "integration-token-secret"
	testPaymentWindow = 2 * time.Minute
)

// TestEnv bundles the full stack behind an httptest-driven router.
type TestEnv struct {
	Router  *gin.Engine
	Store   *registry.Store
	Sweeper *sweeper.Sweeper
	Hub     *notifier.Hub
}

// SetupTestEnv wires the real stack: store, websocket hub, services,
// sweeper (not started; tests call Sweep directly) and the gin router.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := registry.NewStore()
	hub := notifier.NewHub(store.Release)
	go hub.Run()

	biddingSvc := bidding.NewBiddingService(store, hub)
	auctionSvc := auction.NewAuctionService(store, hub, testPaymentWindow)

	sweep, err := sweeper.NewSweeper(store, hub, time.Second)
	if err != nil {
		t.Fatalf("failed to create sweeper: %v", err)
	}

	tokenMaker := auth.NewTokenMaker(testTokenSecret, time.Hour)
	auctionHandler := handler.NewAuctionHandler(auctionSvc, biddingSvc, tokenMaker, testHostSecret, t.TempDir())
	router := server.SetupRouter(auctionHandler, tokenMaker, hub, t.TempDir())

	return &TestEnv{Router: router, Store: store, Sweeper: sweep, Hub: hub}
}

// Authenticate obtains a bearer token for the given role over HTTP.
func (env *TestEnv) Authenticate(t *testing.T, role, secret string) string {
	t.Helper()
	resp, w := env.Request(t, "POST", "/auth/token", "", map[string]any{"role": role, "secret": secret})
	if w.Code != 200 {
		t.Fatalf("authentication as %s failed with status %d: %s", role, w.Code, w.Body.String())
	}
	data := resp["data"].(map[string]any)
	return data["token"].(string)
}

// Request executes an HTTP request with an optional bearer token and
// parses the JSON response envelope.
func (env *TestEnv) Request(t *testing.T, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return resp, w
}

// Data unwraps the response envelope's data object.
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}
