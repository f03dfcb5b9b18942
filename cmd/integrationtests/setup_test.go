package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"grain-auction/internal/access"
	"grain-auction/internal/archive"
	bidding "grain-auction/internal/biddingService"
	"grain-auction/internal/catalog"
	"grain-auction/internal/metrics"
	"grain-auction/internal/models"
	"grain-auction/internal/registry"
	"grain-auction/internal/repository"
	"grain-auction/internal/server"

	"github.com/gin-gonic/gin"
)

var (
	windowStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
)

// Clock is a settable time source shared with the registry
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// TestEnv is a fully wired server over in-memory collaborators
type TestEnv struct {
	Router    *gin.Engine
	Clock     *Clock
	Store     repository.AuctionStore
	Directory *access.StaticDirectory
	Archive   *archive.MemoryArchive
}

// SetupTestEnv wires the router against the given store with the clock before the test window.
func SetupTestEnv(t *testing.T, store repository.AuctionStore) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &TestEnv{
		Clock: &Clock{now: windowStart.Add(-time.Hour)},
		Store: store,
		Directory: access.NewStaticDirectory(
			models.User{UserID: "admin", FullName: "Admin", Role: models.RoleAdmin, Accreditation: models.AccreditationApproved},
			models.User{UserID: "buyer-a", FullName: "Buyer A", Company: "Alpha Agro", Email: "a@example.com", Role: models.RoleBuyer, Accreditation: models.AccreditationApproved},
			models.User{UserID: "buyer-b", FullName: "Buyer B", Company: "Beta Grain", Email: "b@example.com", Role: models.RoleBuyer, Accreditation: models.AccreditationApproved},
			models.User{UserID: "buyer-pending", FullName: "Pending", Role: models.RoleBuyer, Accreditation: models.AccreditationPending},
		),
		Archive: archive.NewMemoryArchive(),
	}

	reg := registry.New(store, env.Clock.Now)
	if err := reg.Restore(t.Context()); err != nil {
		t.Fatalf("failed to restore registry: %v", err)
	}
	recorder := metrics.NewRecorder()
	service := bidding.NewAuctionService(reg, access.NewGate(env.Directory), catalog.Default(),
		bidding.WithArchive(env.Archive),
		bidding.WithMetrics(recorder),
	)
	env.Router = server.SetupRouter(service, recorder)
	return env
}

// SetupTestRouter initializes the router with an in-memory repository for integration testing.
func SetupTestRouter(t *testing.T) *TestEnv {
	return SetupTestEnv(t, repository.NewMemoryRepo())
}

// ExecuteRequest executes an HTTP request as userID and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url, userID string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(server.UserHeader, userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, userID string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(t, router, method, url, userID, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}
