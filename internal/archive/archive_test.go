package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"grain-auction/internal/models"
)

func sampleResult(auctionID string) models.AuctionResult {
	winning := models.Bid{
		BidID:            "bid-2",
		AuctionID:        auctionID,
		BidderID:         "buyer-b",
		BidderCompany:    "Agro Trade LLC",
		Amount:           decimal.RequireFromString("1021"),
		PaymentType:      models.PaymentCashless,
		DeliveryLocation: "Odesa",
		Sequence:         2,
	}
	return models.AuctionResult{
		Auction: models.Auction{
			AuctionID:     auctionID,
			Status:        models.StatusWinnerSelected,
			StartingPrice: decimal.RequireFromString("1000"),
			WinningBidID:  winning.BidID,
		},
		WinningBid:  winning,
		Ranking:     []models.Bid{winning, {BidID: "bid-1", AuctionID: auctionID, Amount: decimal.RequireFromString("1010"), Sequence: 1}},
		FinalizedBy: "admin",
		FinalizedAt: time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC),
	}
}

func TestMemoryArchive_WriteOnce(t *testing.T) {
	t.Parallel()

	a := NewMemoryArchive()
	ctx := context.Background()

	require.NoError(t, a.PutResult(ctx, sampleResult("a1")))
	require.Error(t, a.PutResult(ctx, sampleResult("a1")))
	require.NoError(t, a.PutResult(ctx, sampleResult("a0")))
	require.Equal(t, []string{"results/a0.json", "results/a1.json"}, a.Keys())

	got, ok, err := a.Get("a1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "bid-2", got.WinningBid.BidID)
	require.True(t, got.WinningBid.Amount.Equal(decimal.RequireFromString("1021")))
	require.Len(t, got.Ranking, 2)
	require.Equal(t, "admin", got.FinalizedBy)

	_, ok, err = a.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	require.NoError(t, Discard{}.PutResult(context.Background(), sampleResult("a1")))
}

type capturedRequest struct {
	method      string
	path        string
	contentType string
	auctionMeta string
	body        string
}

func TestS3Archive_PutResult(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		captured = append(captured, capturedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			auctionMeta: r.Header.Get("X-Amz-Meta-Auction-Id"),
			body:        string(body),
		})
		mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a, err := NewS3Archive(context.Background(), S3Config{
		Bucket:          "auction-results",
		Region:          "eu-central-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test-secret",
		PathStyle:       true,
		HTTPClient:      srv.Client(),
	})
	require.NoError(t, err)

	require.NoError(t, a.PutResult(context.Background(), sampleResult("a-42")))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, captured, 1)
	req := captured[0]
	require.Equal(t, http.MethodPut, req.method)
	require.Equal(t, "/auction-results/results/a-42.json", req.path)
	require.Equal(t, "application/json", req.contentType)
	require.Equal(t, "a-42", req.auctionMeta)
	require.Contains(t, req.body, `"winning_bid_id": "bid-2"`)
}

func TestS3Archive_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	}))
	defer srv.Close()

	a, err := NewS3Archive(context.Background(), S3Config{
		Bucket:          "auction-results",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test-secret",
		PathStyle:       true,
		HTTPClient:      srv.Client(),
	})
	require.NoError(t, err)

	err = a.PutResult(context.Background(), sampleResult("a-43"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "results/a-43.json")
}

func TestNewS3Archive_RequiresBucket(t *testing.T) {
	t.Parallel()
	_, err := NewS3Archive(context.Background(), S3Config{})
	require.Error(t, err)
}
