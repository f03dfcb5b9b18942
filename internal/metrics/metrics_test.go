package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"grain-auction/internal/auctionerrors"
	"grain-auction/internal/models"
)

func TestReason(t *testing.T) {
	t.Parallel()

	require.Equal(t, "bid_too_low", Reason(fmt.Errorf("service: %w", &auctionerrors.RejectionError{Err: auctionerrors.ErrBidTooLow})))
	require.Equal(t, "not_accredited", Reason(fmt.Errorf("access: %w", auctionerrors.ErrNotAccredited)))
	require.Equal(t, "dependency_unavailable", Reason(auctionerrors.Unavailable("store", errors.New("down"))))
	require.Equal(t, "internal", Reason(errors.New("boom")))
}

func TestRecorder_Counters(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.BidAccepted()
	r.BidAccepted()
	r.BidRejected(auctionerrors.ErrBidTooLow)
	r.BidRejected(auctionerrors.ErrAuctionNotActive)
	r.BidRejected(auctionerrors.ErrBidTooLow)
	r.WinnerSelected()
	r.AuctionCreated()
	r.Transition("a1", models.StatusPending, models.StatusActive)
	r.Observe("place_bid", nil, 3*time.Millisecond)
	r.Observe("place_bid", auctionerrors.ErrBidTooLow, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(r.bidsAccepted))
	require.Equal(t, 2.0, testutil.ToFloat64(r.bidsRejected.WithLabelValues("bid_too_low")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.bidsRejected.WithLabelValues("auction_not_active")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.winners))
	require.Equal(t, 1.0, testutil.ToFloat64(r.auctionCreated))
	require.Equal(t, 1.0, testutil.ToFloat64(r.transitions.WithLabelValues("pending", "active")))
	require.Equal(t, 2, testutil.CollectAndCount(r.opDuration))
}

func TestRecorder_Handler(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.BidAccepted()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "grain_auction_bids_accepted_total 1")
}
