package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/peterldowns/testy/check"

	"grain-auction/internal/auctionerrors"
	"grain-auction/internal/models"
)

var (
	start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end   = time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
)

func auction(status models.Status) models.Auction {
	return models.Auction{AuctionID: "a1", StartDate: start, EndDate: end, Status: status}
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		from models.Status
		now  time.Time
		want models.Status
	}{
		{"pending_before_start", models.StatusPending, start.Add(-time.Second), models.StatusPending},
		{"pending_at_start", models.StatusPending, start, models.StatusActive},
		{"pending_inside_window", models.StatusPending, start.Add(time.Hour), models.StatusActive},
		{"pending_skips_to_completed", models.StatusPending, end.Add(time.Hour), models.StatusCompleted},
		{"active_before_end", models.StatusActive, end.Add(-time.Nanosecond), models.StatusActive},
		{"active_at_end", models.StatusActive, end, models.StatusCompleted},
		{"completed_stays", models.StatusCompleted, end.Add(time.Hour), models.StatusCompleted},
		{"winner_selected_is_terminal", models.StatusWinnerSelected, end.Add(24 * time.Hour), models.StatusWinnerSelected},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			check.Equal(t, tc.want, Derive(auction(tc.from), tc.now))
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	a := auction(models.StatusPending)
	now := start.Add(time.Minute)

	steps := Reconcile(&a, now)
	check.Equal(t, []Transition{{From: models.StatusPending, To: models.StatusActive}}, steps)
	check.Equal(t, models.StatusActive, a.Status)

	check.Equal(t, 0, len(Reconcile(&a, now)))
	check.Equal(t, models.StatusActive, a.Status)
}

func TestReconcile_PendingPastEndCrossesEveryEdge(t *testing.T) {
	a := auction(models.StatusPending)

	steps := Reconcile(&a, end.Add(time.Hour))
	check.Equal(t, []Transition{
		{From: models.StatusPending, To: models.StatusActive},
		{From: models.StatusActive, To: models.StatusCompleted},
	}, steps)
	check.Equal(t, models.StatusCompleted, a.Status)
}

func TestAcceptsBids(t *testing.T) {
	check.NoError(t, AcceptsBids(auction(models.StatusActive)))

	for _, status := range []models.Status{models.StatusPending, models.StatusCompleted, models.StatusWinnerSelected} {
		err := AcceptsBids(auction(status))
		check.True(t, errors.Is(err, auctionerrors.ErrAuctionNotActive))

		var rejection *auctionerrors.RejectionError
		check.True(t, errors.As(err, &rejection))
		check.Equal(t, string(status), rejection.Status)
	}
}

func TestFinalize(t *testing.T) {
	a := auction(models.StatusActive)
	err := Finalize(&a, "bid-1")
	check.True(t, errors.Is(err, auctionerrors.ErrAuctionStillActive))
	check.Equal(t, "", a.WinningBidID)

	a = auction(models.StatusPending)
	check.True(t, errors.Is(Finalize(&a, "bid-1"), auctionerrors.ErrAuctionStillActive))

	a = auction(models.StatusCompleted)
	check.NoError(t, Finalize(&a, "bid-1"))
	check.Equal(t, models.StatusWinnerSelected, a.Status)
	check.Equal(t, "bid-1", a.WinningBidID)

	err = Finalize(&a, "bid-2")
	check.True(t, errors.Is(err, auctionerrors.ErrAuctionAlreadyFinalized))
	check.Equal(t, "bid-1", a.WinningBidID)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("winner_selected")
	check.NoError(t, err)
	check.Equal(t, models.StatusWinnerSelected, s)

	_, err = ParseStatus("open")
	check.Error(t, err)
}
