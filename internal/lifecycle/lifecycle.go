// Package lifecycle holds the auction state machine:
//
//	pending -> active -> completed -> winner_selected
//
// Time-driven transitions are never scheduled. They are applied lazily by
// Reconcile at the start of every read or write on an auction, inside that
// auction's exclusive section, so every caller observes the same status.
package lifecycle

import (
	"fmt"
	"time"

	"grain-auction/internal/auctionerrors"
	"grain-auction/internal/models"
)

// Transition is one edge of the state machine
type Transition struct {
	From models.Status
	To   models.Status
}

// Reconcile advances the auction's status to what the clock implies and
// returns every edge it crossed, in order. An auction first seen after its end
// date crosses both pending->active and active->completed. Calling it again at
// the same instant returns nothing.
func Reconcile(a *models.Auction, now time.Time) []Transition {
	var steps []Transition
	for {
		next := step(*a, now)
		if next == a.Status {
			return steps
		}
		steps = append(steps, Transition{From: a.Status, To: next})
		a.Status = next
	}
}

// Derive computes the status the auction should have at now without mutating it.
func Derive(a models.Auction, now time.Time) models.Status {
	for {
		next := step(a, now)
		if next == a.Status {
			return next
		}
		a.Status = next
	}
}

func step(a models.Auction, now time.Time) models.Status {
	switch a.Status {
	case models.StatusPending:
		if !now.Before(a.StartDate) {
			return models.StatusActive
		}
	case models.StatusActive:
		if !now.Before(a.EndDate) {
			return models.StatusCompleted
		}
	}
	return a.Status
}

// AcceptsBids fails with ErrAuctionNotActive unless the reconciled status is active.
func AcceptsBids(a models.Auction) error {
	if a.Status == models.StatusActive {
		return nil
	}
	return &auctionerrors.RejectionError{
		Err:       auctionerrors.ErrAuctionNotActive,
		AuctionID: a.AuctionID,
		Status:    string(a.Status),
	}
}

// CanFinalize checks that a winner may be chosen. Early finalization is refused.
func CanFinalize(a models.Auction) error {
	var err error
	switch a.Status {
	case models.StatusCompleted:
		return nil
	case models.StatusWinnerSelected:
		err = auctionerrors.ErrAuctionAlreadyFinalized
	default:
		err = auctionerrors.ErrAuctionStillActive
	}
	return &auctionerrors.RejectionError{Err: err, AuctionID: a.AuctionID, Status: string(a.Status)}
}

// Finalize records the winning bid and moves the auction into its terminal state.
func Finalize(a *models.Auction, bidID string) error {
	if err := CanFinalize(*a); err != nil {
		return err
	}
	a.WinningBidID = bidID
	a.Status = models.StatusWinnerSelected
	return nil
}

// ParseStatus validates a status filter supplied by a caller
func ParseStatus(raw string) (models.Status, error) {
	s := models.Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown auction status %q", raw)
	}
	return s, nil
}
