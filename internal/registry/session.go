package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grain-auction/internal/auctionerrors"
	"grain-auction/internal/lifecycle"
	"grain-auction/internal/models"
)

// Session is the exclusive handle on one auction given to Exclusive callbacks.
// It is only valid for the duration of the callback.
type Session struct {
	ctx context.Context
	reg *Registry
	e   *entry
	now time.Time
}

// Now is the instant the session reconciled against
func (s *Session) Now() time.Time { return s.now }

// Auction returns a copy of the reconciled auction
func (s *Session) Auction() models.Auction { return s.e.auction.Clone() }

// Summary returns the read model of the auction at this instant
func (s *Session) Summary() models.AuctionSummary { return summarize(s.e) }

// Ranked returns the ledger ordered for presentation
func (s *Session) Ranked() []models.Bid { return s.e.ledger.Ranked() }

// Rank returns the 1-based position of bidID in the ranking
func (s *Session) Rank(bidID string) int { return s.e.ledger.Rank(bidID) }

// FindBid looks a bid up in this auction's ledger
func (s *Session) FindBid(bidID string) (models.Bid, bool) { return s.e.ledger.Find(bidID) }

// HasBidder reports whether userID has bid on this auction
func (s *Session) HasBidder(userID string) bool { return s.e.ledger.HasBidder(userID) }

// CheckNotFinalized fails with ErrAuctionAlreadyFinalized once a winner is recorded,
// whatever the caller intends to do next.
func (s *Session) CheckNotFinalized() error {
	if s.e.auction.Status != models.StatusWinnerSelected {
		return nil
	}
	return s.reject(auctionerrors.ErrAuctionAlreadyFinalized)
}

func (s *Session) reject(err error) error {
	return s.withState(&auctionerrors.RejectionError{Err: err})
}

// withState fills the auction state into a rejection so clients can correct and retry
func (s *Session) withState(err error) error {
	var rejection *auctionerrors.RejectionError
	if !errors.As(err, &rejection) {
		return err
	}
	if rejection.AuctionID == "" {
		rejection.AuctionID = s.e.auction.AuctionID
	}
	if rejection.Status == "" {
		rejection.Status = string(s.e.auction.Status)
	}
	if rejection.CurrentHighest.IsZero() {
		rejection.CurrentHighest = s.e.ledger.CurrentHighest()
	}
	return err
}

// PlaceBid appends candidate if the auction is active and the increment rule
// holds. The bid is written to the store before it becomes visible in memory.
func (s *Session) PlaceBid(candidate models.Bid) (models.Bid, error) {
	if err := lifecycle.AcceptsBids(s.e.auction); err != nil {
		return models.Bid{}, s.withState(err)
	}
	candidate.AuctionID = s.e.auction.AuctionID
	candidate.CreatedAt = s.now

	bid, err := s.e.ledger.Prepare(candidate)
	if err != nil {
		return models.Bid{}, err
	}
	if err := s.reg.store.AppendBid(s.ctx, bid); err != nil {
		return models.Bid{}, auctionerrors.Unavailable("registry: append bid", err)
	}
	if err := s.e.ledger.Commit(bid); err != nil {
		return models.Bid{}, fmt.Errorf("registry: %w", err)
	}
	s.reg.bidIndex.Store(bid.BidID, bid.AuctionID)
	return bid, nil
}

// Finalize marks bidID as the winner and moves the auction to winner_selected.
func (s *Session) Finalize(bidID string) (models.Auction, error) {
	if err := s.CheckNotFinalized(); err != nil {
		return models.Auction{}, err
	}
	if _, ok := s.e.ledger.Find(bidID); !ok {
		return models.Auction{}, fmt.Errorf("registry: %w - bid %s, auction %s",
			auctionerrors.ErrBidNotInAuction, bidID, s.e.auction.AuctionID)
	}
	working := s.e.auction.Clone()
	previous := working.Status
	if err := lifecycle.Finalize(&working, bidID); err != nil {
		return models.Auction{}, s.withState(err)
	}
	if err := s.reg.store.SaveAuction(s.ctx, working); err != nil {
		return models.Auction{}, auctionerrors.Unavailable("registry: save winner", err)
	}
	s.e.auction = working
	if s.reg.onTransition != nil {
		s.reg.onTransition(working.AuctionID, previous, working.Status)
	}
	return working.Clone(), nil
}
