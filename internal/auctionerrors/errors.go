package auctionerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Lookup errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrGrainNotFound   = errors.New("grain not found in catalog")
)

// Auction creation errors
var (
	ErrInvalidWindow   = errors.New("end date must be after start date")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidPrice    = errors.New("starting price must be positive")
)

// Bidding and finalization errors
var (
	ErrNotAccredited           = errors.New("bidder accreditation is not approved")
	ErrAuctionNotActive        = errors.New("auction is not active")
	ErrAuctionStillActive      = errors.New("auction is still active")
	ErrAuctionAlreadyFinalized = errors.New("auction winner already selected")
	ErrBidTooLow               = errors.New("bid amount too low")
	ErrInvalidBidFields        = errors.New("invalid bid fields")
	ErrBidNotInAuction         = errors.New("bid does not belong to auction")
	ErrForbidden               = errors.New("operation not permitted for user")
)

// ErrDependencyUnavailable marks failures of the identity directory or the
// auction store. State is never partially mutated when it is returned.
var ErrDependencyUnavailable = errors.New("dependency unavailable")

// RejectionError carries the auction state a client needs to correct a rejected request.
type RejectionError struct {
	Err            error
	AuctionID      string
	Status         string
	CurrentHighest decimal.Decimal
	MinimumNextBid decimal.Decimal
}

func (e *RejectionError) Error() string {
	if e.MinimumNextBid.IsZero() {
		return fmt.Sprintf("%v (auction %s, status %s)", e.Err, e.AuctionID, e.Status)
	}
	return fmt.Sprintf("%v (auction %s, status %s, current highest %s, minimum next bid %s)",
		e.Err, e.AuctionID, e.Status, e.CurrentHighest.String(), e.MinimumNextBid.String())
}

func (e *RejectionError) Unwrap() error { return e.Err }

// Details renders the rejection context for API responses
func (e *RejectionError) Details() map[string]any {
	details := map[string]any{
		"auction_id": e.AuctionID,
		"status":     e.Status,
	}
	if !e.CurrentHighest.IsZero() {
		details["current_highest"] = e.CurrentHighest.String()
	}
	if !e.MinimumNextBid.IsZero() {
		details["minimum_next_bid"] = e.MinimumNextBid.String()
	}
	return details
}

// Unavailable wraps a collaborator failure as ErrDependencyUnavailable while keeping the cause.
func Unavailable(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDependencyUnavailable, cause)
}
