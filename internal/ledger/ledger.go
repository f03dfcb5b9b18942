// Package ledger keeps the append-only, sequence-numbered record of bids for
// one auction. A Ledger is not safe for concurrent use on its own: callers
// hold the owning auction's exclusive section for every call.
package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"grain-auction/internal/auctionerrors"
	"grain-auction/internal/models"
)

// minIncrementRate is the minimum step a new bid must clear over the current highest (1%).
var minIncrementRate = decimal.New(1, -2)

var incrementFactor = decimal.NewFromInt(1).Add(minIncrementRate)

// MinimumNext returns the lowest amount that beats current under the increment rule.
func MinimumNext(current decimal.Decimal) decimal.Decimal {
	return current.Mul(incrementFactor)
}

// Ledger is the per-auction bid log
type Ledger struct {
	auctionID     string
	startingPrice decimal.Decimal
	bids          []models.Bid
	byID          map[string]int
	bidders       map[string]int
	highest       int // index into bids, -1 while empty
	nextSeq       int64
}

// New returns an empty ledger bound to auctionID
func New(auctionID string, startingPrice decimal.Decimal) *Ledger {
	return &Ledger{
		auctionID:     auctionID,
		startingPrice: startingPrice,
		byID:          make(map[string]int),
		bidders:       make(map[string]int),
		highest:       -1,
		nextSeq:       1,
	}
}

// AuctionID returns the auction this ledger belongs to
func (l *Ledger) AuctionID() string { return l.auctionID }

// CurrentHighest is the highest accepted amount, or the starting price when empty.
func (l *Ledger) CurrentHighest() decimal.Decimal {
	if l.highest < 0 {
		return l.startingPrice
	}
	return l.bids[l.highest].Amount
}

// MinimumNext is the smallest amount the next bid may carry
func (l *Ledger) MinimumNext() decimal.Decimal {
	return MinimumNext(l.CurrentHighest())
}

// BidCount returns the number of accepted bids
func (l *Ledger) BidCount() int { return len(l.bids) }

// Highest returns the current leading bid
func (l *Ledger) Highest() (models.Bid, bool) {
	if l.highest < 0 {
		return models.Bid{}, false
	}
	return l.bids[l.highest], true
}

// Find returns the bid with the given id if it is in this ledger
func (l *Ledger) Find(bidID string) (models.Bid, bool) {
	idx, ok := l.byID[bidID]
	if !ok {
		return models.Bid{}, false
	}
	return l.bids[idx], true
}

// HasBidder reports whether userID has at least one bid in the ledger
func (l *Ledger) HasBidder(userID string) bool {
	return l.bidders[userID] > 0
}

// ValidateFields checks the parts of a bid that do not depend on ledger state.
func ValidateFields(amount decimal.Decimal, payment models.PaymentType, location string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", auctionerrors.ErrInvalidBidFields, amount.String())
	}
	if !payment.Valid() {
		return fmt.Errorf("%w: payment type %q must be %q or %q",
			auctionerrors.ErrInvalidBidFields, payment, models.PaymentCashless, models.PaymentCash)
	}
	if strings.TrimSpace(location) == "" {
		return fmt.Errorf("%w: delivery location is required", auctionerrors.ErrInvalidBidFields)
	}
	return nil
}

// Prepare validates a candidate bid against the ledger and assigns it the next
// sequence number. Nothing is recorded until Commit is called with the result.
func (l *Ledger) Prepare(bid models.Bid) (models.Bid, error) {
	if err := ValidateFields(bid.Amount, bid.PaymentType, bid.DeliveryLocation); err != nil {
		return models.Bid{}, err
	}
	if bid.AuctionID != l.auctionID {
		return models.Bid{}, fmt.Errorf("%w: bid targets auction %s, ledger holds %s",
			auctionerrors.ErrBidNotInAuction, bid.AuctionID, l.auctionID)
	}
	if _, dup := l.byID[bid.BidID]; dup {
		return models.Bid{}, fmt.Errorf("%w: duplicate bid id %s", auctionerrors.ErrInvalidBidFields, bid.BidID)
	}

	minimum := l.MinimumNext()
	if bid.Amount.LessThan(minimum) {
		return models.Bid{}, &auctionerrors.RejectionError{
			Err:            auctionerrors.ErrBidTooLow,
			AuctionID:      l.auctionID,
			Status:         string(models.StatusActive),
			CurrentHighest: l.CurrentHighest(),
			MinimumNextBid: minimum,
		}
	}

	bid.Sequence = l.nextSeq
	return bid, nil
}

// Commit appends a bid returned by Prepare. It fails if another bid was
// committed in between, which would mean the caller broke the exclusive section.
func (l *Ledger) Commit(bid models.Bid) error {
	if bid.Sequence != l.nextSeq {
		return fmt.Errorf("ledger %s: commit out of order: sequence %d, expected %d", l.auctionID, bid.Sequence, l.nextSeq)
	}
	if bid.Amount.LessThan(l.MinimumNext()) {
		return fmt.Errorf("ledger %s: commit of bid %s below minimum %s", l.auctionID, bid.BidID, l.MinimumNext())
	}
	l.append(bid)
	return nil
}

func (l *Ledger) append(bid models.Bid) {
	l.bids = append(l.bids, bid)
	idx := len(l.bids) - 1
	l.byID[bid.BidID] = idx
	l.bidders[bid.BidderID]++
	if l.highest < 0 || bid.Amount.GreaterThan(l.bids[l.highest].Amount) {
		l.highest = idx
	}
	l.nextSeq = bid.Sequence + 1
}

// Restore rebuilds the ledger from persisted bids in sequence order.
// Sequences must start at 1 and have no gaps.
func (l *Ledger) Restore(bids []models.Bid) error {
	for _, bid := range bids {
		if bid.AuctionID != l.auctionID {
			return fmt.Errorf("ledger %s: restore bid %s of auction %s", l.auctionID, bid.BidID, bid.AuctionID)
		}
		if bid.Sequence != l.nextSeq {
			return fmt.Errorf("ledger %s: restore gap at sequence %d, got %d", l.auctionID, l.nextSeq, bid.Sequence)
		}
		l.append(bid)
	}
	return nil
}

// Ranked returns a copy of the bids ordered by amount descending, then sequence ascending.
func (l *Ledger) Ranked() []models.Bid {
	out := make([]models.Bid, len(l.bids))
	copy(out, l.bids)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

// Rank returns the 1-based ranking position of bidID, or 0 if it is unknown.
func (l *Ledger) Rank(bidID string) int {
	target, ok := l.Find(bidID)
	if !ok {
		return 0
	}
	rank := 1
	for _, b := range l.bids {
		if b.BidID == bidID {
			continue
		}
		c := b.Amount.Cmp(target.Amount)
		if c > 0 || (c == 0 && b.Sequence < target.Sequence) {
			rank++
		}
	}
	return rank
}
