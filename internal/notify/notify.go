// Package notify informs auction winners. Delivery is an external concern;
// the LogNotifier only records the message, as the e-mail stub it replaces did.
package notify

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"grain-auction/internal/models"
	"grain-auction/utils"
)

// WinnerNotice is what the winning bidder is told
type WinnerNotice struct {
	AuctionID  string
	BidID      string
	User       models.User
	GrainType  string
	Category   int
	Quantity   decimal.Decimal
	WinningBid decimal.Decimal
}

// Subject renders the notice headline
func (n WinnerNotice) Subject() string {
	return fmt.Sprintf("You won auction %s", n.AuctionID)
}

// Body renders the notice text
func (n WinnerNotice) Body() string {
	return fmt.Sprintf("Congratulations, %s!\n\nYour bid won the auction.\n\n- Grain: %s (category %d)\n- Quantity: %s t\n- Your bid: %s UAH\n\nWe will contact you shortly to agree on the details.",
		n.User.FullName, n.GrainType, n.Category, n.Quantity.String(), n.WinningBid.String())
}

// Notifier delivers winner notices
type Notifier interface {
	NotifyWinner(ctx context.Context, notice WinnerNotice) error
}

// LogNotifier writes notices to the structured log
type LogNotifier struct{}

// NotifyWinner implements Notifier
func (LogNotifier) NotifyWinner(_ context.Context, n WinnerNotice) error {
	if n.User.Email == "" && n.User.UserID == "" {
		return fmt.Errorf("notify: winner of auction %s has no address", n.AuctionID)
	}
	utils.Info("winner notification", map[string]any{
		"to":         n.User.Email,
		"user_id":    n.User.UserID,
		"auction_id": n.AuctionID,
		"bid_id":     n.BidID,
		"subject":    n.Subject(),
		"body":       n.Body(),
	})
	return nil
}
