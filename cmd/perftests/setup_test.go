package perftests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"grain-auction/internal/access"
	bidding "grain-auction/internal/biddingService"
	"grain-auction/internal/catalog"
	"grain-auction/internal/models"
	"grain-auction/internal/registry"
	"grain-auction/internal/repository"
	"grain-auction/utils"

	"github.com/shopspring/decimal"
)

const benchAdmin = "bench-admin"

var startingPrice = decimal.NewFromInt(1000)

func init() {
	// keep per-request logging out of the measurements
	_ = utils.ConfigureLogger("error", nil)
}

func buyerID(i int) string { return fmt.Sprintf("buyer_%d", i) }

// setupService wires a service over the memory store with numBuyers approved buyers
func setupService(tb testing.TB, numBuyers int) *bidding.AuctionService {
	tb.Helper()
	users := []models.User{{UserID: benchAdmin, FullName: "Bench Admin", Role: models.RoleAdmin, Accreditation: models.AccreditationApproved}}
	for i := 0; i < numBuyers; i++ {
		users = append(users, models.User{
			UserID:        buyerID(i),
			FullName:      fmt.Sprintf("Buyer %d", i),
			Company:       fmt.Sprintf("Company %d", i),
			Role:          models.RoleBuyer,
			Accreditation: models.AccreditationApproved,
		})
	}
	reg := registry.New(repository.NewMemoryRepo(), nil)
	return bidding.NewAuctionService(reg, access.NewGate(access.NewStaticDirectory(users...)), catalog.Default())
}

// createActiveAuctions opens n auctions whose window contains the wall clock
func createActiveAuctions(tb testing.TB, svc *bidding.AuctionService, n int) []string {
	tb.Helper()
	now := time.Now()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		auction, err := svc.CreateAuction(context.Background(), benchAdmin, models.NewAuction{
			GrainID:       "1",
			Quantity:      decimal.NewFromInt(500),
			StartingPrice: startingPrice,
			StartDate:     now.Add(-time.Hour),
			EndDate:       now.Add(time.Hour),
		})
		if err != nil {
			tb.Fatalf("failed to create auction: %v", err)
		}
		ids = append(ids, auction.AuctionID)
	}
	return ids
}

// bidAtMinimum reads the auction and bids the minimum acceptable amount rounded
// up to whole cents. A concurrent bid may still win the race, which surfaces as ErrBidTooLow.
func bidAtMinimum(ctx context.Context, svc *bidding.AuctionService, auctionID, userID string) error {
	summary, err := svc.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	_, err = svc.PlaceBid(ctx, userID, models.NewBid{
		AuctionID:        auctionID,
		Amount:           summary.MinimumNextBid.RoundCeil(2),
		PaymentType:      models.PaymentCashless,
		DeliveryLocation: "Odesa port",
	})
	return err
}
