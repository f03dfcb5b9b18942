package helpers

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request DTOs. Amounts are validated by the service so rejections carry typed errors.
type CreateAuctionRequest struct {
	GrainID       string          `json:"grain_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	StartDate     time.Time       `json:"start_date" binding:"required"`
	EndDate       time.Time       `json:"end_date" binding:"required"`
}

type PlaceBidRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	PaymentType      string          `json:"payment_type"`
	DeliveryLocation string          `json:"delivery_location"`
}

type SelectWinnerRequest struct {
	BidID string `json:"bid_id" binding:"required"`
}

// Response DTOs
type CreateAuctionResponse struct {
	AuctionID string `json:"auction_id"`
	Status    string `json:"status"`
}
