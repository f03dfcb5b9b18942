package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role of a participant as reported by the identity directory
type Role string

const (
	RoleAdmin Role = "admin"
	RoleBuyer Role = "buyer"
)

// Accreditation is the admin-approved permission for a buyer to bid
type Accreditation string

const (
	AccreditationPending  Accreditation = "pending"
	AccreditationApproved Accreditation = "approved"
	AccreditationRejected Accreditation = "rejected"
)

// User represents a participant in the auction. Owned by the identity directory.
type User struct {
	UserID        string        `json:"user_id" yaml:"id"`
	FullName      string        `json:"full_name" yaml:"full_name"`
	Company       string        `json:"company" yaml:"company"`
	Email         string        `json:"email" yaml:"email"`
	Role          Role          `json:"role" yaml:"role"`
	Accreditation Accreditation `json:"accreditation_status" yaml:"accreditation_status"`
}

// IsAdmin reports whether the user may run admin commands
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Status is the lifecycle state of an auction
type Status string

const (
	StatusPending        Status = "pending"
	StatusActive         Status = "active"
	StatusCompleted      Status = "completed"
	StatusWinnerSelected Status = "winner_selected"
)

// Valid reports whether s is one of the known lifecycle states
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusWinnerSelected:
		return true
	}
	return false
}

// PaymentType is how the buyer intends to settle
type PaymentType string

const (
	PaymentCashless PaymentType = "cashless"
	PaymentCash     PaymentType = "cash"
)

// Valid reports whether p is one of the accepted payment types
func (p PaymentType) Valid() bool {
	return p == PaymentCashless || p == PaymentCash
}

// GrainSnapshot is the copy of catalog quality attributes taken when an auction
// is created. Nil pointers mean the attribute does not apply (e.g. gluten for corn).
type GrainSnapshot struct {
	GrainID    string           `json:"grain_id"`
	GrainType  string           `json:"grain_type"`
	Category   int              `json:"category"`
	Moisture   decimal.Decimal  `json:"moisture"`
	Protein    decimal.Decimal  `json:"protein"`
	Gluten     *decimal.Decimal `json:"gluten,omitempty"`
	TestWeight *decimal.Decimal `json:"test_weight,omitempty"`
}

// Clone returns a deep copy so callers cannot reach into an auction's snapshot
func (g GrainSnapshot) Clone() GrainSnapshot {
	out := g
	if g.Gluten != nil {
		v := *g.Gluten
		out.Gluten = &v
	}
	if g.TestWeight != nil {
		v := *g.TestWeight
		out.TestWeight = &v
	}
	return out
}

// Auction is a single lot of graded grain offered for sale
type Auction struct {
	AuctionID     string          `json:"auction_id"`
	Grain         GrainSnapshot   `json:"grain"`
	Quantity      decimal.Decimal `json:"quantity"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Status        Status          `json:"status"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	WinningBidID  string          `json:"winning_bid_id,omitempty"`
}

// Clone returns a deep copy of the auction
func (a Auction) Clone() Auction {
	out := a
	out.Grain = a.Grain.Clone()
	return out
}

// Bid represents a buyer's offer on an auction. Immutable once appended.
type Bid struct {
	BidID            string          `json:"bid_id"`
	AuctionID        string          `json:"auction_id"`
	BidderID         string          `json:"bidder_id"`
	BidderCompany    string          `json:"bidder_company"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentType      PaymentType     `json:"payment_type"`
	DeliveryLocation string          `json:"delivery_location"`
	CreatedAt        time.Time       `json:"created_at"`
	Sequence         int64           `json:"sequence"`
}

// AuctionSummary is the read model served to pollers
type AuctionSummary struct {
	Auction
	CurrentHighest decimal.Decimal `json:"current_highest"`
	MinimumNextBid decimal.Decimal `json:"minimum_next_bid"`
	BidCount       int             `json:"bid_count"`
}

// BidPlacement acknowledges an accepted bid
type BidPlacement struct {
	Bid            Bid             `json:"bid"`
	Rank           int             `json:"rank"`
	CurrentHighest decimal.Decimal `json:"current_highest"`
	MinimumNextBid decimal.Decimal `json:"minimum_next_bid"`
	BidCount       int             `json:"bid_count"`
}

// WinnerSelection confirms a finalized auction
type WinnerSelection struct {
	Auction    Auction `json:"auction"`
	WinningBid Bid     `json:"winning_bid"`
	Notified   bool    `json:"notified"`
	Archived   bool    `json:"archived"`
}

// AuctionResult is the archived protocol of a finalized auction
type AuctionResult struct {
	Auction     Auction   `json:"auction"`
	WinningBid  Bid       `json:"winning_bid"`
	Ranking     []Bid     `json:"ranking"`
	FinalizedBy string    `json:"finalized_by"`
	FinalizedAt time.Time `json:"finalized_at"`
}

// NewAuction is the admin command payload for creating an auction
type NewAuction struct {
	GrainID       string
	Quantity      decimal.Decimal
	StartingPrice decimal.Decimal
	StartDate     time.Time
	EndDate       time.Time
}

// NewBid is the buyer command payload for placing a bid
type NewBid struct {
	AuctionID        string
	Amount           decimal.Decimal
	PaymentType      PaymentType
	DeliveryLocation string
}
