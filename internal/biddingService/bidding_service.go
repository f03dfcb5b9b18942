package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grain-auction/internal/access"
	"grain-auction/internal/archive"
	"grain-auction/internal/auctionerrors"
	"grain-auction/internal/catalog"
	"grain-auction/internal/ledger"
	"grain-auction/internal/metrics"
	"grain-auction/internal/models"
	"grain-auction/internal/notify"
	"grain-auction/internal/registry"
	"grain-auction/utils"
)

const defaultStoreTimeout = 5 * time.Second

// AuctionService defines the business operations of the grain auction
type AuctionService struct {
	registry     *registry.Registry
	gate         *access.Gate
	catalog      catalog.Catalog
	notifier     notify.Notifier
	archive      archive.Archive
	metrics      *metrics.Recorder
	storeTimeout time.Duration
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(reg *registry.Registry, gate *access.Gate, cat catalog.Catalog, opts ...Option) *AuctionService {
	s := &AuctionService{
		registry:     reg,
		gate:         gate,
		catalog:      cat,
		notifier:     notify.LogNotifier{},
		archive:      archive.Discard{},
		storeTimeout: defaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics != nil {
		reg.OnTransition(s.metrics.Transition)
	}
	return s
}

func (s *AuctionService) observe(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.Observe(op, err, time.Since(start))
	}
}

// ListAuctions returns every auction, reconciled against the clock, in creation order.
func (s *AuctionService) ListAuctions(ctx context.Context, filter *models.Status) ([]models.AuctionSummary, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	out := s.registry.List(ctx, filter)
	s.observe("list_auctions", start, nil)
	return out, nil
}

// GetAuction returns one reconciled auction summary
func (s *AuctionService) GetAuction(ctx context.Context, auctionID string) (models.AuctionSummary, error) {
	start := time.Now()
	if !utils.IsValidID(auctionID) {
		return models.AuctionSummary{}, fmt.Errorf("service: %w - malformed id %q", auctionerrors.ErrAuctionNotFound, auctionID)
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	summary, err := s.registry.Get(ctx, auctionID)
	s.observe("get_auction", start, err)
	if err != nil {
		return models.AuctionSummary{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return summary, nil
}

// CreateAuction lists a new lot. The grain's quality attributes are copied at this moment.
func (s *AuctionService) CreateAuction(ctx context.Context, actorID string, in models.NewAuction) (auction models.Auction, err error) {
	start := time.Now()
	defer func() { s.observe("create_auction", start, err) }()

	admin, err := s.gate.RequireAdmin(ctx, actorID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: create auction: %w", err)
	}
	grain, err := s.catalog.Lookup(in.GrainID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: create auction: %w", err)
	}
	snapshot, err := grain.Snapshot()
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: create auction: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	auction, err = s.registry.Create(ctx, admin.UserID, snapshot, in.Quantity, in.StartingPrice, in.StartDate, in.EndDate)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: create auction: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AuctionCreated()
	}
	utils.Info("auction created", map[string]any{
		"auction_id":     auction.AuctionID,
		"created_by":     admin.UserID,
		"grain_id":       in.GrainID,
		"starting_price": auction.StartingPrice.String(),
		"start_date":     auction.StartDate.Format(time.RFC3339),
		"end_date":       auction.EndDate.Format(time.RFC3339),
	})
	return auction, nil
}

// PlaceBid runs a bid through the access gate, the lifecycle check and the
// increment rule. Accreditation is checked before the auction is locked.
func (s *AuctionService) PlaceBid(ctx context.Context, actorID string, in models.NewBid) (placement models.BidPlacement, err error) {
	start := time.Now()
	defer func() {
		s.observe("place_bid", start, err)
		if s.metrics == nil {
			return
		}
		if err != nil {
			s.metrics.BidRejected(err)
		} else {
			s.metrics.BidAccepted()
		}
	}()

	bidder, err := s.gate.RequireApproved(ctx, actorID)
	if err != nil {
		return models.BidPlacement{}, fmt.Errorf("service: place bid: %w", err)
	}
	if err := ledger.ValidateFields(in.Amount, in.PaymentType, in.DeliveryLocation); err != nil {
		return models.BidPlacement{}, fmt.Errorf("service: place bid: %w", err)
	}
	if !utils.IsValidID(in.AuctionID) {
		return models.BidPlacement{}, fmt.Errorf("service: place bid: %w - malformed id %q", auctionerrors.ErrAuctionNotFound, in.AuctionID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	err = s.registry.Exclusive(ctx, in.AuctionID, func(sess *registry.Session) error {
		bid, err := sess.PlaceBid(models.Bid{
			BidID:            utils.GenerateID(),
			BidderID:         bidder.UserID,
			BidderCompany:    bidder.Company,
			Amount:           in.Amount,
			PaymentType:      in.PaymentType,
			DeliveryLocation: in.DeliveryLocation,
		})
		if err != nil {
			return err
		}
		summary := sess.Summary()
		placement = models.BidPlacement{
			Bid:            bid,
			Rank:           sess.Rank(bid.BidID),
			CurrentHighest: summary.CurrentHighest,
			MinimumNextBid: summary.MinimumNextBid,
			BidCount:       summary.BidCount,
		}
		return nil
	})
	if err != nil {
		return models.BidPlacement{}, fmt.Errorf("service: failed to place bid on auction %s by user %s: %w", in.AuctionID, bidder.UserID, err)
	}

	utils.Info("bid placed", map[string]any{
		"auction_id": in.AuctionID,
		"bid_id":     placement.Bid.BidID,
		"bidder_id":  bidder.UserID,
		"amount":     placement.Bid.Amount.String(),
		"sequence":   placement.Bid.Sequence,
	})
	return placement, nil
}

// ListBids returns the ranking of an auction. Admins see every bid in full;
// buyers who bid on the auction see the amounts with other bidders redacted.
func (s *AuctionService) ListBids(ctx context.Context, actorID, auctionID string) (bids []models.Bid, err error) {
	start := time.Now()
	defer func() { s.observe("list_bids", start, err) }()

	viewer, err := s.gate.Resolve(ctx, actorID)
	if err != nil {
		if errors.Is(err, access.ErrUnknownUser) {
			return nil, fmt.Errorf("service: list bids: %w - %v", auctionerrors.ErrForbidden, err)
		}
		return nil, fmt.Errorf("service: list bids: %w", err)
	}
	if !utils.IsValidID(auctionID) {
		return nil, fmt.Errorf("service: list bids: %w - malformed id %q", auctionerrors.ErrAuctionNotFound, auctionID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	err = s.registry.Exclusive(ctx, auctionID, func(sess *registry.Session) error {
		if !viewer.IsAdmin() && !sess.HasBidder(viewer.UserID) {
			return fmt.Errorf("%w - user %s has not bid on auction %s", auctionerrors.ErrForbidden, viewer.UserID, auctionID)
		}
		bids = sess.Ranked()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bids for auction %s: %w", auctionID, err)
	}

	if !viewer.IsAdmin() {
		for i := range bids {
			if bids[i].BidderID != viewer.UserID {
				bids[i].BidderID = ""
				bids[i].BidderCompany = ""
				bids[i].DeliveryLocation = ""
			}
		}
	}
	return bids, nil
}

// SelectWinner finalizes a completed auction with the chosen bid. Exactly one
// call succeeds per auction; every later call fails with ErrAuctionAlreadyFinalized.
// Notification and archiving run after the decision is committed and never undo it.
func (s *AuctionService) SelectWinner(ctx context.Context, actorID, auctionID, bidID string) (selection models.WinnerSelection, err error) {
	start := time.Now()
	defer func() { s.observe("select_winner", start, err) }()

	admin, err := s.gate.RequireAdmin(ctx, actorID)
	if err != nil {
		return models.WinnerSelection{}, fmt.Errorf("service: select winner: %w", err)
	}
	if !utils.IsValidID(auctionID) {
		return models.WinnerSelection{}, fmt.Errorf("service: select winner: %w - malformed id %q", auctionerrors.ErrAuctionNotFound, auctionID)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var result models.AuctionResult
	err = s.registry.Exclusive(storeCtx, auctionID, func(sess *registry.Session) error {
		if err := sess.CheckNotFinalized(); err != nil {
			return err
		}
		winning, ok := sess.FindBid(bidID)
		if !ok {
			if owner, known := s.registry.LocateBid(bidID); known {
				return fmt.Errorf("%w - bid %s belongs to auction %s", auctionerrors.ErrBidNotInAuction, bidID, owner)
			}
			return fmt.Errorf("%w - id %s", auctionerrors.ErrBidNotFound, bidID)
		}
		finalized, err := sess.Finalize(bidID)
		if err != nil {
			return err
		}
		result = models.AuctionResult{
			Auction:     finalized,
			WinningBid:  winning,
			Ranking:     sess.Ranked(),
			FinalizedBy: admin.UserID,
			FinalizedAt: sess.Now(),
		}
		return nil
	})
	if err != nil {
		return models.WinnerSelection{}, fmt.Errorf("service: failed to select winner for auction %s: %w", auctionID, err)
	}

	if s.metrics != nil {
		s.metrics.WinnerSelected()
	}
	utils.Info("winner selected", map[string]any{
		"auction_id": auctionID,
		"bid_id":     bidID,
		"bidder_id":  result.WinningBid.BidderID,
		"amount":     result.WinningBid.Amount.String(),
		"admin_id":   admin.UserID,
	})

	selection = models.WinnerSelection{
		Auction:    result.Auction,
		WinningBid: result.WinningBid,
		Notified:   s.notifyWinner(ctx, result),
		Archived:   s.archiveResult(ctx, result),
	}
	return selection, nil
}

func (s *AuctionService) notifyWinner(ctx context.Context, result models.AuctionResult) bool {
	fields := map[string]any{"auction_id": result.Auction.AuctionID, "bidder_id": result.WinningBid.BidderID}

	winner, err := s.gate.Resolve(ctx, result.WinningBid.BidderID)
	if err != nil {
		fields["error"] = err.Error()
		utils.Warn("service: winner lookup for notification failed", fields)
		return false
	}
	err = s.notifier.NotifyWinner(ctx, notify.WinnerNotice{
		AuctionID:  result.Auction.AuctionID,
		BidID:      result.WinningBid.BidID,
		User:       winner,
		GrainType:  result.Auction.Grain.GrainType,
		Category:   result.Auction.Grain.Category,
		Quantity:   result.Auction.Quantity,
		WinningBid: result.WinningBid.Amount,
	})
	if err != nil {
		fields["error"] = auctionerrors.Unavailable("notify winner", err).Error()
		utils.Warn("service: winner notification failed", fields)
		return false
	}
	return true
}

func (s *AuctionService) archiveResult(ctx context.Context, result models.AuctionResult) bool {
	if _, disabled := s.archive.(archive.Discard); disabled {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.archive.PutResult(ctx, result); err != nil {
		utils.Warn("service: archive result failed", map[string]any{
			"auction_id": result.Auction.AuctionID,
			"error":      err.Error(),
		})
		return false
	}
	return true
}

// Grains lists the catalog entries auctions can be created from
func (s *AuctionService) Grains() []catalog.Grain {
	return s.catalog.List()
}
