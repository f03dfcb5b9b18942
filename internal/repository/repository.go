package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"grain-auction/internal/models"
)

// AuctionStore defines durable storage for auctions and their bid ledgers.
// Writes are issued from inside the per-auction exclusive section, before the
// in-memory state is changed, so a failed write leaves no trace.
type AuctionStore interface {
	SaveAuction(ctx context.Context, auction models.Auction) error
	AppendBid(ctx context.Context, bid models.Bid) error
	LoadAll(ctx context.Context) ([]models.Auction, []models.Bid, error)
	Close() error
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionStore
type MemoryRepo struct {
	mu       sync.RWMutex
	order    []string                  // auction ids in first-save order
	auctions map[string]models.Auction // key: auctionID
	bids     map[string][]models.Bid   // key: auctionID -> bids in sequence order
	bidIDs   map[string]struct{}
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions: make(map[string]models.Auction),
		bids:     make(map[string][]models.Bid),
		bidIDs:   make(map[string]struct{}),
	}
}

// SaveAuction inserts or replaces an auction
func (r *MemoryRepo) SaveAuction(_ context.Context, auction models.Auction) error {
	if auction.AuctionID == "" {
		return fmt.Errorf("save auction: empty auction id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auction.AuctionID]; !ok {
		r.order = append(r.order, auction.AuctionID)
	}
	r.auctions[auction.AuctionID] = auction.Clone()
	return nil
}

// AppendBid records a bid for an already saved auction
func (r *MemoryRepo) AppendBid(_ context.Context, bid models.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("append bid %s: unknown auction %s", bid.BidID, bid.AuctionID)
	}
	if _, dup := r.bidIDs[bid.BidID]; dup {
		return fmt.Errorf("append bid %s: duplicate bid id", bid.BidID)
	}
	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)
	r.bidIDs[bid.BidID] = struct{}{}
	return nil
}

// LoadAll returns every auction in save order with bids grouped by auction in sequence order
func (r *MemoryRepo) LoadAll(_ context.Context) ([]models.Auction, []models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctions := make([]models.Auction, 0, len(r.order))
	var bids []models.Bid
	for _, id := range r.order {
		auctions = append(auctions, r.auctions[id].Clone())
		ledger := append([]models.Bid(nil), r.bids[id]...)
		sort.Slice(ledger, func(i, j int) bool { return ledger[i].Sequence < ledger[j].Sequence })
		bids = append(bids, ledger...)
	}
	return auctions, bids, nil
}

// Close is a no-op for the memory store
func (r *MemoryRepo) Close() error { return nil }
