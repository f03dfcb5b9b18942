// Package registry owns every Auction aggregate and the serialization unit
// that guards it. Each auction has its own mutex; all operations on one
// auction (reads, bids, finalization, lifecycle reconciliation) run inside
// it. The registry index has a separate, short-lived lock that is never held
// while an auction's mutex is taken.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"grain-auction/internal/auctionerrors"
	"grain-auction/internal/ledger"
	"grain-auction/internal/lifecycle"
	"grain-auction/internal/models"
	"grain-auction/internal/repository"
	"grain-auction/utils"
)

// Clock returns the current wall-clock time
type Clock func() time.Time

// TransitionFunc observes lifecycle transitions applied during reconciliation or finalization
type TransitionFunc func(auctionID string, from, to models.Status)

// Registry is the AuctionRegistry
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry

	bidIndex sync.Map // bidID -> auctionID

	store        repository.AuctionStore
	now          Clock
	onTransition TransitionFunc
}

type entry struct {
	mu      sync.Mutex
	auction models.Auction
	ledger  *ledger.Ledger
}

// New creates an empty registry writing through to store
func New(store repository.AuctionStore, clock Clock) *Registry {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Registry{
		entries: make(map[string]*entry),
		store:   store,
		now:     clock,
	}
}

// OnTransition registers fn to be called for each status change. Not safe to call concurrently with operations.
func (r *Registry) OnTransition(fn TransitionFunc) { r.onTransition = fn }

// Restore hydrates the registry from the store. Call once before serving.
func (r *Registry) Restore(ctx context.Context) error {
	auctions, bids, err := r.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("registry: restore: %w", err)
	}

	byAuction := make(map[string][]models.Bid)
	for _, b := range bids {
		byAuction[b.AuctionID] = append(byAuction[b.AuctionID], b)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range auctions {
		if _, dup := r.entries[a.AuctionID]; dup {
			return fmt.Errorf("registry: restore: duplicate auction %s", a.AuctionID)
		}
		l := ledger.New(a.AuctionID, a.StartingPrice)
		if err := l.Restore(byAuction[a.AuctionID]); err != nil {
			return fmt.Errorf("registry: restore: %w", err)
		}
		if a.WinningBidID != "" {
			if _, ok := l.Find(a.WinningBidID); !ok {
				return fmt.Errorf("registry: restore: auction %s winner %s not in ledger", a.AuctionID, a.WinningBidID)
			}
		}
		for _, b := range byAuction[a.AuctionID] {
			r.bidIndex.Store(b.BidID, a.AuctionID)
		}
		r.entries[a.AuctionID] = &entry{auction: a, ledger: l}
		r.order = append(r.order, a.AuctionID)
	}
	utils.Info("registry restored", map[string]any{"auctions": len(auctions), "bids": len(bids)})
	return nil
}

// Create validates and registers a new pending auction with an empty ledger.
func (r *Registry) Create(ctx context.Context, createdBy string, grain models.GrainSnapshot, quantity, startingPrice decimal.Decimal, start, end time.Time) (models.Auction, error) {
	if !end.After(start) {
		return models.Auction{}, fmt.Errorf("registry: %w - start %s, end %s",
			auctionerrors.ErrInvalidWindow, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if !quantity.IsPositive() {
		return models.Auction{}, fmt.Errorf("registry: %w - got %s", auctionerrors.ErrInvalidQuantity, quantity)
	}
	if !startingPrice.IsPositive() {
		return models.Auction{}, fmt.Errorf("registry: %w - got %s", auctionerrors.ErrInvalidPrice, startingPrice)
	}

	auction := models.Auction{
		AuctionID:     utils.GenerateID(),
		Grain:         grain.Clone(),
		Quantity:      quantity,
		StartingPrice: startingPrice,
		StartDate:     start.UTC(),
		EndDate:       end.UTC(),
		Status:        models.StatusPending,
		CreatedBy:     createdBy,
		CreatedAt:     r.now(),
	}
	if err := r.store.SaveAuction(ctx, auction); err != nil {
		return models.Auction{}, auctionerrors.Unavailable("registry: save auction", err)
	}

	e := &entry{auction: auction, ledger: ledger.New(auction.AuctionID, startingPrice)}
	r.mu.Lock()
	r.entries[auction.AuctionID] = e
	r.order = append(r.order, auction.AuctionID)
	r.mu.Unlock()

	return auction.Clone(), nil
}

func (r *Registry) lookup(id string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: %w - id %s", auctionerrors.ErrAuctionNotFound, id)
	}
	return e, nil
}

func (r *Registry) snapshotEntries() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// reconcile must be called with e.mu held
func (r *Registry) reconcile(ctx context.Context, e *entry, now time.Time) {
	steps := lifecycle.Reconcile(&e.auction, now)
	if len(steps) == 0 {
		return
	}
	for _, tr := range steps {
		utils.Info("auction status changed", map[string]any{
			"auction_id": e.auction.AuctionID,
			"from":       tr.From,
			"to":         tr.To,
		})
		if r.onTransition != nil {
			r.onTransition(e.auction.AuctionID, tr.From, tr.To)
		}
	}
	// status is re-derivable from the clock, so a failed write is not fatal
	if err := r.store.SaveAuction(ctx, e.auction); err != nil {
		utils.Warn("registry: persist reconciled status failed", map[string]any{
			"auction_id": e.auction.AuctionID,
			"status":     e.auction.Status,
			"error":      err.Error(),
		})
	}
}

// Exclusive runs fn inside the auction's serialization unit after reconciling
// its status against the clock. fn must not block on anything but the store.
// Store writes stay inside the unit so a bid or a winner is durable before it
// is visible; ctx bounds them, and the service derives it from the configured
// store timeout so a slow store cannot hold the unit indefinitely.
func (r *Registry) Exclusive(ctx context.Context, auctionID string, fn func(s *Session) error) error {
	e, err := r.lookup(auctionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := r.now()
	r.reconcile(ctx, e, now)
	return fn(&Session{ctx: ctx, reg: r, e: e, now: now})
}

// Get returns the reconciled summary of one auction
func (r *Registry) Get(ctx context.Context, auctionID string) (models.AuctionSummary, error) {
	var out models.AuctionSummary
	err := r.Exclusive(ctx, auctionID, func(s *Session) error {
		out = s.Summary()
		return nil
	})
	return out, err
}

// List returns reconciled summaries in creation order, optionally filtered by status.
func (r *Registry) List(ctx context.Context, filter *models.Status) []models.AuctionSummary {
	entries := r.snapshotEntries()
	out := make([]models.AuctionSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		r.reconcile(ctx, e, r.now())
		summary := summarize(e)
		e.mu.Unlock()

		if filter != nil && summary.Status != *filter {
			continue
		}
		out = append(out, summary)
	}
	return out
}

// LocateBid returns the auction a bid id belongs to
func (r *Registry) LocateBid(bidID string) (string, bool) {
	v, ok := r.bidIndex.Load(bidID)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Len returns the number of registered auctions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func summarize(e *entry) models.AuctionSummary {
	summary := models.AuctionSummary{
		Auction:        e.auction.Clone(),
		CurrentHighest: e.ledger.CurrentHighest(),
		BidCount:       e.ledger.BidCount(),
	}
	if e.auction.Status == models.StatusPending || e.auction.Status == models.StatusActive {
		summary.MinimumNextBid = e.ledger.MinimumNext()
	}
	return summary
}
