// Package metrics exposes auction counters through a private Prometheus registry.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grain-auction/internal/auctionerrors"
	"grain-auction/internal/models"
)

// Recorder collects service metrics
type Recorder struct {
	registry       *prometheus.Registry
	bidsAccepted   prometheus.Counter
	bidsRejected   *prometheus.CounterVec
	winners        prometheus.Counter
	transitions    *prometheus.CounterVec
	auctionCreated prometheus.Counter
	opDuration     *prometheus.HistogramVec
}

// NewRecorder builds a recorder with its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		bidsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "grain_auction",
			Name:      "bids_accepted_total",
			Help:      "Bids appended to a ledger.",
		}),
		bidsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grain_auction",
			Name:      "bids_rejected_total",
			Help:      "Bids rejected, by reason.",
		}, []string{"reason"}),
		winners: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "grain_auction",
			Name:      "winners_selected_total",
			Help:      "Auctions finalized with a winner.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grain_auction",
			Name:      "status_transitions_total",
			Help:      "Lifecycle transitions applied.",
		}, []string{"from", "to"}),
		auctionCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "grain_auction",
			Name:      "auctions_created_total",
			Help:      "Auctions created.",
		}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "grain_auction",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation", "outcome"}),
	}
	r.registry.MustRegister(r.bidsAccepted, r.bidsRejected, r.winners, r.transitions, r.auctionCreated, r.opDuration)
	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// BidAccepted counts an appended bid
func (r *Recorder) BidAccepted() { r.bidsAccepted.Inc() }

// BidRejected counts a rejected bid under the reason derived from err
func (r *Recorder) BidRejected(err error) { r.bidsRejected.WithLabelValues(Reason(err)).Inc() }

// WinnerSelected counts a finalized auction
func (r *Recorder) WinnerSelected() { r.winners.Inc() }

// AuctionCreated counts a created auction
func (r *Recorder) AuctionCreated() { r.auctionCreated.Inc() }

// Transition counts a lifecycle transition
func (r *Recorder) Transition(_ string, from, to models.Status) {
	r.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// Observe records how long an operation took
func (r *Recorder) Observe(operation string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = Reason(err)
	}
	r.opDuration.WithLabelValues(operation, outcome).Observe(d.Seconds())
}

// Reason maps an error onto a low-cardinality label
func Reason(err error) string {
	reasons := []struct {
		err   error
		label string
	}{
		{auctionerrors.ErrNotAccredited, "not_accredited"},
		{auctionerrors.ErrAuctionNotFound, "auction_not_found"},
		{auctionerrors.ErrAuctionNotActive, "auction_not_active"},
		{auctionerrors.ErrAuctionStillActive, "auction_still_active"},
		{auctionerrors.ErrAuctionAlreadyFinalized, "auction_already_finalized"},
		{auctionerrors.ErrBidTooLow, "bid_too_low"},
		{auctionerrors.ErrInvalidBidFields, "invalid_bid_fields"},
		{auctionerrors.ErrInvalidWindow, "invalid_window"},
		{auctionerrors.ErrInvalidQuantity, "invalid_quantity"},
		{auctionerrors.ErrInvalidPrice, "invalid_price"},
		{auctionerrors.ErrBidNotFound, "bid_not_found"},
		{auctionerrors.ErrBidNotInAuction, "bid_not_in_auction"},
		{auctionerrors.ErrGrainNotFound, "grain_not_found"},
		{auctionerrors.ErrForbidden, "forbidden"},
		{auctionerrors.ErrDependencyUnavailable, "dependency_unavailable"},
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "internal"
}
