package bidding

import (
	"time"

	"grain-auction/internal/archive"
	"grain-auction/internal/metrics"
	"grain-auction/internal/notify"
)

// Option customises an AuctionService
type Option func(*AuctionService)

// WithNotifier sets the collaborator that informs winners
func WithNotifier(n notify.Notifier) Option {
	return func(s *AuctionService) { s.notifier = n }
}

// WithArchive sets where finalized results are archived
func WithArchive(a archive.Archive) Option {
	return func(s *AuctionService) { s.archive = a }
}

// WithMetrics attaches a metrics recorder
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *AuctionService) { s.metrics = m }
}

// WithStoreTimeout bounds every operation that may write to the store
func WithStoreTimeout(d time.Duration) Option {
	return func(s *AuctionService) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}
