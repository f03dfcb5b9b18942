// Package archive keeps a JSON protocol of every finalized auction.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"grain-auction/internal/models"
)

// Archive stores finalized auction results
type Archive interface {
	PutResult(ctx context.Context, result models.AuctionResult) error
}

// ResultKey is the object key a result is stored under
func ResultKey(auctionID string) string {
	return "results/" + auctionID + ".json"
}

func encode(result models.AuctionResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("archive: encode %s: %w", result.Auction.AuctionID, err)
	}
	return data, nil
}

// Discard drops results. Used when archiving is disabled.
type Discard struct{}

// PutResult implements Archive
func (Discard) PutResult(context.Context, models.AuctionResult) error { return nil }

// MemoryArchive keeps encoded results in memory
type MemoryArchive struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryArchive creates an empty in-memory archive
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{objects: make(map[string][]byte)}
}

// PutResult implements Archive. A result is written once; later writes for the same auction fail.
func (m *MemoryArchive) PutResult(_ context.Context, result models.AuctionResult) error {
	data, err := encode(result)
	if err != nil {
		return err
	}
	key := ResultKey(result.Auction.AuctionID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[key]; exists {
		return fmt.Errorf("archive: %s already exists", key)
	}
	m.objects[key] = data
	return nil
}

// Get decodes a stored result
func (m *MemoryArchive) Get(auctionID string) (models.AuctionResult, bool, error) {
	m.mu.RLock()
	data, ok := m.objects[ResultKey(auctionID)]
	m.mu.RUnlock()
	if !ok {
		return models.AuctionResult{}, false, nil
	}
	var out models.AuctionResult
	if err := json.Unmarshal(data, &out); err != nil {
		return models.AuctionResult{}, true, fmt.Errorf("archive: decode %s: %w", auctionID, err)
	}
	return out, true, nil
}

// Keys lists stored object keys in order
func (m *MemoryArchive) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
