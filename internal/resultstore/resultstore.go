// Package resultstore keeps full detection results in memory so truncated
// responses can hand out a handle to the complete result set.
package resultstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter"

	"github.com/doppelscan/doppel/pkg/models"
)

const (
	// DefaultCapacity bounds how many stored results the cache holds.
	DefaultCapacity = 64

	// DefaultTTL is how long a stored result stays retrievable. Handles are
	// meant for follow-up queries within the same session.
	DefaultTTL = 15 * time.Minute
)

// Store caches complete detection results keyed by opaque handles.
type Store struct {
	cache otter.Cache[string, *models.DetectionResult]
}

// New creates a result store with the given capacity and TTL.
func New(capacity int, ttl time.Duration) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	cache, err := otter.MustBuilder[string, *models.DetectionResult](capacity).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building result cache: %w", err)
	}

	return &Store{cache: cache}, nil
}

// Put stores a result and returns its handle.
func (s *Store) Put(result *models.DetectionResult) string {
	handle := uuid.NewString()
	s.cache.Set(handle, result)
	return handle
}

// Get retrieves a stored result by handle.
func (s *Store) Get(handle string) (*models.DetectionResult, bool) {
	return s.cache.Get(handle)
}

// Close releases the cache's resources.
func (s *Store) Close() {
	s.cache.Close()
}
