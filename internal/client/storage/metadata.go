package storage

import (
	"context"
	"time"
)

// MetadataStorage defines interface for storing client metadata
type MetadataStorage interface {
	// SaveLastSync saves the time the queue was last confirmed empty by a drain
	SaveLastSync(ctx context.Context, at time.Time) error

	// GetLastSync retrieves the last sync time
	// Returns zero time if no sync has been performed yet
	GetLastSync(ctx context.Context) (time.Time, error)
}
