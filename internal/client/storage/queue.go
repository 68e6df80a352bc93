package storage

import (
	"context"
	"time"

	"github.com/iudanet/invoicekeeper/pkg/api"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage defines the durable ordered queue of write requests
// that could not reach the server.
//
// Every mutation rewrites the whole queue under a single key and re-reads
// the stored value inside the same transaction, so callers never work
// on a stale copy.
type QueueStorage interface {
	// Append adds payload to the tail of the queue
	Append(ctx context.Context, payload api.Request) error

	// ReadAll returns queued operations in submission order.
	// Missing or corrupt data yields an empty slice, never an error.
	ReadAll(ctx context.Context) []QueuedOperation

	// ReplaceAll overwrites the queue with ops
	ReplaceAll(ctx context.Context, ops []QueuedOperation) error

	// RemoveHead drops the first n operations of the current queue.
	// Operations appended after the caller read the queue are kept.
	RemoveHead(ctx context.Context, n int) error

	// Count returns the number of queued operations
	Count(ctx context.Context) int
}

// QueuedOperation is a request waiting for delivery
type QueuedOperation struct {
	EnqueuedAt time.Time   `json:"enqueued_at"`
	Payload    api.Request `json:"payload"`
	ID         string      `json:"id"`
}
