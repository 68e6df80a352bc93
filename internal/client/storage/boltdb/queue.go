package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/invoicekeeper/internal/client/storage"
	"github.com/iudanet/invoicekeeper/pkg/api"
)

// queueKey is the single slot holding the whole serialized queue
var queueKey = []byte("sync_queue")

// Append adds payload to the tail of the sync queue
func (s *Storage) Append(ctx context.Context, payload api.Request) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	op := storage.QueuedOperation{
		ID:         uuid.New().String(),
		EnqueuedAt: time.Now().UTC(),
		Payload:    payload,
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		// Перечитываем очередь внутри транзакции
		ops := s.decodeQueue(ctx, bucket.Get(queueKey))
		ops = append(ops, op)

		return s.writeQueue(bucket, ops)
	})
}

// ReadAll returns queued operations in submission order
func (s *Storage) ReadAll(ctx context.Context) []storage.QueuedOperation {
	if s.db == nil {
		s.logger.WarnContext(ctx, "queue read on closed storage")
		return []storage.QueuedOperation{}
	}

	ops := []storage.QueuedOperation{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return nil
		}
		ops = s.decodeQueue(ctx, bucket.Get(queueKey))
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read sync queue", "error", err)
		return []storage.QueuedOperation{}
	}

	return ops
}

// ReplaceAll overwrites the whole sync queue. Drain removes delivered
// entries with RemoveHead; ReplaceAll is kept for repair tooling that has to
// rewrite the queue in one transaction, such as dropping a poisoned entry.
func (s *Storage) ReplaceAll(ctx context.Context, ops []storage.QueuedOperation) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}
		return s.writeQueue(bucket, ops)
	})
}

// RemoveHead drops the first n operations of the stored queue
func (s *Storage) RemoveHead(ctx context.Context, n int) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if n <= 0 {
		return nil
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		ops := s.decodeQueue(ctx, bucket.Get(queueKey))
		if n > len(ops) {
			n = len(ops)
		}

		return s.writeQueue(bucket, ops[n:])
	})
}

// Count returns the number of queued operations
func (s *Storage) Count(ctx context.Context) int {
	return len(s.ReadAll(ctx))
}

// decodeQueue разбирает сохраненную очередь; битые данные считаются пустой очередью
func (s *Storage) decodeQueue(ctx context.Context, data []byte) []storage.QueuedOperation {
	ops := []storage.QueuedOperation{}
	if data == nil {
		return ops
	}

	// UseNumber сохраняет числа в payload без потери точности при повторной отправке
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&ops); err != nil {
		s.logger.WarnContext(ctx, "sync queue is corrupt, treating as empty", "error", err)
		return []storage.QueuedOperation{}
	}
	if ops == nil {
		ops = []storage.QueuedOperation{}
	}

	return ops
}

func (s *Storage) writeQueue(bucket *bbolt.Bucket, ops []storage.QueuedOperation) error {
	if ops == nil {
		ops = []storage.QueuedOperation{}
	}

	data, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("failed to marshal sync queue: %w", err)
	}

	if err := bucket.Put(queueKey, data); err != nil {
		return fmt.Errorf("failed to save sync queue: %w", err)
	}

	return nil
}
