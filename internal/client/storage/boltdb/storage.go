package boltdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/invoicekeeper/internal/client/storage"
)

var (
	// BoltDB bucket names
	bucketIdentity = []byte("identity")
	bucketQueue    = []byte("queue")
	bucketMetadata = []byte("metadata")
)

// Storage represents BoltDB storage implementation for client.
// It implements storage.IdentityStorage, storage.QueueStorage and storage.MetadataStorage.
type Storage struct {
	db     *bbolt.DB
	logger *slog.Logger
}

var (
	_ storage.IdentityStorage = (*Storage)(nil)
	_ storage.QueueStorage    = (*Storage)(nil)
	_ storage.MetadataStorage = (*Storage)(nil)
)

// DefaultLockTimeout bounds the wait for the file lock held by another process
const DefaultLockTimeout = time.Second

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string, logger *slog.Logger) (*Storage, error) {
	return NewWithTimeout(ctx, dbPath, DefaultLockTimeout, logger)
}

// NewWithTimeout is New with an explicit wait for the file lock. When the
// lock is not acquired in time it returns storage.ErrDatabaseLocked.
func NewWithTimeout(ctx context.Context, dbPath string, lockTimeout time.Duration, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}

	// Open BoltDB with a bounded wait for the file lock
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: lockTimeout})
	if errors.Is(err, bbolt.ErrTimeout) {
		return nil, fmt.Errorf("%w: %s", storage.ErrDatabaseLocked, dbPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	store := &Storage{db: db, logger: logger}

	// Create buckets
	if err := store.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	logger.DebugContext(ctx, "client storage opened", "path", dbPath)

	return store, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets creates missing buckets
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketIdentity); err != nil {
			return fmt.Errorf("failed to create identity bucket: %w", err)
		}

		if _, err := tx.CreateBucketIfNotExists(bucketQueue); err != nil {
			return fmt.Errorf("failed to create queue bucket: %w", err)
		}

		if _, err := tx.CreateBucketIfNotExists(bucketMetadata); err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}

		return nil
	})
}
