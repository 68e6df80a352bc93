package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/invoicekeeper/internal/client/storage"
)

var identityKey = []byte("current")

// SaveIdentity stores the session identity
func (s *Storage) SaveIdentity(ctx context.Context, identity *storage.Identity) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if identity == nil {
		return fmt.Errorf("identity is nil")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketIdentity)
		if bucket == nil {
			return fmt.Errorf("identity bucket not found")
		}

		data, err := json.Marshal(identity)
		if err != nil {
			return fmt.Errorf("failed to marshal identity: %w", err)
		}

		if err := bucket.Put(identityKey, data); err != nil {
			return fmt.Errorf("failed to save identity: %w", err)
		}

		return nil
	})
}

// GetIdentity retrieves the stored session identity
func (s *Storage) GetIdentity(ctx context.Context) (*storage.Identity, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var identity *storage.Identity

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketIdentity)
		if bucket == nil {
			return fmt.Errorf("identity bucket not found")
		}

		data := bucket.Get(identityKey)
		if data == nil {
			return storage.ErrIdentityNotFound
		}

		identity = &storage.Identity{}
		if err := json.Unmarshal(data, identity); err != nil {
			return fmt.Errorf("failed to unmarshal identity: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return identity, nil
}

// ClearIdentity removes the stored session identity (logout)
func (s *Storage) ClearIdentity(ctx context.Context) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketIdentity)
		if bucket == nil {
			return fmt.Errorf("identity bucket not found")
		}

		if err := bucket.Delete(identityKey); err != nil {
			return fmt.Errorf("failed to delete identity: %w", err)
		}

		return nil
	})
}
