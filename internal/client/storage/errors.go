package storage

import "errors"

// Common client storage errors
var (
	// ErrIdentityNotFound indicates that nobody is logged in
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrDatabaseLocked indicates that another process holds the database file
	ErrDatabaseLocked = errors.New("database is in use by another invoicekeeper process")
)
