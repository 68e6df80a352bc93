package storage

import "context"

//go:generate moq -out identity_mock.go . IdentityStorage

// IdentityStorage defines interface for storing the session identity on client.
// The identity is the pair (username, last_login) returned by a successful login.
type IdentityStorage interface {
	// SaveIdentity stores identity after a successful login
	SaveIdentity(ctx context.Context, identity *Identity) error

	// GetIdentity retrieves stored identity
	// Returns ErrIdentityNotFound if nobody is logged in
	GetIdentity(ctx context.Context) (*Identity, error)

	// ClearIdentity removes stored identity (logout). Clearing an empty store is not an error.
	ClearIdentity(ctx context.Context) error
}

// Identity represents the logged in user as the endpoint knows it
type Identity struct {
	Username  string `json:"username"`
	LastLogin string `json:"last_login"`
}
