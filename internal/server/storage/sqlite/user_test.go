package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/invoicekeeper/internal/models"
	"github.com/iudanet/invoicekeeper/internal/server/storage"
)

func TestUserStorage_CreateUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		user *models.User
		name string
	}{
		{
			name: "create new user successfully",
			user: &models.User{
				ID:           uuid.New().String(),
				Username:     "testuser1",
				PasswordHash: "hash123",
				CreatedAt:    time.Now(),
			},
		},
		{
			name: "create disabled user with last login",
			user: &models.User{
				ID:           uuid.New().String(),
				Username:     "testuser2",
				PasswordHash: "hash456",
				LastLogin:    "2026-10-18T09:00:00Z",
				Disabled:     true,
				CreatedAt:    time.Now(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.CreateUser(ctx, tt.user))

			// Verify user was created
			retrieved, err := s.GetUserByUsername(ctx, tt.user.Username)
			require.NoError(t, err)
			assert.Equal(t, tt.user.ID, retrieved.ID)
			assert.Equal(t, tt.user.PasswordHash, retrieved.PasswordHash)
			assert.Equal(t, tt.user.LastLogin, retrieved.LastLogin)
			assert.Equal(t, tt.user.Disabled, retrieved.Disabled)
			assert.WithinDuration(t, tt.user.CreatedAt, retrieved.CreatedAt, time.Second)
		})
	}
}

func TestUserStorage_CreateUser_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user1 := &models.User{ID: uuid.New().String(), Username: "duplicate", PasswordHash: "h", CreatedAt: time.Now()}
	require.NoError(t, s.CreateUser(ctx, user1))

	user2 := &models.User{ID: uuid.New().String(), Username: "duplicate", PasswordHash: "h", CreatedAt: time.Now()}
	assert.ErrorIs(t, s.CreateUser(ctx, user2), storage.ErrUserAlreadyExists)
}

func TestUserStorage_GetUserByUsername_NotFound(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUserStorage_UpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s)
	stamp := models.SessionStamp(time.Now())

	require.NoError(t, s.UpdateLastLogin(ctx, user.ID, stamp))

	retrieved, err := s.GetUserByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, stamp, retrieved.LastLogin)

	assert.ErrorIs(t, s.UpdateLastLogin(ctx, "missing", stamp), storage.ErrUserNotFound)
}

func TestUserStorage_SetDisabled(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s)

	require.NoError(t, s.SetDisabled(ctx, user.Username, true))
	retrieved, err := s.GetUserByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.True(t, retrieved.Disabled)

	require.NoError(t, s.SetDisabled(ctx, user.Username, false))
	retrieved, err = s.GetUserByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.False(t, retrieved.Disabled)

	assert.ErrorIs(t, s.SetDisabled(ctx, "nobody", true), storage.ErrUserNotFound)
}
