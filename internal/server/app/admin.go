package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/invoicekeeper/internal/crypto"
	"github.com/iudanet/invoicekeeper/internal/models"
	"github.com/iudanet/invoicekeeper/internal/server/storage"
	"github.com/iudanet/invoicekeeper/internal/validation"
)

// CreateUser registers a user with a bcrypt password hash
func CreateUser(ctx context.Context, users storage.UserStorage, username, password string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("user %s already exists: %w", username, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// demoExpenses are pending claims inserted by SeedDemoExpenses
var demoExpenses = []struct {
	submittedBy string
	description string
	amount      float64
}{
	{"warehouse", "Packing tape and boxes", 18.40},
	{"driver", "Fuel for delivery van", 62.15},
	{"office", "Printer toner", 44.99},
}

// SeedDemoExpenses inserts a few pending expenses dated today so the
// approval flow can be tried against a fresh database
func SeedDemoExpenses(ctx context.Context, expenses storage.ExpenseStorage, now time.Time) (int, error) {
	for i, demo := range demoExpenses {
		expense := &models.Expense{
			ID:          uuid.New().String(),
			SubmittedBy: demo.submittedBy,
			Description: demo.description,
			Date:        now.Format(validation.DateLayout),
			Status:      models.ExpenseStatusPending,
			Amount:      demo.amount,
			CreatedAt:   now,
		}
		if err := expenses.CreateExpense(ctx, expense); err != nil {
			return i, fmt.Errorf("failed to seed expense: %w", err)
		}
	}
	return len(demoExpenses), nil
}
