package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/iudanet/invoicekeeper/internal/models"
	"github.com/iudanet/invoicekeeper/internal/server/storage"
)

func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users        map[string]*models.User // username -> User
	getUserError error
	mu           sync.Mutex
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Username]; exists {
		return storage.ErrUserAlreadyExists
	}
	copied := *user
	m.users[user.Username] = &copied
	return nil
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	user, ok := m.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserStorage) UpdateLastLogin(ctx context.Context, userID string, lastLogin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == userID {
			user.LastLogin = lastLogin
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (m *mockUserStorage) SetDisabled(ctx context.Context, username string, disabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[username]
	if !ok {
		return storage.ErrUserNotFound
	}
	user.Disabled = disabled
	return nil
}

// mockInvoiceStorage keeps invoices in memory
type mockInvoiceStorage struct {
	invoices map[string]*models.Invoice
	items    map[string][]models.InvoiceItem
	err      error
	last     int
	mu       sync.Mutex
}

func newMockInvoiceStorage() *mockInvoiceStorage {
	return &mockInvoiceStorage{
		invoices: make(map[string]*models.Invoice),
		items:    make(map[string][]models.InvoiceItem),
	}
}

func (m *mockInvoiceStorage) NextInvoiceNo(ctx context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("INV-%04d", m.last+1), nil
}

func (m *mockInvoiceStorage) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.invoices[invoice.InvoiceNo]; exists {
		return storage.ErrInvoiceExists
	}
	m.invoices[invoice.InvoiceNo] = invoice
	m.last++
	return nil
}

func (m *mockInvoiceStorage) AddInvoiceItem(ctx context.Context, item *models.InvoiceItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.invoices[item.InvoiceNo]; !exists {
		return storage.ErrInvoiceNotFound
	}
	m.items[item.InvoiceNo] = append(m.items[item.InvoiceNo], *item)
	return nil
}

func (m *mockInvoiceStorage) GetInvoice(ctx context.Context, invoiceNo string) (*models.Invoice, []models.InvoiceItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice, exists := m.invoices[invoiceNo]
	if !exists {
		return nil, nil, storage.ErrInvoiceNotFound
	}
	return invoice, m.items[invoiceNo], nil
}

// mockExpenseStorage keeps expenses in memory
type mockExpenseStorage struct {
	expenses []*models.Expense
	mu       sync.Mutex
}

func (m *mockExpenseStorage) CreateExpense(ctx context.Context, expense *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *expense
	if copied.Status == "" {
		copied.Status = models.ExpenseStatusPending
	}
	m.expenses = append(m.expenses, &copied)
	return nil
}

func (m *mockExpenseStorage) ListExpenses(ctx context.Context, status string) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Expense{}
	for _, e := range m.expenses {
		if e.Status == status {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockExpenseStorage) ApproveExpense(ctx context.Context, id, approvedBy string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.expenses {
		if e.ID != id {
			continue
		}
		if e.Status != models.ExpenseStatusPending {
			return storage.ErrExpenseNotPending
		}
		e.Status = models.ExpenseStatusApproved
		e.ApprovedBy = approvedBy
		e.ApprovedAt = &at
		return nil
	}
	return storage.ErrExpenseNotFound
}
