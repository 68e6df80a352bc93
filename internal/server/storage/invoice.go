package storage

import (
	"context"
	"time"

	"github.com/iudanet/invoicekeeper/internal/models"
)

// InvoiceStorage defines interface for invoices and their items
type InvoiceStorage interface {
	// NextInvoiceNo returns the number after the highest stored one.
	// The number is not reserved.
	NextInvoiceNo(ctx context.Context) (string, error)

	// CreateInvoice stores a header
	// Returns ErrInvoiceExists if the number is taken
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error

	// AddInvoiceItem stores a line
	// Returns ErrInvoiceNotFound if the header does not exist
	AddInvoiceItem(ctx context.Context, item *models.InvoiceItem) error

	// GetInvoice returns the header with its items in insertion order
	GetInvoice(ctx context.Context, invoiceNo string) (*models.Invoice, []models.InvoiceItem, error)
}

// ExpenseStorage defines interface for expense claims
type ExpenseStorage interface {
	// CreateExpense stores a new claim
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpenses returns claims with the given status, oldest first
	ListExpenses(ctx context.Context, status string) ([]models.Expense, error)

	// ApproveExpense marks a pending claim approved
	// Returns ErrExpenseNotFound or ErrExpenseNotPending
	ApproveExpense(ctx context.Context, id, approvedBy string, at time.Time) error
}
