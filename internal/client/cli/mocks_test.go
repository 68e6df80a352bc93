package cli

import (
	"context"
	"sync"
	"time"

	"github.com/iudanet/invoicekeeper/internal/client/invoice"
	"github.com/iudanet/invoicekeeper/internal/client/storage"
	clientsync "github.com/iudanet/invoicekeeper/internal/client/sync"
	"github.com/iudanet/invoicekeeper/pkg/api"
)

// InvoiceServiceMock is a mock implementation of InvoiceService
type InvoiceServiceMock struct {
	LoginFunc           func(ctx context.Context, username, password string) (*storage.Identity, error)
	LogoutFunc          func(ctx context.Context) error
	CurrentUserFunc     func(ctx context.Context) (*storage.Identity, error)
	NextInvoiceNoFunc   func(ctx context.Context) (string, error)
	AddInvoiceFunc      func(ctx context.Context, inv api.Invoice, items []api.InvoiceItem) (*invoice.AddInvoiceResult, error)
	PendingExpensesFunc func(ctx context.Context) ([]api.Expense, error)
	ApproveExpenseFunc  func(ctx context.Context, id string) (bool, error)

	calls struct {
		Login      []struct{ Username, Password string }
		AddInvoice []struct {
			Invoice api.Invoice
			Items   []api.InvoiceItem
		}
		ApproveExpense []string
	}
	lock sync.Mutex
}

func (m *InvoiceServiceMock) Login(ctx context.Context, username, password string) (*storage.Identity, error) {
	m.lock.Lock()
	m.calls.Login = append(m.calls.Login, struct{ Username, Password string }{username, password})
	m.lock.Unlock()
	return m.LoginFunc(ctx, username, password)
}

func (m *InvoiceServiceMock) Logout(ctx context.Context) error {
	return m.LogoutFunc(ctx)
}

func (m *InvoiceServiceMock) CurrentUser(ctx context.Context) (*storage.Identity, error) {
	return m.CurrentUserFunc(ctx)
}

func (m *InvoiceServiceMock) NextInvoiceNo(ctx context.Context) (string, error) {
	return m.NextInvoiceNoFunc(ctx)
}

func (m *InvoiceServiceMock) AddInvoice(ctx context.Context, inv api.Invoice, items []api.InvoiceItem) (*invoice.AddInvoiceResult, error) {
	m.lock.Lock()
	m.calls.AddInvoice = append(m.calls.AddInvoice, struct {
		Invoice api.Invoice
		Items   []api.InvoiceItem
	}{inv, items})
	m.lock.Unlock()
	return m.AddInvoiceFunc(ctx, inv, items)
}

func (m *InvoiceServiceMock) PendingExpenses(ctx context.Context) ([]api.Expense, error) {
	return m.PendingExpensesFunc(ctx)
}

func (m *InvoiceServiceMock) ApproveExpense(ctx context.Context, id string) (bool, error) {
	m.lock.Lock()
	m.calls.ApproveExpense = append(m.calls.ApproveExpense, id)
	m.lock.Unlock()
	return m.ApproveExpenseFunc(ctx, id)
}

// SyncEngineMock is a mock implementation of SyncEngine
type SyncEngineMock struct {
	DrainFunc   func(ctx context.Context) (*clientsync.DrainResult, error)
	PendingFunc func(ctx context.Context) []storage.QueuedOperation
	lastSync    time.Time
	pending     int
}

func (m *SyncEngineMock) Drain(ctx context.Context) (*clientsync.DrainResult, error) {
	return m.DrainFunc(ctx)
}

func (m *SyncEngineMock) PendingCount(ctx context.Context) int {
	return m.pending
}

func (m *SyncEngineMock) Pending(ctx context.Context) []storage.QueuedOperation {
	if m.PendingFunc == nil {
		return nil
	}
	return m.PendingFunc(ctx)
}

func (m *SyncEngineMock) LastSync(ctx context.Context) time.Time {
	return m.lastSync
}

// WatcherMock is a mock implementation of Watcher
type WatcherMock struct {
	RunFunc   func(ctx context.Context) error
	CheckFunc func(ctx context.Context) bool
}

func (m *WatcherMock) Run(ctx context.Context) error {
	return m.RunFunc(ctx)
}

func (m *WatcherMock) Check(ctx context.Context) bool {
	return m.CheckFunc(ctx)
}
