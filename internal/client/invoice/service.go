// Package invoice provides typed operations over the invoicing endpoint.
// Writes go through the sync engine and survive network outages; reads and
// login need a live connection.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	httpClient "github.com/iudanet/invoicekeeper/internal/client/api"
	"github.com/iudanet/invoicekeeper/internal/client/storage"
	"github.com/iudanet/invoicekeeper/internal/validation"
	"github.com/iudanet/invoicekeeper/pkg/api"
)

//go:generate moq -out service_mock.go . Engine

// Engine is the part of the sync engine the service needs
type Engine interface {
	SafeCall(ctx context.Context, req api.Request) (api.Response, error)
	Fetch(ctx context.Context, req api.Request) (api.Response, error)
	Enqueue(ctx context.Context, req api.Request) (api.Response, error)
}

// Service предоставляет операции с накладными и расходами
type Service struct {
	transport httpClient.ClientAPI
	engine    Engine
	identity  storage.IdentityStorage
	logger    *slog.Logger
}

// NewService создает новый сервис
func NewService(transport httpClient.ClientAPI, engine Engine, identity storage.IdentityStorage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		transport: transport,
		engine:    engine,
		identity:  identity,
		logger:    logger,
	}
}

// Login выполняет аутентификацию и сохраняет идентичность сессии.
// Логин никогда не ставится в очередь.
func (s *Service) Login(ctx context.Context, username, password string) (*storage.Identity, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("invalid password: password cannot be empty")
	}

	req, err := api.NewRequestFrom(api.ActionLogin, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := s.transport.Call(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if err := rejection(api.ActionLogin, resp); err != nil {
		return nil, err
	}

	var login api.LoginResponse
	if err := resp.Decode(&login); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if login.LastLogin == "" {
		return nil, fmt.Errorf("login failed: server reply has no %s", api.FieldLastLogin)
	}
	if login.Username == "" {
		login.Username = username
	}

	identity := &storage.Identity{Username: login.Username, LastLogin: login.LastLogin}
	if err := s.identity.SaveIdentity(ctx, identity); err != nil {
		return nil, fmt.Errorf("failed to save identity: %w", err)
	}

	s.logger.InfoContext(ctx, "logged in", "username", identity.Username)

	return identity, nil
}

// Logout удаляет локальную сессию. Очередь не трогаем: записи отправятся
// после следующего входа.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.identity.ClearIdentity(ctx); err != nil {
		return fmt.Errorf("failed to clear identity: %w", err)
	}
	return nil
}

// CurrentUser returns the stored identity or ErrNotLoggedIn
func (s *Service) CurrentUser(ctx context.Context) (*storage.Identity, error) {
	identity, err := s.identity.GetIdentity(ctx)
	if errors.Is(err, storage.ErrIdentityNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}
	return identity, nil
}

// NextInvoiceNo asks the endpoint for the next free invoice number
func (s *Service) NextInvoiceNo(ctx context.Context) (string, error) {
	resp, err := s.fetch(ctx, api.NewRequest(api.ActionGetNextInvoiceNo))
	if err != nil {
		return "", err
	}

	var out api.NextInvoiceNoResponse
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	if out.InvoiceNo == "" {
		return "", fmt.Errorf("server reply has no invoice number")
	}
	return out.InvoiceNo, nil
}

// PendingExpenses returns expenses waiting for approval
func (s *Service) PendingExpenses(ctx context.Context) ([]api.Expense, error) {
	resp, err := s.fetch(ctx, api.NewRequest(api.ActionGetPendingExpenses))
	if err != nil {
		return nil, err
	}

	var out api.PendingExpensesResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out.Expenses, nil
}

// ApproveExpense approves an expense. queued is true when the request was
// stored for later delivery.
func (s *Service) ApproveExpense(ctx context.Context, id string) (queued bool, err error) {
	if id == "" {
		return false, fmt.Errorf("expense id cannot be empty")
	}

	req, err := api.NewRequestFrom(api.ActionApproveExpense, api.ApproveExpenseRequest{ID: id})
	if err != nil {
		return false, err
	}

	resp, err := s.engine.SafeCall(ctx, req)
	if err != nil {
		return false, err
	}
	if resp.Queued() {
		return true, nil
	}
	return false, rejection(api.ActionApproveExpense, resp)
}

// AddInvoiceResult содержит результат сохранения накладной
type AddInvoiceResult struct {
	InvoiceNo string
	Total     float64
	Sent      int // количество запросов, подтвержденных сервером
	Queued    int // количество запросов, сохраненных в очередь
}

// AddInvoice saves the header and then every item, one request at a time.
//
// Once a request of the invoice is queued the rest are queued directly, so
// items never reach the server ahead of their header. A rejected request
// stops the loop; requests already sent or queued stay.
func (s *Service) AddInvoice(ctx context.Context, inv api.Invoice, items []api.InvoiceItem) (*AddInvoiceResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("invoice has no items")
	}

	prepared := make([]api.InvoiceItem, len(items))
	var total float64
	for i, item := range items {
		item.InvoiceNo = inv.InvoiceNo
		if item.Amount == 0 {
			item.Amount = roundCents(item.Quantity * item.UnitPrice)
		}
		if err := validation.ValidateItem(&item); err != nil {
			return nil, fmt.Errorf("invalid item %d: %w", i+1, err)
		}
		total += item.Amount
		prepared[i] = item
	}
	inv.Total = roundCents(total)

	if err := validation.ValidateInvoice(&inv); err != nil {
		return nil, fmt.Errorf("invalid invoice: %w", err)
	}

	requests := make([]api.Request, 0, len(prepared)+1)
	header, err := api.NewRequestFrom(api.ActionAddInvoice, inv)
	if err != nil {
		return nil, err
	}
	requests = append(requests, header)
	for _, item := range prepared {
		req, err := api.NewRequestFrom(api.ActionAddInvoiceItem, item)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	result := &AddInvoiceResult{InvoiceNo: inv.InvoiceNo, Total: inv.Total}

	for _, req := range requests {
		var resp api.Response
		if result.Queued > 0 {
			resp, err = s.engine.Enqueue(ctx, req)
		} else {
			resp, err = s.engine.SafeCall(ctx, req)
		}
		if err != nil {
			return result, err
		}

		if resp.Queued() {
			result.Queued++
			continue
		}
		if err := rejection(req.Action(), resp); err != nil {
			return result, err
		}
		result.Sent++
	}

	s.logger.InfoContext(ctx, "invoice saved",
		"invoice_no", result.InvoiceNo,
		"sent", result.Sent,
		"queued", result.Queued)

	return result, nil
}

func (s *Service) fetch(ctx context.Context, req api.Request) (api.Response, error) {
	resp, err := s.engine.Fetch(ctx, req)
	if err != nil {
		if httpClient.IsNetworkError(err) {
			return nil, fmt.Errorf("server unreachable, try again when online: %w", err)
		}
		return nil, err
	}
	if err := rejection(req.Action(), resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
