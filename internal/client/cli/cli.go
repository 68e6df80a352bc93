package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/iudanet/invoicekeeper/internal/client/invoice"
	"github.com/iudanet/invoicekeeper/internal/client/iocli"
	"github.com/iudanet/invoicekeeper/internal/client/storage"
	clientsync "github.com/iudanet/invoicekeeper/internal/client/sync"
	"github.com/iudanet/invoicekeeper/pkg/api"
)

// PasswordEnv задает пароль для неинтерактивного входа
const PasswordEnv = "INVOICEKEEPER_PASSWORD"

// InvoiceService is the invoice API used by the commands
type InvoiceService interface {
	Login(ctx context.Context, username, password string) (*storage.Identity, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*storage.Identity, error)
	NextInvoiceNo(ctx context.Context) (string, error)
	AddInvoice(ctx context.Context, inv api.Invoice, items []api.InvoiceItem) (*invoice.AddInvoiceResult, error)
	PendingExpenses(ctx context.Context) ([]api.Expense, error)
	ApproveExpense(ctx context.Context, id string) (bool, error)
}

// SyncEngine exposes the offline queue
type SyncEngine interface {
	Drain(ctx context.Context) (*clientsync.DrainResult, error)
	PendingCount(ctx context.Context) int
	Pending(ctx context.Context) []storage.QueuedOperation
	LastSync(ctx context.Context) time.Time
}

// Watcher follows connectivity until ctx is done
type Watcher interface {
	Run(ctx context.Context) error
	Check(ctx context.Context) bool
}

// Passwords lists non-interactive password sources
type Passwords struct {
	FromFile string
}

// Cli executes commands against the services
type Cli struct {
	io       iocli.IO
	invoices InvoiceService
	engine   SyncEngine
	watcher  Watcher
	logger   *slog.Logger
}

// New creates the command executor
func New(io iocli.IO, invoices InvoiceService, engine SyncEngine, watcher Watcher, logger *slog.Logger) *Cli {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cli{
		io:       io,
		invoices: invoices,
		engine:   engine,
		watcher:  watcher,
		logger:   logger,
	}
}

// readPassword reads the password with priority:
// 1. Environment variable INVOICEKEEPER_PASSWORD
// 2. File specified in passwords.FromFile
// 3. Interactive prompt (fallback)
func (c *Cli) readPassword(passwords Passwords) (string, error) {
	// Priority 1: Environment variable
	if envPassword := os.Getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	// Priority 2: File
	if passwords.FromFile != "" {
		content, err := os.ReadFile(passwords.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	// Priority 3: Interactive prompt
	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	return password, nil
}

// printQueued tells the user that work was saved offline
func (c *Cli) printQueued(ctx context.Context) {
	c.io.Println("⚠️  Server unreachable, saved offline.")
	c.io.Printf("Pending sync: %d request(s). They will be sent when the connection is back.\n", c.engine.PendingCount(ctx))
}
