package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iudanet/invoicekeeper/internal/client/api"
	"github.com/iudanet/invoicekeeper/internal/client/connectivity"
	"github.com/iudanet/invoicekeeper/internal/client/invoice"
	"github.com/iudanet/invoicekeeper/internal/client/iocli"
	"github.com/iudanet/invoicekeeper/internal/client/session"
	"github.com/iudanet/invoicekeeper/internal/client/storage/boltdb"
	clientsync "github.com/iudanet/invoicekeeper/internal/client/sync"
	"github.com/iudanet/invoicekeeper/internal/config"
	"github.com/iudanet/invoicekeeper/internal/logger"
)

// BuildInfo is set via ldflags during build
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// app holds the resources opened for one command run
type app struct {
	cli     *Cli
	cfg     *config.ClientConfig
	log     *slog.Logger
	stdio   iocli.IO
	closers []io.Closer
	cancel  context.CancelFunc
}

// Execute runs the command line and releases resources even when the
// command fails
func Execute(ctx context.Context, build BuildInfo) error {
	root, a := newRootCommand(build)
	defer func() {
		if err := a.close(); err != nil {
			slog.Error("failed to close resources", "error", err)
		}
	}()
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the invoicekeeper command tree
func NewRootCommand(build BuildInfo) *cobra.Command {
	root, _ := newRootCommand(build)
	return root
}

func newRootCommand(build BuildInfo) (*cobra.Command, *app) {
	var (
		configFile string
		a          = &app{}
	)

	root := &cobra.Command{
		Use:           "invoicekeeper",
		Short:         "Offline-safe invoicing client",
		Version:       fmt.Sprintf("%s (built %s, commit %s)", build.Version, build.BuildDate, build.GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsClient(cmd) {
				return nil
			}
			return a.open(cmd, configFile)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/invoicekeeper/config.yaml)")
	flags.String("endpoint", "", "Endpoint URL")
	flags.String("db", "", "Path to local database")
	flags.Duration("timeout", 0, "Request timeout")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-file", "", "Write logs to a rotated file instead of stderr")

	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newStatusCommand(a),
		newNextCommand(a),
		newInvoiceCommand(a),
		newExpensesCommand(a),
		newApproveCommand(a),
		newSyncCommand(a),
		newQueueCommand(a),
		newWatchCommand(a),
	)

	return root, a
}

// needsClient reports whether cmd talks to the endpoint or the local database
func needsClient(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func newLoginCommand(a *app) *cobra.Command {
	var (
		username  string
		passwords Passwords
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runLogin(cmd.Context(), username, passwords)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVar(&passwords.FromFile, "password-file", "", "Path to file containing the password")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runLogout(cmd.Context())
		},
	}
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session, connection and offline queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runStatus(cmd.Context())
		},
	}
}

func newNextCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the next free invoice number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runNext(cmd.Context())
		},
	}
}

func newInvoiceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Manage invoices",
	}

	var in InvoiceInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an invoice with its items",
		Example: `  invoicekeeper invoice add --customer "Acme" --item "Paint:2:10.25" --item "Brush:3:1.10"
  invoicekeeper invoice add --no INV-0042 --customer "Acme"   # offline, prompts for items`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runInvoiceAdd(cmd.Context(), in)
		},
	}
	add.Flags().StringVar(&in.InvoiceNo, "no", "", "Invoice number (default: next number from server)")
	add.Flags().StringVar(&in.Date, "date", "", "Invoice date YYYY-MM-DD (default: today)")
	add.Flags().StringVarP(&in.Customer, "customer", "c", "", "Customer name")
	add.Flags().StringVar(&in.Phone, "phone", "", "Customer phone")
	add.Flags().StringVar(&in.Notes, "notes", "", "Notes")
	add.Flags().StringArrayVarP(&in.Items, "item", "i", nil, "Item as description:quantity:unit_price (repeatable)")

	cmd.AddCommand(add)
	return cmd
}

func newExpensesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expenses",
		Short: "List expenses waiting for approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runExpenses(cmd.Context())
		},
	}
}

func newApproveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <expense-id>...",
		Short: "Approve expenses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runApprove(cmd.Context(), args)
		},
	}
}

func newSyncCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send queued requests now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runSync(cmd.Context())
		},
	}
}

func newQueueCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List queued requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runQueue(cmd.Context())
		},
	}
}

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the connection and send queued requests when it is back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			// A forced logout stops watching
			a.cancel = cancel
			return a.cli.runWatch(ctx)
		},
	}
}

// open loads configuration and wires the client
func (a *app) open(cmd *cobra.Command, configFile string) error {
	cfg, err := config.LoadClient(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	log, logCloser, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, logCloser)
	slog.SetDefault(log)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	a.cfg = cfg
	a.log = log
	a.stdio = iocli.NewStdio()
	prober := connectivity.NewHTTPProber(cfg.Endpoint, cfg.ProbeTimeout)

	// watch is long-lived and must not hold the database file between drains
	if cmd.Name() == "watch" {
		drainer := &cycleDrainer{open: a.openLocal, logger: log}
		observer := connectivity.NewObserver(prober, drainer, a.stdio, cfg.ProbeInterval, log)
		a.cli = New(a.stdio, nil, nil, observer, log)
		return nil
	}

	local, err := a.openLocal(cmd.Context())
	if err != nil {
		return err
	}
	a.closers = append(a.closers, local.store)

	invoices := invoice.NewService(local.transport, local.engine, local.store, log)
	observer := connectivity.NewObserver(prober, local.engine, a.stdio, cfg.ProbeInterval, log)

	a.cli = New(a.stdio, invoices, local.engine, observer, log)

	log.DebugContext(cmd.Context(), "client ready", "endpoint", cfg.Endpoint, "db", cfg.DBPath)

	return nil
}

// localClient is the part of the client bound to one open database handle
type localClient struct {
	store     *boltdb.Storage
	transport *api.Client
	engine    *clientsync.Engine
}

// openLocal opens the local database and builds the transport and the sync
// engine on top of it. The caller owns the returned store.
func (a *app) openLocal(ctx context.Context) (*localClient, error) {
	store, err := boltdb.NewWithTimeout(ctx, a.cfg.DBPath, a.cfg.LockTimeout, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	transport := api.NewClient(a.cfg.Endpoint, store, a.cfg.Timeout, a.log)
	guard := session.NewGuard(store, a.stdio, a.log, a.onLogout)
	engine := clientsync.NewEngine(transport, store, guard, a.log).WithMetadata(store)

	return &localClient{store: store, transport: transport, engine: engine}, nil
}

func (a *app) onLogout() {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *app) close() error {
	var firstErr error
	// Close in reverse order: database first, then the log
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
