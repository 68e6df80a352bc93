package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/iudanet/invoicekeeper/internal/config"
	"github.com/iudanet/invoicekeeper/internal/logger"
	"github.com/iudanet/invoicekeeper/internal/server/app"
	"github.com/iudanet/invoicekeeper/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// passwordEnv задает пароль для --create-user, чтобы он не попадал в историю shell
const passwordEnv = "INVOICEKEEPER_PASSWORD"

type options struct {
	configFile  string
	createUser  string
	password    string
	disableUser string
	enableUser  string
	seedDemo    bool
	showVersion bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("invoicekeeper-server", pflag.ContinueOnError)

	var opts options
	flags.StringVar(&opts.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/invoicekeeper/config.yaml)")
	flags.String("address", "", "listen address (default :8080)")
	flags.String("db", "", "SQLite database path")
	flags.Float64("rate-limit-rps", 0, "requests per second per client IP")
	flags.Int("rate-limit-burst", 0, "burst size per client IP")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("log-file", "", "write logs to a rotated file instead of stderr")
	flags.StringVar(&opts.createUser, "create-user", "", "create a user and exit")
	flags.StringVar(&opts.password, "password", "", "password for --create-user (or "+passwordEnv+")")
	flags.StringVar(&opts.disableUser, "disable-user", "", "disable a user and exit")
	flags.StringVar(&opts.enableUser, "enable-user", "", "enable a user and exit")
	flags.BoolVar(&opts.seedDemo, "seed-demo", false, "insert demo pending expenses and exit")
	flags.BoolVar(&opts.showVersion, "version", false, "show version information")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.showVersion {
		printVersion()
		return nil
	}

	cfg, err := config.LoadServer(opts.configFile, flags)
	if err != nil {
		return err
	}

	log, logCloser, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	// Административные команды выполняются без запуска сервера
	switch {
	case opts.createUser != "":
		password := opts.password
		if password == "" {
			password = os.Getenv(passwordEnv)
		}
		if _, err := app.CreateUser(ctx, store, opts.createUser, password); err != nil {
			return err
		}
		fmt.Printf("User %s created\n", opts.createUser)
		return nil
	case opts.disableUser != "":
		if err := store.SetDisabled(ctx, opts.disableUser, true); err != nil {
			return fmt.Errorf("failed to disable %s: %w", opts.disableUser, err)
		}
		fmt.Printf("User %s disabled\n", opts.disableUser)
		return nil
	case opts.enableUser != "":
		if err := store.SetDisabled(ctx, opts.enableUser, false); err != nil {
			return fmt.Errorf("failed to enable %s: %w", opts.enableUser, err)
		}
		fmt.Printf("User %s enabled\n", opts.enableUser)
		return nil
	case opts.seedDemo:
		n, err := app.SeedDemoExpenses(ctx, store, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("Inserted %d pending expenses\n", n)
		return nil
	}

	log.Info("Starting invoicekeeper server",
		"version", Version,
		"address", cfg.Address,
		"db", cfg.DBPath)

	return app.New(cfg, log, store, Version).Run(ctx)
}

func printVersion() {
	fmt.Printf("InvoiceKeeper Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
