package cli

import (
	"context"
	"errors"
	"time"

	"github.com/iudanet/invoicekeeper/internal/client/invoice"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	identity, err := c.invoices.CurrentUser(ctx)
	switch {
	case errors.Is(err, invoice.ErrNotLoggedIn):
		c.io.Println("User: not logged in")
		c.io.Println("Run 'invoicekeeper login' to authenticate.")
	case err != nil:
		return err
	default:
		c.io.Printf("User: %s\n", identity.Username)
		c.io.Printf("Last login: %s\n", identity.LastLogin)
	}

	// Check печатает индикатор online/offline
	if c.watcher != nil {
		c.watcher.Check(ctx)
	}

	pending := c.engine.PendingCount(ctx)
	c.io.Println()
	if pending > 0 {
		c.io.Printf("⚠️  Pending sync: %d request(s) waiting to be sent\n", pending)
		c.io.Println("Run 'invoicekeeper sync' to send them now.")
	} else {
		c.io.Println("✓ Nothing waiting to be sent")
	}

	if last := c.engine.LastSync(ctx); !last.IsZero() {
		c.io.Printf("Last sync: %s\n", last.Local().Format(time.DateTime))
	} else {
		c.io.Println("Last sync: never")
	}

	return nil
}
