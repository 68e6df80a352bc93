package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runLogin(ctx context.Context, username string, passwords Passwords) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	// Запрашиваем username, если не передан флагом
	if username == "" {
		var err error
		username, err = c.io.ReadInput("Username: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}

	password, err := c.readPassword(passwords)
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")

	identity, err := c.invoices.Login(ctx, username, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", identity.Username)
	c.io.Printf("Last login: %s\n", identity.LastLogin)

	// Напоминаем про офлайн очередь
	if pending := c.engine.PendingCount(ctx); pending > 0 {
		c.io.Printf("\n%d request(s) waiting in the offline queue. Run 'invoicekeeper sync' to send them.\n", pending)
	}

	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.invoices.Logout(ctx); err != nil {
		return err
	}

	c.io.Println("✓ Logged out")
	if pending := c.engine.PendingCount(ctx); pending > 0 {
		c.io.Printf("%d request(s) stay in the offline queue until the next login.\n", pending)
	}
	return nil
}
