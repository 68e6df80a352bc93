package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	result, err := c.engine.Drain(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	switch {
	case result.Skipped:
		c.io.Println("Another synchronization is already running.")
	case result.Attempted == 0:
		c.io.Println("✓ Nothing to send")
	case result.Stopped:
		c.io.Printf("Sent:      %d request(s)\n", result.Delivered)
		c.io.Printf("Remaining: %d request(s)\n", result.Remaining)
		c.io.Printf("⚠️  Stopped at %s: %s\n", result.StoppedAt, result.StopReason)
	default:
		c.io.Printf("✓ Sent %d request(s)\n", result.Delivered)
		if result.Remaining > 0 {
			c.io.Printf("Remaining: %d request(s) added during sync\n", result.Remaining)
		}
	}

	return nil
}

func (c *Cli) runQueue(ctx context.Context) error {
	ops := c.engine.Pending(ctx)
	if len(ops) == 0 {
		c.io.Println("Offline queue is empty")
		return nil
	}

	c.io.Printf("=== Offline Queue (%d) ===\n\n", len(ops))
	for i, op := range ops {
		c.io.Printf("%3d. %-16s %s  %s\n", i+1, op.Payload.Action(), op.EnqueuedAt.Local().Format(time.DateTime), op.ID)
	}
	return nil
}

func (c *Cli) runWatch(ctx context.Context) error {
	if c.watcher == nil {
		return fmt.Errorf("connectivity watcher is not configured")
	}

	c.io.Println("Watching connection, press Ctrl+C to stop.")
	return c.watcher.Run(ctx)
}
