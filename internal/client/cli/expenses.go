package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runExpenses(ctx context.Context) error {
	expenses, err := c.invoices.PendingExpenses(ctx)
	if err != nil {
		return err
	}

	if len(expenses) == 0 {
		c.io.Println("No expenses waiting for approval")
		return nil
	}

	c.io.Printf("=== Pending Expenses (%d) ===\n\n", len(expenses))
	for _, e := range expenses {
		c.io.Printf("%-12s %-10s %10.2f  %s (%s)\n", e.ID, e.Date, e.Amount, e.Description, e.SubmittedBy)
	}
	return nil
}

func (c *Cli) runApprove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("expense id is required")
	}

	queued := 0
	for _, id := range ids {
		wasQueued, err := c.invoices.ApproveExpense(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to approve %s: %w", id, err)
		}
		if wasQueued {
			queued++
			continue
		}
		c.io.Printf("✓ Expense %s approved\n", id)
	}

	if queued > 0 {
		c.printQueued(ctx)
	}
	return nil
}
