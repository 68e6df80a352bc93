package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/invoicekeeper/internal/validation"
	"github.com/iudanet/invoicekeeper/pkg/api"
)

// InvoiceInput collects the invoice add flags
type InvoiceInput struct {
	InvoiceNo string
	Date      string
	Customer  string
	Phone     string
	Notes     string
	Items     []string // description:quantity:unit_price
}

func (c *Cli) runNext(ctx context.Context) error {
	no, err := c.invoices.NextInvoiceNo(ctx)
	if err != nil {
		return err
	}
	c.io.Println(no)
	return nil
}

func (c *Cli) runInvoiceAdd(ctx context.Context, in InvoiceInput) error {
	c.io.Println("=== New Invoice ===")
	c.io.Println()

	inv := api.Invoice{
		InvoiceNo:     in.InvoiceNo,
		Date:          in.Date,
		CustomerName:  in.Customer,
		CustomerPhone: in.Phone,
		Notes:         in.Notes,
	}

	if inv.Date == "" {
		inv.Date = time.Now().Format(validation.DateLayout)
	}

	// Номер берем с сервера, офлайн его нужно указать явно
	if inv.InvoiceNo == "" {
		no, err := c.invoices.NextInvoiceNo(ctx)
		if err != nil {
			return fmt.Errorf("failed to get invoice number (pass --no when offline): %w", err)
		}
		inv.InvoiceNo = no
	}

	if inv.CustomerName == "" {
		name, err := c.io.ReadInput("Customer name: ")
		if err != nil {
			return fmt.Errorf("failed to read customer name: %w", err)
		}
		inv.CustomerName = name
	}

	items, err := parseItems(in.Items)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		items, err = c.promptItems()
		if err != nil {
			return err
		}
	}

	result, err := c.invoices.AddInvoice(ctx, inv, items)
	if err != nil {
		if result != nil && (result.Sent > 0 || result.Queued > 0) {
			c.io.Printf("Invoice %s saved partially: %d sent, %d queued\n", result.InvoiceNo, result.Sent, result.Queued)
		}
		return err
	}

	c.io.Println()
	c.io.Printf("Invoice: %s\n", result.InvoiceNo)
	c.io.Printf("Total:   %.2f\n", result.Total)
	c.io.Printf("Items:   %d\n", len(items))

	if result.Queued > 0 {
		c.printQueued(ctx)
		return nil
	}

	c.io.Println("✓ Invoice saved")
	return nil
}

// promptItems asks for item lines until an empty description
func (c *Cli) promptItems() ([]api.InvoiceItem, error) {
	c.io.Println("Enter items, empty description to finish.")

	var items []api.InvoiceItem
	for {
		description, err := c.io.ReadInput("Description: ")
		if err != nil {
			return nil, fmt.Errorf("failed to read description: %w", err)
		}
		if description == "" {
			return items, nil
		}

		quantity, err := c.readNumber("Quantity: ")
		if err != nil {
			return nil, err
		}
		price, err := c.readNumber("Unit price: ")
		if err != nil {
			return nil, err
		}

		items = append(items, api.InvoiceItem{Description: description, Quantity: quantity, UnitPrice: price})
	}
}

func (c *Cli) readNumber(prompt string) (float64, error) {
	raw, err := c.io.ReadInput(prompt)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(strings.ToLower(prompt), ": "), err)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

// parseItems разбирает строки вида "описание:количество:цена".
// Описание может содержать двоеточия.
func parseItems(raws []string) ([]api.InvoiceItem, error) {
	items := make([]api.InvoiceItem, 0, len(raws))
	for _, raw := range raws {
		parts := strings.Split(raw, ":")
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid item %q, expected description:quantity:unit_price", raw)
		}

		n := len(parts)
		quantity, err := strconv.ParseFloat(strings.TrimSpace(parts[n-2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in item %q", raw)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(parts[n-1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price in item %q", raw)
		}

		items = append(items, api.InvoiceItem{
			Description: strings.TrimSpace(strings.Join(parts[:n-2], ":")),
			Quantity:    quantity,
			UnitPrice:   price,
		})
	}
	return items, nil
}
