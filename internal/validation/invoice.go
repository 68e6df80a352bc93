package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/iudanet/invoicekeeper/pkg/api"
)

// InvoiceNoPattern is the invoice number format handed out by the endpoint
var InvoiceNoPattern = regexp.MustCompile(`^INV-\d{4,}$`)

// DateLayout is the date format of invoices and expenses
const DateLayout = "2006-01-02"

// ValidateInvoiceNo checks the invoice number format
func ValidateInvoiceNo(invoiceNo string) error {
	if invoiceNo == "" {
		return fmt.Errorf("invoice number cannot be empty")
	}
	if !InvoiceNoPattern.MatchString(invoiceNo) {
		return fmt.Errorf("invoice number %q must look like INV-0001", invoiceNo)
	}
	return nil
}

// ValidateInvoice checks an invoice header before it is sent or queued
func ValidateInvoice(inv *api.Invoice) error {
	if inv == nil {
		return fmt.Errorf("invoice is nil")
	}
	if err := ValidateInvoiceNo(inv.InvoiceNo); err != nil {
		return err
	}
	if strings.TrimSpace(inv.CustomerName) == "" {
		return fmt.Errorf("customer name cannot be empty")
	}
	if _, err := time.Parse(DateLayout, inv.Date); err != nil {
		return fmt.Errorf("invoice date %q must be YYYY-MM-DD", inv.Date)
	}
	if inv.Total < 0 {
		return fmt.Errorf("invoice total cannot be negative")
	}
	return nil
}

// ValidateItem checks an invoice line
func ValidateItem(item *api.InvoiceItem) error {
	if item == nil {
		return fmt.Errorf("item is nil")
	}
	if strings.TrimSpace(item.Description) == "" {
		return fmt.Errorf("item description cannot be empty")
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("item %q: quantity must be positive", item.Description)
	}
	if item.UnitPrice < 0 {
		return fmt.Errorf("item %q: unit price cannot be negative", item.Description)
	}
	return nil
}
