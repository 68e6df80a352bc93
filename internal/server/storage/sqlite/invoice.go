package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/invoicekeeper/internal/models"
	"github.com/iudanet/invoicekeeper/internal/server/storage"
)

// NextInvoiceNo returns the number after the highest stored one
func (s *Storage) NextInvoiceNo(ctx context.Context) (string, error) {
	query := `
		SELECT COALESCE(MAX(CAST(SUBSTR(invoice_no, ?) AS INTEGER)), 0)
		FROM invoices
		WHERE invoice_no LIKE ?
	`

	var last int64
	err := s.db.QueryRowContext(ctx, query, len(models.InvoiceNoPrefix)+1, models.InvoiceNoPrefix+"%").Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to get last invoice number: %w", err)
	}

	return fmt.Sprintf("%s%04d", models.InvoiceNoPrefix, last+1), nil
}

// CreateInvoice stores a header
func (s *Storage) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (id, invoice_no, date, customer_name, customer_phone, notes, total, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.InvoiceNo,
		invoice.Date,
		invoice.CustomerName,
		invoice.CustomerPhone,
		invoice.Notes,
		invoice.Total,
		invoice.CreatedBy,
		invoice.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrInvoiceExists
		}
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	return nil
}

// AddInvoiceItem stores a line after the existing ones
func (s *Storage) AddInvoiceItem(ctx context.Context, item *models.InvoiceItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM invoices WHERE invoice_no = ?`, item.InvoiceNo).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrInvoiceNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check invoice: %w", err)
	}

	query := `
		INSERT INTO invoice_items (id, seq, invoice_no, description, quantity, unit_price, amount, created_at)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?, ?
		FROM invoice_items
		WHERE invoice_no = ?
	`

	_, err = tx.ExecContext(ctx, query,
		item.ID,
		item.InvoiceNo,
		item.Description,
		item.Quantity,
		item.UnitPrice,
		item.Amount,
		item.CreatedAt,
		item.InvoiceNo,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetInvoice returns the header with its items in insertion order
func (s *Storage) GetInvoice(ctx context.Context, invoiceNo string) (*models.Invoice, []models.InvoiceItem, error) {
	query := `
		SELECT id, invoice_no, date, customer_name, customer_phone, notes, total, created_by, created_at
		FROM invoices
		WHERE invoice_no = ?
	`

	invoice := &models.Invoice{}
	err := s.db.QueryRowContext(ctx, query, invoiceNo).Scan(
		&invoice.ID,
		&invoice.InvoiceNo,
		&invoice.Date,
		&invoice.CustomerName,
		&invoice.CustomerPhone,
		&invoice.Notes,
		&invoice.Total,
		&invoice.CreatedBy,
		&invoice.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, storage.ErrInvoiceNotFound
		}
		return nil, nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_no, description, quantity, unit_price, amount, created_at
		FROM invoice_items
		WHERE invoice_no = ?
		ORDER BY seq
	`, invoiceNo)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	var items []models.InvoiceItem
	for rows.Next() {
		var item models.InvoiceItem
		if err := rows.Scan(
			&item.ID,
			&item.InvoiceNo,
			&item.Description,
			&item.Quantity,
			&item.UnitPrice,
			&item.Amount,
			&item.CreatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating invoice items: %w", err)
	}

	return invoice, items, nil
}
