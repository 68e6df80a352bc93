package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/invoicekeeper/internal/models"
	"github.com/iudanet/invoicekeeper/internal/server/storage"
)

// CreateExpense stores a new claim
func (s *Storage) CreateExpense(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (id, submitted_by, description, date, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	status := expense.Status
	if status == "" {
		status = models.ExpenseStatusPending
	}

	_, err := s.db.ExecContext(ctx, query,
		expense.ID,
		expense.SubmittedBy,
		expense.Description,
		expense.Date,
		expense.Amount,
		status,
		expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	return nil
}

// ListExpenses returns claims with the given status, oldest first
func (s *Storage) ListExpenses(ctx context.Context, status string) ([]models.Expense, error) {
	query := `
		SELECT id, submitted_by, description, date, amount, status, approved_by, approved_at, created_at
		FROM expenses
		WHERE status = ?
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var (
			expense    models.Expense
			approvedAt sql.NullTime
		)
		if err := rows.Scan(
			&expense.ID,
			&expense.SubmittedBy,
			&expense.Description,
			&expense.Date,
			&expense.Amount,
			&expense.Status,
			&expense.ApprovedBy,
			&approvedAt,
			&expense.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if approvedAt.Valid {
			expense.ApprovedAt = &approvedAt.Time
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// ApproveExpense marks a pending claim approved
func (s *Storage) ApproveExpense(ctx context.Context, id, approvedBy string, at time.Time) error {
	query := `
		UPDATE expenses
		SET status = ?, approved_by = ?, approved_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		models.ExpenseStatusApproved,
		approvedBy,
		at,
		id,
		models.ExpenseStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to approve expense: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 1 {
		return nil
	}

	// Отличаем отсутствующую запись от уже обработанной
	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM expenses WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrExpenseNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get expense: %w", err)
	}

	return storage.ErrExpenseNotPending
}
