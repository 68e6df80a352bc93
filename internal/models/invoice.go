package models

import "time"

// InvoiceNoPrefix начало каждого номера накладной
const InvoiceNoPrefix = "INV-"

// Invoice is a stored invoice header
type Invoice struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	InvoiceNo     string    `json:"invoice_no"`
	Date          string    `json:"date"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	Notes         string    `json:"notes"`
	CreatedBy     string    `json:"created_by"`
	Total         float64   `json:"total"`
}

// InvoiceItem is a stored invoice line
type InvoiceItem struct {
	CreatedAt   time.Time `json:"created_at"`
	ID          string    `json:"id"`
	InvoiceNo   string    `json:"invoice_no"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Amount      float64   `json:"amount"`
}

// Статусы расходов
const (
	ExpenseStatusPending  = "pending"
	ExpenseStatusApproved = "approved"
)

// Expense is an expense claim waiting for or past approval
type Expense struct {
	CreatedAt   time.Time  `json:"created_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ID          string     `json:"id"`
	SubmittedBy string     `json:"submitted_by"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	Status      string     `json:"status"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	Amount      float64    `json:"amount"`
}
