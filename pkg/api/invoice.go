package api

// NextInvoiceNoResponse carries the next free invoice number
type NextInvoiceNoResponse struct {
	InvoiceNo string `json:"invoice_no"`
}

// Invoice is the header row of an invoice (addInvoice)
type Invoice struct {
	InvoiceNo     string  `json:"invoice_no"`
	Date          string  `json:"date"` // YYYY-MM-DD
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	Total         float64 `json:"total"`
}

// InvoiceItem is a line of an invoice (addInvoiceItem)
type InvoiceItem struct {
	InvoiceNo   string  `json:"invoice_no"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// Expense is a row returned by getPendingExpenses
type Expense struct {
	ID          string  `json:"id"`
	SubmittedBy string  `json:"submitted_by"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	Amount      float64 `json:"amount"`
}

// PendingExpensesResponse is the reply of getPendingExpenses
type PendingExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

// ApproveExpenseRequest is the payload of approveExpense
type ApproveExpenseRequest struct {
	ID string `json:"id"`
}
