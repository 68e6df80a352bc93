package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvoiceExists indicates that the invoice number is already taken
	ErrInvoiceExists = errors.New("invoice already exists")

	// ErrInvoiceNotFound indicates that the invoice was not found
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrExpenseNotFound indicates that the expense was not found
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrExpenseNotPending indicates that the expense was already processed
	ErrExpenseNotPending = errors.New("expense is not pending")
)
