package domain

import (
	"context"
	"time"
)

// PaymentMethod is how a customer paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// Transaction is a sold service.
type Transaction struct {
	ID            string        `json:"id"`
	StaffID       int           `json:"staff_id"`
	StaffName     string        `json:"staff_name"`
	ServiceID     int           `json:"service_id"`
	ServiceName   string        `json:"service_name"`
	Amount        int64         `json:"amount"`
	Tip           int64         `json:"tip"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Note          string        `json:"note,omitempty"`
	CreatedBy     int           `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Expense is money spent by the shop on a given day.
type Expense struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Amount      int64     `json:"amount"`
	SpentOn     string    `json:"spent_on"`
	CreatedBy   int       `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateTransactionRequest struct {
	StaffID       int           `json:"staff_id" binding:"required"`
	ServiceID     int           `json:"service_id" binding:"required"`
	Amount        *int64        `json:"amount"`
	Tip           int64         `json:"tip"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Note          string        `json:"note"`
}

type CreateExpenseRequest struct {
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	SpentOn     string `json:"spent_on"`
}

// TransactionRepository defines the data-access contract for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, t *Transaction) error

	// ListBetween returns transactions with from <= created_at < to, oldest first.
	ListBetween(ctx context.Context, from, to time.Time) ([]Transaction, error)

	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// ExpenseRepository defines the data-access contract for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, e *Expense) error

	// ListBetween returns expenses spent on fromDay..toDay inclusive.
	ListBetween(ctx context.Context, fromDay, toDay string) ([]Expense, error)

	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
}
