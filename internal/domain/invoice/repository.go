package invoice

import (
	"context"

	"homecash/internal/domain/expense"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetByID(ctx context.Context, invoiceID string) (*Invoice, error)
	// GetByIDForUpdate reads the invoice with a row lock; concurrent
	// settlements of the same invoice serialize behind this transaction.
	GetByIDForUpdate(ctx context.Context, invoiceID string) (*Invoice, error)
	ListByCreditCard(ctx context.Context, cardID string) ([]Invoice, error)
	ListLinks(ctx context.Context, invoiceID string) ([]InvoiceExpense, error)
	GetLinkedExpense(ctx context.Context, expenseID string) (*expense.Expense, error)
	// ListBillableExpenses returns the card's open credit expenses that are
	// not yet linked to any invoice.
	ListBillableExpenses(ctx context.Context, cardID string) ([]expense.Expense, error)
	// SettleExpense flips the expense and all of its participant shares to
	// paid. Callers run it inside the settlement transaction.
	SettleExpense(ctx context.Context, expenseID string) error
	UpdateStatus(ctx context.Context, invoiceID, status string) error
	Create(ctx context.Context, inv *Invoice) error
	LinkExpense(ctx context.Context, link *InvoiceExpense) error
	ExistsForCycle(ctx context.Context, cardID string, month, year int) (bool, error)
}
