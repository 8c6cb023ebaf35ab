package invoice

import "errors"

var (
	ErrInvalidCycle      = errors.New("invalid billing cycle")
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrInvoicePaid       = errors.New("invoice is already paid")
	ErrNoLinkedExpenses  = errors.New("invoice has no expenses to mark as paid")
	ErrNotCreditExpense  = errors.New("only credit expenses can belong to an invoice")
	ErrDuplicateCycle    = errors.New("invoice already exists for this card and billing cycle")
	ErrNothingToBill     = errors.New("no open credit expenses to bill")
	ErrLinkedExpenseGone = errors.New("linked expense not found")
)
