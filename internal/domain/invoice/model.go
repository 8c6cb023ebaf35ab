package invoice

import "time"

const (
	StatusOpen = "open"
	StatusPaid = "paid"
)

type Invoice struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	CreditCardID string    `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_cycle"`
	Month        int       `gorm:"not null;uniqueIndex:idx_invoice_cycle"`
	Year         int       `gorm:"not null;uniqueIndex:idx_invoice_cycle"`
	TotalCents   int64     `gorm:"not null"`
	Status       string    `gorm:"type:varchar(16);not null;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// InvoiceExpense records which expenses are billed on which invoice. Only
// credit expenses may ever be linked.
type InvoiceExpense struct {
	InvoiceID string `gorm:"type:uuid;primaryKey"`
	ExpenseID string `gorm:"type:uuid;primaryKey;index"`
}

// InvoiceWithExpenses is the read view handed to callers: the invoice plus
// the ids of its linked expenses.
type InvoiceWithExpenses struct {
	Invoice
	ExpenseIDs []string
}
