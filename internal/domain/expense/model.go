package expense

import "time"

const (
	PaymentMethodCash   = "cash"
	PaymentMethodCredit = "credit"

	StatusOpen = "open"
	StatusPaid = "paid"

	ShareStatusOwes = "owes"
	ShareStatusPaid = "paid"

	TypeFixed    = "fixed"
	TypeVariable = "variable"
)

type Expense struct {
	ID            string     `gorm:"type:uuid;primaryKey"`
	HouseID       string     `gorm:"type:uuid;index;not null"`
	Title         string     `gorm:"not null"`
	Category      string     `gorm:"not null"`
	AmountCents   int64      `gorm:"not null"`
	Type          string     `gorm:"type:varchar(16);not null"`
	DueDate       *time.Time `gorm:"type:date"`
	PaymentMethod string     `gorm:"type:varchar(16);not null"`
	Status        string     `gorm:"type:varchar(16);not null;index"`
	CreatedBy     string     `gorm:"type:uuid;index;not null"`
	CreditCardID  *string    `gorm:"type:uuid"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

// Participant is one member's share of an expense. Shares belong to their
// expense and never outlive it.
type Participant struct {
	ExpenseID   string `gorm:"type:uuid;primaryKey"`
	UserID      string `gorm:"type:uuid;primaryKey;index"`
	AmountCents int64  `gorm:"not null"`
	Status      string `gorm:"type:varchar(16);not null"`
}

type Share struct {
	UserID      string
	AmountCents int64
}

type CreateExpenseInput struct {
	HouseID       string
	Title         string
	Category      string
	AmountCents   int64
	Type          string
	DueDate       *time.Time
	PaymentMethod string
	CreditCardID  *string
}

type UpdateExpenseInput struct {
	ID            string
	Title         string
	Category      string
	AmountCents   int64
	Type          string
	DueDate       *time.Time
	PaymentMethod string
	CreditCardID  *string
}
