package expense

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetByID(ctx context.Context, expenseID string) (*Expense, error)
	// GetByIDForUpdate reads the expense with a row lock so a concurrent
	// settlement of the same expense serializes behind this transaction.
	GetByIDForUpdate(ctx context.Context, expenseID string) (*Expense, error)
	ListByHouse(ctx context.Context, houseID string) ([]Expense, error)
	Create(ctx context.Context, expense *Expense) error
	Update(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, expenseID string) error
	UpdateStatus(ctx context.Context, expenseID, status string) error
	ListParticipants(ctx context.Context, expenseID string) ([]Participant, error)
	ReplaceParticipants(ctx context.Context, expenseID string, participants []Participant) error
	DeleteParticipants(ctx context.Context, expenseID string) error
	SetParticipantsStatus(ctx context.Context, expenseID, status string) error
}
