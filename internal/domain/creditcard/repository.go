package creditcard

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetByID(ctx context.Context, cardID string) (*CreditCard, error)
	ListByUser(ctx context.Context, userID string) ([]CreditCard, error)
	Create(ctx context.Context, card *CreditCard) error
	Update(ctx context.Context, card *CreditCard) error
	Delete(ctx context.Context, cardID string) error
	CountOpenInvoices(ctx context.Context, cardID string) (int64, error)
}
