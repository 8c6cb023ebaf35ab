package user

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	SetActive(ctx context.Context, userID string, active bool) error
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	HasSoleOwnedHouse(ctx context.Context, userID string) (bool, error)
}
