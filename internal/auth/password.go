package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"homecash/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// Authenticator handles register and login on top of the user registry,
// using bcrypt for password storage.
type Authenticator struct {
	users *user.Service
}

func NewAuthenticator(users *user.Service) *Authenticator {
	return &Authenticator{users: users}
}

func (a *Authenticator) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return a.users.Register(ctx, name, email, string(hash))
}

// Authenticate verifies email and password. Unknown emails, inactive
// accounts, and wrong passwords all produce the same error.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	found, err := a.users.GetActiveByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return found, nil
}
