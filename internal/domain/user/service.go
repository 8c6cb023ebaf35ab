package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) GetActiveByEmail(ctx context.Context, email string) (*User, error) {
	found, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !found.Active {
		return nil, ErrUserInactive
	}
	return found, nil
}

// Register creates a user record. The password hash is produced by the caller
// so this package stays free of credential mechanics.
func (s *Service) Register(ctx context.Context, name, email, passwordHash string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email address")
	}

	var created User
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		taken, err := tx.IsEmailTaken(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}

		created = User{
			ID:           uuid.NewString(),
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			Active:       true,
		}
		return tx.Create(ctx, &created)
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (s *Service) Deactivate(ctx context.Context, userID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		found, err := tx.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !found.Active {
			return ErrUserInactive
		}

		sole, err := tx.HasSoleOwnedHouse(ctx, userID)
		if err != nil {
			return err
		}
		if sole {
			return ErrSoleHouseOwner
		}
		return tx.SetActive(ctx, userID, false)
	})
}

// IsActive reports whether the user exists and is active. Unknown users
// surface ErrUserNotFound so callers can distinguish the two cases.
func (s *Service) IsActive(ctx context.Context, userID string) (bool, error) {
	found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return found.Active, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
