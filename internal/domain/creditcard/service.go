package creditcard

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// HouseRoles answers the global "is this user an owner somewhere" question.
type HouseRoles interface {
	IsOwnerAnywhere(ctx context.Context, userID string) (bool, error)
}

type UserDirectory interface {
	IsActive(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	repo   Repository
	houses HouseRoles
	users  UserDirectory
}

func NewService(repo Repository, houses HouseRoles, users UserDirectory) *Service {
	return &Service{repo: repo, houses: houses, users: users}
}

func (s *Service) Create(ctx context.Context, userID string, input CardInput) (*CreditCard, error) {
	if err := s.requireCardManager(ctx, userID); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	card := CreditCard{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       input.Name,
		Brand:      input.Brand,
		LastDigits: input.LastDigits,
		LimitCents: input.LimitCents,
		ClosingDay: input.ClosingDay,
		DueDay:     input.DueDay,
	}
	if err := s.repo.Create(ctx, &card); err != nil {
		return nil, err
	}

	return &card, nil
}

func (s *Service) Update(ctx context.Context, cardID, userID string, input CardInput) (*CreditCard, error) {
	if err := s.requireCardManager(ctx, userID); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	var result CreditCard
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		card, err := getOwned(ctx, tx, cardID, userID)
		if err != nil {
			return err
		}

		card.Name = input.Name
		card.Brand = input.Brand
		card.LastDigits = input.LastDigits
		card.LimitCents = input.LimitCents
		card.ClosingDay = input.ClosingDay
		card.DueDay = input.DueDay

		if err := tx.Update(ctx, card); err != nil {
			return err
		}

		result = *card
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) Delete(ctx context.Context, cardID, userID string) error {
	if err := s.requireCardManager(ctx, userID); err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := getOwned(ctx, tx, cardID, userID); err != nil {
			return err
		}

		open, err := tx.CountOpenInvoices(ctx, cardID)
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrCardInUse
		}

		return tx.Delete(ctx, cardID)
	})
}

func (s *Service) GetByID(ctx context.Context, cardID, userID string) (*CreditCard, error) {
	return getOwned(ctx, s.repo, cardID, userID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]CreditCard, error) {
	return s.repo.ListByUser(ctx, userID)
}

// VerifyOwned is the ownership check other components delegate to. It
// reports ErrCardNotFound for missing and foreign cards alike.
func (s *Service) VerifyOwned(ctx context.Context, cardID, userID string) error {
	_, err := getOwned(ctx, s.repo, cardID, userID)
	return err
}

func getOwned(ctx context.Context, repo Repository, cardID, userID string) (*CreditCard, error) {
	card, err := repo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, ErrCardNotFound
	}
	return card, nil
}

func (s *Service) requireCardManager(ctx context.Context, userID string) error {
	owner, err := s.houses.IsOwnerAnywhere(ctx, userID)
	if err != nil {
		return err
	}
	if !owner {
		return ErrNotHouseOwner
	}

	active, err := s.users.IsActive(ctx, userID)
	if err != nil {
		return err
	}
	if !active {
		return ErrInactiveUser
	}
	return nil
}

func validateInput(input *CardInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Brand = strings.TrimSpace(input.Brand)
	input.LastDigits = strings.TrimSpace(input.LastDigits)

	if input.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.Brand == "" {
		return fmt.Errorf("%w: brand is required", ErrInvalidInput)
	}
	if len(input.LastDigits) != 4 || !isDigits(input.LastDigits) {
		return fmt.Errorf("%w: last digits must be exactly 4 digits", ErrInvalidInput)
	}
	if input.LimitCents <= 0 {
		return fmt.Errorf("%w: limit must be greater than 0", ErrInvalidInput)
	}
	if input.ClosingDay < 1 || input.ClosingDay > 31 {
		return fmt.Errorf("%w: closing day must be between 1 and 31", ErrInvalidInput)
	}
	if input.DueDay < 1 || input.DueDay > 31 {
		return fmt.Errorf("%w: due day must be between 1 and 31", ErrInvalidInput)
	}
	return nil
}

func isDigits(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
