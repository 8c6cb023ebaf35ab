package expense

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// HouseAccess is the slice of the membership manager this package consults
// for authorization.
type HouseAccess interface {
	ValidatePermission(ctx context.Context, userID, houseID string, requireOwner bool) error
	IsMember(ctx context.Context, userID, houseID string) (bool, error)
}

// CardRegistry validates that a credit card exists and belongs to the user.
type CardRegistry interface {
	VerifyOwned(ctx context.Context, cardID, userID string) error
}

type Service struct {
	repo   Repository
	houses HouseAccess
	cards  CardRegistry
}

func NewService(repo Repository, houses HouseAccess, cards CardRegistry) *Service {
	return &Service{repo: repo, houses: houses, cards: cards}
}

func (s *Service) Create(ctx context.Context, requesterID string, input CreateExpenseInput) (*Expense, error) {
	if err := s.houses.ValidatePermission(ctx, requesterID, input.HouseID, false); err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, requesterID, input.Title, input.Category, input.AmountCents, input.Type, input.PaymentMethod, input.CreditCardID); err != nil {
		return nil, err
	}

	created := Expense{
		ID:            uuid.NewString(),
		HouseID:       input.HouseID,
		Title:         strings.TrimSpace(input.Title),
		Category:      strings.TrimSpace(input.Category),
		AmountCents:   input.AmountCents,
		Type:          input.Type,
		DueDate:       input.DueDate,
		PaymentMethod: input.PaymentMethod,
		Status:        StatusOpen,
		CreatedBy:     requesterID,
		CreditCardID:  input.CreditCardID,
	}
	if created.PaymentMethod != PaymentMethodCredit {
		created.CreditCardID = nil
	}

	if err := s.repo.Create(ctx, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

func (s *Service) Update(ctx context.Context, requesterID string, input UpdateExpenseInput) (*Expense, error) {
	var result Expense
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		current, err := tx.GetByIDForUpdate(ctx, input.ID)
		if err != nil {
			return err
		}
		if err := s.houses.ValidatePermission(ctx, requesterID, current.HouseID, false); err != nil {
			return err
		}
		if current.Status == StatusPaid {
			return ErrExpensePaid
		}
		if err := s.validateInput(ctx, requesterID, input.Title, input.Category, input.AmountCents, input.Type, input.PaymentMethod, input.CreditCardID); err != nil {
			return err
		}

		current.Title = strings.TrimSpace(input.Title)
		current.Category = strings.TrimSpace(input.Category)
		current.AmountCents = input.AmountCents
		current.Type = input.Type
		current.DueDate = input.DueDate
		current.PaymentMethod = input.PaymentMethod
		current.CreditCardID = input.CreditCardID
		if current.PaymentMethod != PaymentMethodCredit {
			current.CreditCardID = nil
		}

		if err := tx.Update(ctx, current); err != nil {
			return err
		}

		result = *current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Delete removes the expense and its shares together. Settled expenses are
// immutable, deletion included.
func (s *Service) Delete(ctx context.Context, expenseID, requesterID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		current, err := tx.GetByIDForUpdate(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := s.houses.ValidatePermission(ctx, requesterID, current.HouseID, false); err != nil {
			return err
		}
		if current.Status == StatusPaid {
			return ErrExpensePaid
		}

		if err := tx.DeleteParticipants(ctx, expenseID); err != nil {
			return err
		}
		return tx.Delete(ctx, expenseID)
	})
}

// SplitAmong replaces the participant set of an open expense. Shares carry
// positive amounts, name distinct users, and every user must belong to the
// expense's house. The share sum is only enforced at settlement time, so a
// split can be built up incrementally.
func (s *Service) SplitAmong(ctx context.Context, expenseID, requesterID string, shares []Share) ([]Participant, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: at least one share is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(shares))
	for _, share := range shares {
		if strings.TrimSpace(share.UserID) == "" {
			return nil, fmt.Errorf("%w: share user id is required", ErrInvalidInput)
		}
		if share.AmountCents <= 0 {
			return nil, fmt.Errorf("%w: share amount must be greater than 0", ErrInvalidInput)
		}
		if _, ok := seen[share.UserID]; ok {
			return nil, ErrDuplicateParticipant
		}
		seen[share.UserID] = struct{}{}
	}

	var result []Participant
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		current, err := tx.GetByIDForUpdate(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := s.houses.ValidatePermission(ctx, requesterID, current.HouseID, false); err != nil {
			return err
		}
		if current.Status == StatusPaid {
			return ErrExpensePaid
		}

		participants := make([]Participant, 0, len(shares))
		for _, share := range shares {
			member, err := s.houses.IsMember(ctx, share.UserID, current.HouseID)
			if err != nil {
				return err
			}
			if !member {
				return ErrParticipantNotMember
			}
			participants = append(participants, Participant{
				ExpenseID:   expenseID,
				UserID:      share.UserID,
				AmountCents: share.AmountCents,
				Status:      ShareStatusOwes,
			})
		}

		if err := tx.ReplaceParticipants(ctx, expenseID, participants); err != nil {
			return err
		}

		result = participants
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SplitEvenly divides the expense total across the given users and applies
// the result as the participant set.
func (s *Service) SplitEvenly(ctx context.Context, expenseID, requesterID string, userIDs []string) ([]Participant, error) {
	current, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	shares, err := EvenShares(current.AmountCents, userIDs)
	if err != nil {
		return nil, err
	}

	return s.SplitAmong(ctx, expenseID, requesterID, shares)
}

// MarkPaid settles an expense. It requires a non-empty participant set whose
// amounts sum exactly to the expense total; the expense and every share flip
// to paid in one transaction. The transition is terminal.
func (s *Service) MarkPaid(ctx context.Context, expenseID, requesterID string) (*Expense, error) {
	var result Expense
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		current, err := tx.GetByIDForUpdate(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := s.houses.ValidatePermission(ctx, requesterID, current.HouseID, false); err != nil {
			return err
		}
		if current.Status == StatusPaid {
			return ErrExpensePaid
		}

		participants, err := tx.ListParticipants(ctx, expenseID)
		if err != nil {
			return err
		}
		if len(participants) == 0 {
			return ErrNoParticipants
		}

		var sum int64
		for _, p := range participants {
			sum += p.AmountCents
		}
		if sum != current.AmountCents {
			return ErrShareSumMismatch
		}

		if err := tx.UpdateStatus(ctx, expenseID, StatusPaid); err != nil {
			return err
		}
		if err := tx.SetParticipantsStatus(ctx, expenseID, ShareStatusPaid); err != nil {
			return err
		}

		current.Status = StatusPaid
		result = *current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) GetByHouse(ctx context.Context, houseID, requesterID string) ([]Expense, error) {
	if err := s.houses.ValidatePermission(ctx, requesterID, houseID, false); err != nil {
		return nil, err
	}
	return s.repo.ListByHouse(ctx, houseID)
}

func (s *Service) GetByID(ctx context.Context, expenseID, requesterID string) (*Expense, error) {
	current, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.houses.ValidatePermission(ctx, requesterID, current.HouseID, false); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) ListParticipants(ctx context.Context, expenseID, requesterID string) ([]Participant, error) {
	current, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.houses.ValidatePermission(ctx, requesterID, current.HouseID, false); err != nil {
		return nil, err
	}
	return s.repo.ListParticipants(ctx, expenseID)
}

func (s *Service) validateInput(ctx context.Context, requesterID, title, category string, amountCents int64, expenseType, paymentMethod string, creditCardID *string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if amountCents <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidInput)
	}
	if expenseType != TypeFixed && expenseType != TypeVariable {
		return fmt.Errorf("%w: type must be %q or %q", ErrInvalidInput, TypeFixed, TypeVariable)
	}

	switch paymentMethod {
	case PaymentMethodCash:
		return nil
	case PaymentMethodCredit:
		if creditCardID == nil || strings.TrimSpace(*creditCardID) == "" {
			return ErrCardRequired
		}
		return s.cards.VerifyOwned(ctx, *creditCardID, requesterID)
	default:
		return fmt.Errorf("%w: payment method must be %q or %q", ErrInvalidInput, PaymentMethodCash, PaymentMethodCredit)
	}
}
