package house

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	inviteCodeLength   = 8
	inviteCodeAttempts = 10
)

// UserDirectory is the slice of the user registry this package needs.
type UserDirectory interface {
	IsActive(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	repo  Repository
	users UserDirectory
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

// CreateHouse creates a house together with a single owner membership. A
// house is never observable without at least one owner.
func (s *Service) CreateHouse(ctx context.Context, userID, name string) (*House, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	if err := s.requireActiveUser(ctx, userID); err != nil {
		return nil, err
	}

	var result House
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		code, err := generateUniqueInviteCode(ctx, tx)
		if err != nil {
			return err
		}

		created := House{
			ID:         uuid.NewString(),
			Name:       name,
			InviteCode: code,
		}
		if err := tx.Create(ctx, &created); err != nil {
			return err
		}

		owner := HouseMember{
			HouseID: created.ID,
			UserID:  userID,
			Role:    RoleOwner,
		}
		if err := tx.AddMember(ctx, &owner); err != nil {
			return err
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// JoinHouse resolves a house by invite code and adds the user as a plain
// member. Joining never grants ownership.
func (s *Service) JoinHouse(ctx context.Context, userID, code string) (*House, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("invite code is required")
	}

	if err := s.requireActiveUser(ctx, userID); err != nil {
		return nil, err
	}

	var result House
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		found, err := tx.GetByInviteCode(ctx, code)
		if err != nil {
			return err
		}

		if _, err := tx.GetMember(ctx, found.ID, userID); err == nil {
			return ErrAlreadyMember
		} else if !errors.Is(err, ErrMemberNotFound) {
			return err
		}

		member := HouseMember{
			HouseID: found.ID,
			UserID:  userID,
			Role:    RoleMember,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = *found
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) AddMember(ctx context.Context, houseID, targetUserID, requesterID string) error {
	if err := s.requireActiveUser(ctx, targetUserID); err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		if err := validatePermission(ctx, tx, requesterID, houseID, true); err != nil {
			return err
		}
		if _, err := tx.GetByID(ctx, houseID); err != nil {
			return err
		}

		if _, err := tx.GetMember(ctx, houseID, targetUserID); err == nil {
			return ErrAlreadyMember
		} else if !errors.Is(err, ErrMemberNotFound) {
			return err
		}

		member := HouseMember{
			HouseID: houseID,
			UserID:  targetUserID,
			Role:    RoleMember,
		}
		return tx.AddMember(ctx, &member)
	})
}

// RemoveMember deletes a membership while preserving the standing house
// invariants: never zero members, never zero owners.
func (s *Service) RemoveMember(ctx context.Context, houseID, targetUserID, requesterID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		// The member and owner counts below are only trustworthy while the
		// house row is locked.
		if _, err := tx.GetByIDForUpdate(ctx, houseID); err != nil {
			return err
		}
		if err := validatePermission(ctx, tx, requesterID, houseID, true); err != nil {
			return err
		}

		member, err := tx.GetMember(ctx, houseID, targetUserID)
		if err != nil {
			return err
		}

		total, err := tx.CountMembers(ctx, houseID)
		if err != nil {
			return err
		}
		if total <= 1 {
			return ErrLastMember
		}

		if member.Role == RoleOwner {
			owners, err := tx.CountMembersByRole(ctx, houseID, RoleOwner)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return ErrLastOwner
			}
		}

		return tx.DeleteMember(ctx, houseID, targetUserID)
	})
}

func (s *Service) RegenerateInviteCode(ctx context.Context, houseID, requesterID string) (*House, error) {
	var result House
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := validatePermission(ctx, tx, requesterID, houseID, true); err != nil {
			return err
		}

		found, err := tx.GetByID(ctx, houseID)
		if err != nil {
			return err
		}

		code, err := generateUniqueInviteCode(ctx, tx)
		if err != nil {
			return err
		}
		if err := tx.UpdateInviteCode(ctx, houseID, code); err != nil {
			return err
		}

		found.InviteCode = code
		result = *found
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// DeleteHouse removes all memberships and then the house itself in one
// transaction, so a partially dismembered house is never observable.
func (s *Service) DeleteHouse(ctx context.Context, houseID, requesterID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetByIDForUpdate(ctx, houseID); err != nil {
			return err
		}
		if err := validatePermission(ctx, tx, requesterID, houseID, true); err != nil {
			return err
		}

		if err := tx.DeleteMembersByHouse(ctx, houseID); err != nil {
			return err
		}
		return tx.Delete(ctx, houseID)
	})
}

func (s *Service) GetByID(ctx context.Context, houseID, userID string) (*House, error) {
	if err := s.ValidatePermission(ctx, userID, houseID, false); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, houseID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]House, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListMembers(ctx context.Context, houseID, userID string) ([]HouseMember, error) {
	if err := s.ValidatePermission(ctx, userID, houseID, false); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, houseID)
}

// ValidatePermission is the authorization backbone for every house-scoped
// operation: membership is always required, ownership only when asked for.
func (s *Service) ValidatePermission(ctx context.Context, userID, houseID string, requireOwner bool) error {
	return validatePermission(ctx, s.repo, userID, houseID, requireOwner)
}

// IsMember reports plain membership without distinguishing roles.
func (s *Service) IsMember(ctx context.Context, userID, houseID string) (bool, error) {
	_, err := s.repo.GetMember(ctx, houseID, userID)
	if errors.Is(err, ErrMemberNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsOwnerAnywhere reports whether the user holds the owner role in at least
// one house. The credit card registry gates on this globally.
func (s *Service) IsOwnerAnywhere(ctx context.Context, userID string) (bool, error) {
	memberships, err := s.repo.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, m := range memberships {
		if m.Role == RoleOwner {
			return true, nil
		}
	}
	return false, nil
}

func validatePermission(ctx context.Context, repo Repository, userID, houseID string, requireOwner bool) error {
	member, err := repo.GetMember(ctx, houseID, userID)
	if errors.Is(err, ErrMemberNotFound) {
		return ErrNotMember
	}
	if err != nil {
		return err
	}
	if requireOwner && member.Role != RoleOwner {
		return ErrNotOwner
	}
	return nil
}

func (s *Service) requireActiveUser(ctx context.Context, userID string) error {
	active, err := s.users.IsActive(ctx, userID)
	if err != nil {
		return err
	}
	if !active {
		return ErrInactiveUser
	}
	return nil
}

func generateUniqueInviteCode(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code := newInviteCode()
		taken, err := repo.IsInviteCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func newInviteCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:inviteCodeLength])
}
