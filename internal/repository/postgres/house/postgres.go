package house

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	housedomain "homecash/internal/domain/house"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(housedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetByID(ctx context.Context, houseID string) (*housedomain.House, error) {
	var h housedomain.House
	if err := r.db.WithContext(ctx).Where("id = ?", houseID).First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, housedomain.ErrHouseNotFound
		}
		return nil, err
	}
	return &h, nil
}

// GetByIDForUpdate takes a row lock on the house so that membership
// mutations for the same house serialize.
func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, houseID string) (*housedomain.House, error) {
	var h housedomain.House
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", houseID).
		First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, housedomain.ErrHouseNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *PostgresRepository) GetByInviteCode(ctx context.Context, code string) (*housedomain.House, error) {
	var h housedomain.House
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, housedomain.ErrInviteCodeNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]housedomain.House, error) {
	var houses []housedomain.House
	err := r.db.WithContext(ctx).
		Table("houses").
		Joins("join house_members on house_members.house_id = houses.id").
		Where("house_members.user_id = ?", userID).
		Order("houses.created_at asc").
		Find(&houses).Error
	if err != nil {
		return nil, err
	}
	return houses, nil
}

func (r *PostgresRepository) GetMember(ctx context.Context, houseID, userID string) (*housedomain.HouseMember, error) {
	var member housedomain.HouseMember
	if err := r.db.WithContext(ctx).Where("house_id = ? AND user_id = ?", houseID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, housedomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, houseID string) ([]housedomain.HouseMember, error) {
	var members []housedomain.HouseMember
	if err := r.db.WithContext(ctx).
		Where("house_id = ?", houseID).
		Order("joined_at asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) ListMembershipsByUser(ctx context.Context, userID string) ([]housedomain.HouseMember, error) {
	var members []housedomain.HouseMember
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) Create(ctx context.Context, h *housedomain.House) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *PostgresRepository) UpdateInviteCode(ctx context.Context, houseID, code string) error {
	return r.db.WithContext(ctx).Model(&housedomain.House{}).Where("id = ?", houseID).Update("invite_code", code).Error
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *housedomain.HouseMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, houseID, userID string) error {
	return r.db.WithContext(ctx).Delete(&housedomain.HouseMember{}, "house_id = ? AND user_id = ?", houseID, userID).Error
}

func (r *PostgresRepository) DeleteMembersByHouse(ctx context.Context, houseID string) error {
	return r.db.WithContext(ctx).Where("house_id = ?", houseID).Delete(&housedomain.HouseMember{}).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, houseID string) error {
	return r.db.WithContext(ctx).Delete(&housedomain.House{}, "id = ?", houseID).Error
}

func (r *PostgresRepository) CountMembers(ctx context.Context, houseID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&housedomain.HouseMember{}).Where("house_id = ?", houseID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CountMembersByRole(ctx context.Context, houseID, role string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&housedomain.HouseMember{}).
		Where("house_id = ? AND role = ?", houseID, role).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) IsInviteCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&housedomain.House{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
