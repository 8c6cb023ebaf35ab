package expense

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	expensedomain "homecash/internal/domain/expense"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(expensedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetByID(ctx context.Context, expenseID string) (*expensedomain.Expense, error) {
	return r.getByID(ctx, expenseID, false)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, expenseID string) (*expensedomain.Expense, error) {
	return r.getByID(ctx, expenseID, true)
}

func (r *PostgresRepository) getByID(ctx context.Context, expenseID string, forUpdate bool) (*expensedomain.Expense, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var e expensedomain.Expense
	if err := query.Where("id = ?", expenseID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, expensedomain.ErrExpenseNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PostgresRepository) ListByHouse(ctx context.Context, houseID string) ([]expensedomain.Expense, error) {
	var expenses []expensedomain.Expense
	if err := r.db.WithContext(ctx).
		Where("house_id = ?", houseID).
		Order("created_at desc").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *expensedomain.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *PostgresRepository) Update(ctx context.Context, e *expensedomain.Expense) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, expenseID string) error {
	return r.db.WithContext(ctx).Delete(&expensedomain.Expense{}, "id = ?", expenseID).Error
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, expenseID, status string) error {
	return r.db.WithContext(ctx).Model(&expensedomain.Expense{}).Where("id = ?", expenseID).Update("status", status).Error
}

func (r *PostgresRepository) ListParticipants(ctx context.Context, expenseID string) ([]expensedomain.Participant, error) {
	var participants []expensedomain.Participant
	if err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Order("user_id asc").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *PostgresRepository) ReplaceParticipants(ctx context.Context, expenseID string, participants []expensedomain.Participant) error {
	if err := r.DeleteParticipants(ctx, expenseID); err != nil {
		return err
	}
	if len(participants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&participants).Error
}

func (r *PostgresRepository) DeleteParticipants(ctx context.Context, expenseID string) error {
	return r.db.WithContext(ctx).Where("expense_id = ?", expenseID).Delete(&expensedomain.Participant{}).Error
}

func (r *PostgresRepository) SetParticipantsStatus(ctx context.Context, expenseID, status string) error {
	return r.db.WithContext(ctx).Model(&expensedomain.Participant{}).
		Where("expense_id = ?", expenseID).
		Update("status", status).Error
}
