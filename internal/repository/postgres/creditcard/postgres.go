package creditcard

import (
	"context"
	"errors"

	"gorm.io/gorm"

	creditcarddomain "homecash/internal/domain/creditcard"
	invoicedomain "homecash/internal/domain/invoice"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(creditcarddomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetByID(ctx context.Context, cardID string) (*creditcarddomain.CreditCard, error) {
	var card creditcarddomain.CreditCard
	if err := r.db.WithContext(ctx).Where("id = ?", cardID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, creditcarddomain.ErrCardNotFound
		}
		return nil, err
	}
	return &card, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]creditcarddomain.CreditCard, error) {
	var cards []creditcarddomain.CreditCard
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *PostgresRepository) Create(ctx context.Context, card *creditcarddomain.CreditCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *PostgresRepository) Update(ctx context.Context, card *creditcarddomain.CreditCard) error {
	return r.db.WithContext(ctx).Save(card).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, cardID string) error {
	return r.db.WithContext(ctx).Delete(&creditcarddomain.CreditCard{}, "id = ?", cardID).Error
}

func (r *PostgresRepository) CountOpenInvoices(ctx context.Context, cardID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).
		Where("credit_card_id = ? AND status = ?", cardID, invoicedomain.StatusOpen).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
