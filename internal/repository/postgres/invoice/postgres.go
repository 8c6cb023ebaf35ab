package invoice

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	expensedomain "homecash/internal/domain/expense"
	invoicedomain "homecash/internal/domain/invoice"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(invoicedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetByID(ctx context.Context, invoiceID string) (*invoicedomain.Invoice, error) {
	return r.getByID(ctx, invoiceID, false)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, invoiceID string) (*invoicedomain.Invoice, error) {
	return r.getByID(ctx, invoiceID, true)
}

func (r *PostgresRepository) getByID(ctx context.Context, invoiceID string, forUpdate bool) (*invoicedomain.Invoice, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var inv invoicedomain.Invoice
	if err := query.Where("id = ?", invoiceID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PostgresRepository) ListByCreditCard(ctx context.Context, cardID string) ([]invoicedomain.Invoice, error) {
	var invoices []invoicedomain.Invoice
	if err := r.db.WithContext(ctx).
		Where("credit_card_id = ?", cardID).
		Order("year desc, month desc").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *PostgresRepository) ListLinks(ctx context.Context, invoiceID string) ([]invoicedomain.InvoiceExpense, error) {
	var links []invoicedomain.InvoiceExpense
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("expense_id asc").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *PostgresRepository) GetLinkedExpense(ctx context.Context, expenseID string) (*expensedomain.Expense, error) {
	var e expensedomain.Expense
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", expenseID).
		First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrLinkedExpenseGone
		}
		return nil, err
	}
	return &e, nil
}

func (r *PostgresRepository) ListBillableExpenses(ctx context.Context, cardID string) ([]expensedomain.Expense, error) {
	var expenses []expensedomain.Expense
	err := r.db.WithContext(ctx).
		Table("expenses").
		Joins("left join invoice_expenses on invoice_expenses.expense_id = expenses.id").
		Where("expenses.credit_card_id = ?", cardID).
		Where("expenses.payment_method = ?", expensedomain.PaymentMethodCredit).
		Where("expenses.status = ?", expensedomain.StatusOpen).
		Where("invoice_expenses.invoice_id IS NULL").
		Order("expenses.created_at asc").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *PostgresRepository) SettleExpense(ctx context.Context, expenseID string) error {
	err := r.db.WithContext(ctx).Model(&expensedomain.Expense{}).
		Where("id = ?", expenseID).
		Update("status", expensedomain.StatusPaid).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&expensedomain.Participant{}).
		Where("expense_id = ?", expenseID).
		Update("status", expensedomain.ShareStatusPaid).Error
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, invoiceID, status string) error {
	return r.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).Where("id = ?", invoiceID).Update("status", status).Error
}

func (r *PostgresRepository) Create(ctx context.Context, inv *invoicedomain.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *PostgresRepository) LinkExpense(ctx context.Context, link *invoicedomain.InvoiceExpense) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *PostgresRepository) ExistsForCycle(ctx context.Context, cardID string, month, year int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).
		Where("credit_card_id = ? AND month = ? AND year = ?", cardID, month, year).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
