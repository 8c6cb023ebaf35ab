package invoice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"homecash/internal/domain/expense"
)

// CardRegistry gates every invoice operation on credit card ownership.
type CardRegistry interface {
	VerifyOwned(ctx context.Context, cardID, userID string) error
}

type Service struct {
	repo  Repository
	cards CardRegistry
}

func NewService(repo Repository, cards CardRegistry) *Service {
	return &Service{repo: repo, cards: cards}
}

func (s *Service) GetByCreditCard(ctx context.Context, cardID, userID string) ([]InvoiceWithExpenses, error) {
	if err := s.cards.VerifyOwned(ctx, cardID, userID); err != nil {
		return nil, err
	}

	invoices, err := s.repo.ListByCreditCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	result := make([]InvoiceWithExpenses, 0, len(invoices))
	for _, inv := range invoices {
		view, err := s.withExpenses(ctx, inv)
		if err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, invoiceID, userID string) (*InvoiceWithExpenses, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := s.cards.VerifyOwned(ctx, inv.CreditCardID, userID); err != nil {
		return nil, err
	}

	view, err := s.withExpenses(ctx, *inv)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// GenerateForCycle groups the card's open, not-yet-billed credit expenses
// into a new invoice for the given billing month.
func (s *Service) GenerateForCycle(ctx context.Context, cardID, userID string, month, year int) (*InvoiceWithExpenses, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidCycle)
	}
	if year < 1 {
		return nil, fmt.Errorf("%w: year is required", ErrInvalidCycle)
	}
	if err := s.cards.VerifyOwned(ctx, cardID, userID); err != nil {
		return nil, err
	}

	var result InvoiceWithExpenses
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.ExistsForCycle(ctx, cardID, month, year)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateCycle
		}

		billable, err := tx.ListBillableExpenses(ctx, cardID)
		if err != nil {
			return err
		}
		if len(billable) == 0 {
			return ErrNothingToBill
		}

		var total int64
		for _, e := range billable {
			total += e.AmountCents
		}

		created := Invoice{
			ID:           uuid.NewString(),
			CreditCardID: cardID,
			Month:        month,
			Year:         year,
			TotalCents:   total,
			Status:       StatusOpen,
		}
		if err := tx.Create(ctx, &created); err != nil {
			return err
		}

		expenseIDs := make([]string, 0, len(billable))
		for _, e := range billable {
			link := InvoiceExpense{InvoiceID: created.ID, ExpenseID: e.ID}
			if err := tx.LinkExpense(ctx, &link); err != nil {
				return err
			}
			expenseIDs = append(expenseIDs, e.ID)
		}

		result = InvoiceWithExpenses{Invoice: created, ExpenseIDs: expenseIDs}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// MarkPaid settles the invoice and every linked expense in one transaction.
// The cascade is all-or-nothing: a failure on any linked expense leaves all
// of them, and the invoice, untouched.
func (s *Service) MarkPaid(ctx context.Context, invoiceID, userID string) (*InvoiceWithExpenses, error) {
	var result InvoiceWithExpenses
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		inv, err := tx.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := s.cards.VerifyOwned(ctx, inv.CreditCardID, userID); err != nil {
			return err
		}
		if inv.Status == StatusPaid {
			return ErrInvoicePaid
		}

		links, err := tx.ListLinks(ctx, invoiceID)
		if err != nil {
			return err
		}
		if len(links) == 0 {
			return ErrNoLinkedExpenses
		}

		expenseIDs := make([]string, 0, len(links))
		for _, link := range links {
			linked, err := tx.GetLinkedExpense(ctx, link.ExpenseID)
			if err != nil {
				return err
			}
			// Links are restricted to credit expenses upstream; a cash
			// expense here means corrupted state, so refuse the whole
			// settlement rather than skip it.
			if linked.PaymentMethod != expense.PaymentMethodCredit {
				return ErrNotCreditExpense
			}
			if err := tx.SettleExpense(ctx, link.ExpenseID); err != nil {
				return err
			}
			expenseIDs = append(expenseIDs, link.ExpenseID)
		}

		if err := tx.UpdateStatus(ctx, invoiceID, StatusPaid); err != nil {
			return err
		}

		inv.Status = StatusPaid
		result = InvoiceWithExpenses{Invoice: *inv, ExpenseIDs: expenseIDs}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) withExpenses(ctx context.Context, inv Invoice) (InvoiceWithExpenses, error) {
	links, err := s.repo.ListLinks(ctx, inv.ID)
	if err != nil {
		return InvoiceWithExpenses{}, err
	}

	expenseIDs := make([]string, 0, len(links))
	for _, link := range links {
		expenseIDs = append(expenseIDs, link.ExpenseID)
	}
	return InvoiceWithExpenses{Invoice: inv, ExpenseIDs: expenseIDs}, nil
}
