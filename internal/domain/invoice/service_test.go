package invoice

import (
	"context"
	"errors"
	"testing"

	"homecash/internal/domain/expense"
)

type fakeInvoiceRepo struct {
	invoices map[string]*Invoice
	links    map[string][]InvoiceExpense
	expenses map[string]*expense.Expense

	// settleFailOn makes SettleExpense fail for one expense id, to exercise
	// the all-or-nothing cascade.
	settleFailOn string
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices: make(map[string]*Invoice),
		links:    make(map[string][]InvoiceExpense),
		expenses: make(map[string]*expense.Expense),
	}
}

// Transaction snapshots state and restores it when fn fails, mirroring the
// rollback behavior the service relies on.
func (r *fakeInvoiceRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	savedInvoices := make(map[string]Invoice, len(r.invoices))
	for id, inv := range r.invoices {
		savedInvoices[id] = *inv
	}
	savedExpenses := make(map[string]expense.Expense, len(r.expenses))
	for id, e := range r.expenses {
		savedExpenses[id] = *e
	}
	savedLinks := make(map[string][]InvoiceExpense, len(r.links))
	for id, links := range r.links {
		savedLinks[id] = append([]InvoiceExpense(nil), links...)
	}

	err := fn(r)
	if err != nil {
		r.invoices = make(map[string]*Invoice, len(savedInvoices))
		for id := range savedInvoices {
			inv := savedInvoices[id]
			r.invoices[id] = &inv
		}
		r.expenses = make(map[string]*expense.Expense, len(savedExpenses))
		for id := range savedExpenses {
			e := savedExpenses[id]
			r.expenses[id] = &e
		}
		r.links = savedLinks
	}
	return err
}

func (r *fakeInvoiceRepo) GetByID(ctx context.Context, invoiceID string) (*Invoice, error) {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

func (r *fakeInvoiceRepo) GetByIDForUpdate(ctx context.Context, invoiceID string) (*Invoice, error) {
	return r.GetByID(ctx, invoiceID)
}

func (r *fakeInvoiceRepo) ListByCreditCard(ctx context.Context, cardID string) ([]Invoice, error) {
	result := make([]Invoice, 0)
	for _, inv := range r.invoices {
		if inv.CreditCardID == cardID {
			result = append(result, *inv)
		}
	}
	return result, nil
}

func (r *fakeInvoiceRepo) ListLinks(ctx context.Context, invoiceID string) ([]InvoiceExpense, error) {
	return r.links[invoiceID], nil
}

func (r *fakeInvoiceRepo) GetLinkedExpense(ctx context.Context, expenseID string) (*expense.Expense, error) {
	e, ok := r.expenses[expenseID]
	if !ok {
		return nil, ErrLinkedExpenseGone
	}
	return e, nil
}

func (r *fakeInvoiceRepo) ListBillableExpenses(ctx context.Context, cardID string) ([]expense.Expense, error) {
	linked := make(map[string]bool)
	for _, links := range r.links {
		for _, link := range links {
			linked[link.ExpenseID] = true
		}
	}

	result := make([]expense.Expense, 0)
	for _, e := range r.expenses {
		if e.CreditCardID == nil || *e.CreditCardID != cardID {
			continue
		}
		if e.PaymentMethod != expense.PaymentMethodCredit || e.Status != expense.StatusOpen {
			continue
		}
		if linked[e.ID] {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

func (r *fakeInvoiceRepo) SettleExpense(ctx context.Context, expenseID string) error {
	if r.settleFailOn == expenseID {
		return errors.New("settle failed")
	}
	e, ok := r.expenses[expenseID]
	if !ok {
		return ErrLinkedExpenseGone
	}
	e.Status = expense.StatusPaid
	return nil
}

func (r *fakeInvoiceRepo) UpdateStatus(ctx context.Context, invoiceID, status string) error {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return ErrInvoiceNotFound
	}
	inv.Status = status
	return nil
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, inv *Invoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func (r *fakeInvoiceRepo) LinkExpense(ctx context.Context, link *InvoiceExpense) error {
	r.links[link.InvoiceID] = append(r.links[link.InvoiceID], *link)
	return nil
}

func (r *fakeInvoiceRepo) ExistsForCycle(ctx context.Context, cardID string, month, year int) (bool, error) {
	for _, inv := range r.invoices {
		if inv.CreditCardID == cardID && inv.Month == month && inv.Year == year {
			return true, nil
		}
	}
	return false, nil
}

type fakeCardRegistry struct {
	owned map[string]string
}

func (c *fakeCardRegistry) VerifyOwned(ctx context.Context, cardID, userID string) error {
	owner, ok := c.owned[cardID]
	if !ok || owner != userID {
		return errors.New("credit card not found")
	}
	return nil
}

func newTestInvoiceService(repo *fakeInvoiceRepo) *Service {
	return NewService(repo, &fakeCardRegistry{owned: map[string]string{"card-1": "user-1"}})
}

func seedCreditExpense(repo *fakeInvoiceRepo, id string, amountCents int64) {
	cardID := "card-1"
	repo.expenses[id] = &expense.Expense{
		ID:            id,
		HouseID:       "house-1",
		Title:         "Purchase " + id,
		Category:      "shopping",
		AmountCents:   amountCents,
		Type:          expense.TypeVariable,
		PaymentMethod: expense.PaymentMethodCredit,
		Status:        expense.StatusOpen,
		CreatedBy:     "user-1",
		CreditCardID:  &cardID,
	}
}

func seedInvoice(repo *fakeInvoiceRepo, invoiceID string, expenseIDs ...string) {
	var total int64
	for _, id := range expenseIDs {
		total += repo.expenses[id].AmountCents
		repo.links[invoiceID] = append(repo.links[invoiceID], InvoiceExpense{InvoiceID: invoiceID, ExpenseID: id})
	}
	repo.invoices[invoiceID] = &Invoice{
		ID:           invoiceID,
		CreditCardID: "card-1",
		Month:        8,
		Year:         2026,
		TotalCents:   total,
		Status:       StatusOpen,
	}
}

func TestGenerateForCycleSuccess(t *testing.T) {
	repo := newFakeInvoiceRepo()
	seedCreditExpense(repo, "exp-1", 3000)
	seedCreditExpense(repo, "exp-2", 2000)

	svc := newTestInvoiceService(repo)
	result, err := svc.GenerateForCycle(context.Background(), "card-1", "user-1", 8, 2026)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.TotalCents != 5000 {
		t.Fatalf("expected total 5000, got %d", result.TotalCents)
	}
	if len(result.ExpenseIDs) != 2 {
		t.Fatalf("expected 2 linked expenses, got %d", len(result.ExpenseIDs))
	}
	if result.Status != StatusOpen {
		t.Fatalf("expected open status, got %q", result.Status)
	}
}

func TestGenerateForCycleDuplicate(t *testing.T) {
	repo := newFakeInvoiceRepo()
	seedCreditExpense(repo, "exp-1", 3000)
	seedInvoice(repo, "inv-1", "exp-1")
	seedCreditExpense(repo, "exp-2", 2000)

	svc := newTestInvoiceService(repo)
	_, err := svc.GenerateForCycle(context.Background(), "card-1", "user-1", 8, 2026)
	if !errors.Is(err, ErrDuplicateCycle) {
		t.Fatalf("expected ErrDuplicateCycle, got %v", err)
	}
}

func TestGenerateForCycleSkipsBilledExpenses(t *testing.T) {
	repo := newFakeInvoiceRepo()
	seedCreditExpense(repo, "exp-1", 3000)
	seedInvoice(repo, "inv-1", "exp-1")
	seedCreditExpense(repo, "exp-2", 2000)

	svc := newTestInvoiceService(repo)
	result, err := svc.GenerateForCycle(context.Background(), "card-1", "user-1", 9, 2026)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.ExpenseIDs) != 1 || result.ExpenseIDs[0] != "exp-2" {
		t.Fatalf("expected only exp-2 billed, got %v", result.ExpenseIDs)
	}
	if result.TotalCents != 2000 {
		t.Fatalf("expected total 2000, got %d", result.TotalCents)
	}
}

func TestGenerateForCycleNothingToBill(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc := newTestInvoiceService(repo)
	_, err := svc.GenerateForCycle(context.Background(), "card-1", "user-1", 8, 2026)
	if !errors.Is(err, ErrNothingToBill) {
		t.Fatalf("expected ErrNothingToBill, got %v", err)
	}
}

func TestGenerateForCycleInvalidMonth(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc := newTestInvoiceService(repo)
	_, err := svc.GenerateForCycle(context.Background(), "card-1", "user-1", 13, 2026)
	if !errors.Is(err, ErrInvalidCycle) {
		t.Fatalf("expected ErrInvalidCycle, got %v", err)
	}
}

func TestMarkPaidCascadesToExpenses(t *testing.T) {
	repo := newFakeInvoiceRepo()
	seedCreditExpense(repo, "exp-1", 3000)
	seedCreditExpense(repo, "exp-2", 2000)
	seedInvoice(repo, "inv-1", "exp-1", "exp-2")

	svc := newTestInvoiceService(repo)
	result, err := svc.MarkPaid(context.Background(), "inv-1", "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != StatusPaid {
		t.Fatalf("expected paid invoice, got %q", result.Status)
	}
	for _, id := range []string{"exp-1", "exp-2"} {
		if repo.expenses[id].Status != expense.StatusPaid {
			t.Fatalf("expected %s settled, got %q", id, repo.expenses[id].Status)
		}
	}
}

func TestMarkPaidIsAllOrNothing(t *testing.T) {
	repo := newFakeInvoiceRepo()
	seedCreditExpense(repo, "exp-1", 3000)
	seedCreditExpense(repo, "exp-2", 2000)
	seedInvoice(repo, "inv-1", "exp-1", "exp-2")
	repo.settleFailOn = "exp-2"

	svc := newTestInvoiceService(repo)
	_, err := svc.MarkPaid(context.Background(), "inv-1", "user-1")
	if err == nil {
		t.Fatalf("expected settlement to fail")
	}

	// The first cascaded expense must be rolled back along with the invoice.
	if repo.expenses["exp-1"].Status != expense.StatusOpen {
		t.Fatalf("expected exp-1 rolled back to open, got %q", repo.expenses["exp-1"].Status)
	}
	if repo.invoices["inv-1"].Status != StatusOpen {
		t.Fatalf("expected invoice to stay open, got %q", repo.invoices["inv-1"].Status)
	}
}

func TestMarkPaidTwice(t *testing.T) {
	repo := newFakeInvoiceRepo()
	seedCreditExpense(repo, "exp-1", 3000)
	seedInvoice(repo, "inv-1", "exp-1")

	svc := newTestInvoiceService(repo)
	if _, err := svc.MarkPaid(context.Background(), "inv-1", "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, err := svc.MarkPaid(context.Background(), "inv-1", "user-1")
	if !errors.Is(err, ErrInvoicePaid) {
		t.Fatalf("expected ErrInvoicePaid, got %v", err)
	}
}

func TestMarkPaidNoLinkedExpenses(t *testing.T) {
	repo := newFakeInvoiceRepo()
	repo.invoices["inv-1"] = &Invoice{ID: "inv-1", CreditCardID: "card-1", Month: 8, Year: 2026, Status: StatusOpen}

	svc := newTestInvoiceService(repo)
	_, err := svc.MarkPaid(context.Background(), "inv-1", "user-1")
	if !errors.Is(err, ErrNoLinkedExpenses) {
		t.Fatalf("expected ErrNoLinkedExpenses, got %v", err)
	}
}

func TestMarkPaidRejectsNonCreditExpense(t *testing.T) {
	repo := newFakeInvoiceRepo()
	seedCreditExpense(repo, "exp-1", 3000)
	seedInvoice(repo, "inv-1", "exp-1")
	repo.expenses["exp-1"].PaymentMethod = expense.PaymentMethodCash

	svc := newTestInvoiceService(repo)
	_, err := svc.MarkPaid(context.Background(), "inv-1", "user-1")
	if !errors.Is(err, ErrNotCreditExpense) {
		t.Fatalf("expected ErrNotCreditExpense, got %v", err)
	}
	if repo.invoices["inv-1"].Status != StatusOpen {
		t.Fatalf("expected invoice to stay open")
	}
}

func TestGetByIDForeignCard(t *testing.T) {
	repo := newFakeInvoiceRepo()
	seedCreditExpense(repo, "exp-1", 3000)
	seedInvoice(repo, "inv-1", "exp-1")

	svc := newTestInvoiceService(repo)
	_, err := svc.GetByID(context.Background(), "inv-1", "user-2")
	if err == nil {
		t.Fatalf("expected error for foreign card invoice")
	}
}
