package creditcard

import (
	"context"
	"errors"
	"testing"
)

type fakeCardRepo struct {
	cards        map[string]*CreditCard
	openInvoices map[string]int64
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{
		cards:        make(map[string]*CreditCard),
		openInvoices: make(map[string]int64),
	}
}

func (r *fakeCardRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeCardRepo) GetByID(ctx context.Context, cardID string) (*CreditCard, error) {
	card, ok := r.cards[cardID]
	if !ok {
		return nil, ErrCardNotFound
	}
	return card, nil
}

func (r *fakeCardRepo) ListByUser(ctx context.Context, userID string) ([]CreditCard, error) {
	result := make([]CreditCard, 0)
	for _, card := range r.cards {
		if card.UserID == userID {
			result = append(result, *card)
		}
	}
	return result, nil
}

func (r *fakeCardRepo) Create(ctx context.Context, card *CreditCard) error {
	r.cards[card.ID] = card
	return nil
}

func (r *fakeCardRepo) Update(ctx context.Context, card *CreditCard) error {
	r.cards[card.ID] = card
	return nil
}

func (r *fakeCardRepo) Delete(ctx context.Context, cardID string) error {
	delete(r.cards, cardID)
	return nil
}

func (r *fakeCardRepo) CountOpenInvoices(ctx context.Context, cardID string) (int64, error) {
	return r.openInvoices[cardID], nil
}

type fakeHouseRoles struct {
	owners map[string]bool
}

func (h *fakeHouseRoles) IsOwnerAnywhere(ctx context.Context, userID string) (bool, error) {
	return h.owners[userID], nil
}

type fakeUserDirectory struct {
	inactive map[string]bool
}

func (d *fakeUserDirectory) IsActive(ctx context.Context, userID string) (bool, error) {
	return !d.inactive[userID], nil
}

func newTestCardService(repo *fakeCardRepo, owners ...string) *Service {
	roles := &fakeHouseRoles{owners: make(map[string]bool)}
	for _, id := range owners {
		roles.owners[id] = true
	}
	return NewService(repo, roles, &fakeUserDirectory{inactive: make(map[string]bool)})
}

func validInput() CardInput {
	return CardInput{
		Name:       "Platinum",
		Brand:      "Visa",
		LastDigits: "4242",
		LimitCents: 500000,
		ClosingDay: 5,
		DueDay:     15,
	}
}

func TestCreateCardSuccess(t *testing.T) {
	repo := newFakeCardRepo()
	svc := newTestCardService(repo, "user-1")

	result, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.UserID != "user-1" {
		t.Fatalf("expected owner user-1, got %q", result.UserID)
	}
	if _, ok := repo.cards[result.ID]; !ok {
		t.Fatalf("expected card stored")
	}
}

func TestCreateCardRequiresHouseOwner(t *testing.T) {
	repo := newFakeCardRepo()
	svc := newTestCardService(repo)

	_, err := svc.Create(context.Background(), "user-1", validInput())
	if !errors.Is(err, ErrNotHouseOwner) {
		t.Fatalf("expected ErrNotHouseOwner, got %v", err)
	}
}

func TestCreateCardValidation(t *testing.T) {
	repo := newFakeCardRepo()
	svc := newTestCardService(repo, "user-1")

	cases := []struct {
		name  string
		mutate func(*CardInput)
	}{
		{"empty name", func(in *CardInput) { in.Name = "  " }},
		{"empty brand", func(in *CardInput) { in.Brand = "" }},
		{"short digits", func(in *CardInput) { in.LastDigits = "42" }},
		{"non numeric digits", func(in *CardInput) { in.LastDigits = "42ab" }},
		{"zero limit", func(in *CardInput) { in.LimitCents = 0 }},
		{"closing day low", func(in *CardInput) { in.ClosingDay = 0 }},
		{"due day high", func(in *CardInput) { in.DueDay = 32 }},
	}

	for _, tc := range cases {
		input := validInput()
		tc.mutate(&input)
		if _, err := svc.Create(context.Background(), "user-1", input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestGetCardOwnershipIsOpaque(t *testing.T) {
	repo := newFakeCardRepo()
	repo.cards["card-1"] = &CreditCard{ID: "card-1", UserID: "user-1", Name: "Platinum"}

	svc := newTestCardService(repo, "user-1", "user-2")

	// Someone else's card reads exactly like a missing one.
	_, err := svc.GetByID(context.Background(), "card-1", "user-2")
	if !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound for foreign card, got %v", err)
	}
	_, err = svc.GetByID(context.Background(), "missing", "user-2")
	if !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound for missing card, got %v", err)
	}
}

func TestUpdateCardForeignCard(t *testing.T) {
	repo := newFakeCardRepo()
	repo.cards["card-1"] = &CreditCard{ID: "card-1", UserID: "user-1", Name: "Platinum"}

	svc := newTestCardService(repo, "user-1", "user-2")
	_, err := svc.Update(context.Background(), "card-1", "user-2", validInput())
	if !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}

func TestDeleteCardWithOpenInvoices(t *testing.T) {
	repo := newFakeCardRepo()
	repo.cards["card-1"] = &CreditCard{ID: "card-1", UserID: "user-1", Name: "Platinum"}
	repo.openInvoices["card-1"] = 1

	svc := newTestCardService(repo, "user-1")
	err := svc.Delete(context.Background(), "card-1", "user-1")
	if !errors.Is(err, ErrCardInUse) {
		t.Fatalf("expected ErrCardInUse, got %v", err)
	}
	if _, ok := repo.cards["card-1"]; !ok {
		t.Fatalf("expected card to remain")
	}
}

func TestDeleteCardSuccess(t *testing.T) {
	repo := newFakeCardRepo()
	repo.cards["card-1"] = &CreditCard{ID: "card-1", UserID: "user-1", Name: "Platinum"}

	svc := newTestCardService(repo, "user-1")
	if err := svc.Delete(context.Background(), "card-1", "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.cards["card-1"]; ok {
		t.Fatalf("expected card deleted")
	}
}

func TestVerifyOwned(t *testing.T) {
	repo := newFakeCardRepo()
	repo.cards["card-1"] = &CreditCard{ID: "card-1", UserID: "user-1", Name: "Platinum"}

	svc := newTestCardService(repo, "user-1")
	if err := svc.VerifyOwned(context.Background(), "card-1", "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.VerifyOwned(context.Background(), "card-1", "user-2"); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}
