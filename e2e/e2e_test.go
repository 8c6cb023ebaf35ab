//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"homecash/internal/auth"
	"homecash/internal/config"
	"homecash/internal/db"
	creditcarddomain "homecash/internal/domain/creditcard"
	expensedomain "homecash/internal/domain/expense"
	housedomain "homecash/internal/domain/house"
	invoicedomain "homecash/internal/domain/invoice"
	userdomain "homecash/internal/domain/user"
	creditcardrepo "homecash/internal/repository/postgres/creditcard"
	expenserepo "homecash/internal/repository/postgres/expense"
	houserepo "homecash/internal/repository/postgres/house"
	invoicerepo "homecash/internal/repository/postgres/invoice"
	userrepo "homecash/internal/repository/postgres/user"
	"homecash/internal/transport/httpserver"
	"homecash/internal/transport/httpserver/handler"
	"homecash/pkg/logger"
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.NewFromEnv()

	dbConn, err := db.NewPostgres(config.DBConfig{DSN: dsn}, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}

	if err := db.Migrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	users := userdomain.NewService(userrepo.NewPostgres(dbConn))
	houses := housedomain.NewService(houserepo.NewPostgres(dbConn), users)
	creditCards := creditcarddomain.NewService(creditcardrepo.NewPostgres(dbConn), houses, users)
	expenses := expensedomain.NewService(expenserepo.NewPostgres(dbConn), houses, creditCards)
	invoices := invoicedomain.NewService(invoicerepo.NewPostgres(dbConn), creditCards)

	tokens := auth.NewTokenManager("e2e-secret", time.Hour)
	authenticator := auth.NewAuthenticator(users)

	handlers := handler.New(houses, expenses, creditCards, invoices, authenticator, tokens, log)
	server := httptest.NewServer(httpserver.NewRouter(handlers, tokens, nil))

	return &testEnv{server: server, db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE invoice_expenses, invoices, participants, expenses, credit_cards, house_members, houses, users RESTART IDENTITY CASCADE",
	).Error
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp, respBody
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

type houseResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
}

type houseMemberResponse struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type expenseResponse struct {
	ID            string `json:"id"`
	HouseID       string `json:"house_id"`
	Title         string `json:"title"`
	AmountCents   int64  `json:"amount_cents"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
}

type participantResponse struct {
	UserID      string `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

type cardResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LastDigits string `json:"last_digits"`
}

type invoiceResponse struct {
	ID         string   `json:"id"`
	Month      int      `json:"month"`
	Year       int      `json:"year"`
	TotalCents int64    `json:"total_cents"`
	Status     string   `json:"status"`
	ExpenseIDs []string `json:"expense_ids"`
}

func registerUser(t *testing.T, client *http.Client, baseURL, name, email string) authResponse {
	t.Helper()

	resp, body := requestJSON(t, client, http.MethodPost, baseURL+"/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "correct horse",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var result authResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	return result
}

func TestE2EHealthAndAuth(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	resp, body := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/houses", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.StatusCode, string(body))
	}
	var errResp errorEnvelope
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Error.Code != "invalid_token" {
		t.Fatalf("expected invalid_token, got %q", errResp.Error.Code)
	}

	ana := registerUser(t, client, env.server.URL, "Ana", "ana@example.com")
	if ana.Token == "" || ana.User.ID == "" {
		t.Fatalf("expected token and user id")
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2EHouseFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	ana := registerUser(t, client, env.server.URL, "Ana", "ana@example.com")
	bruno := registerUser(t, client, env.server.URL, "Bruno", "bruno@example.com")

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/houses", ana.Token, map[string]string{
		"name": "Casa Verde",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var house houseResponse
	if err := json.Unmarshal(body, &house); err != nil {
		t.Fatalf("decode house: %v", err)
	}
	if house.ID == "" || len(house.InviteCode) != 8 {
		t.Fatalf("expected house id and 8-char invite code, got %+v", house)
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/houses/join", bruno.Token, map[string]string{
		"code": house.InviteCode,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/houses/"+house.ID+"/members", ana.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var members []houseMemberResponse
	if err := json.Unmarshal(body, &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	// Member cannot remove another member; that is an owner call.
	resp, body = requestJSON(t, client, http.MethodDelete, env.server.URL+"/api/houses/"+house.ID+"/members/"+ana.User.ID, bruno.Token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodDelete, env.server.URL+"/api/houses/"+house.ID+"/members/"+bruno.User.ID, ana.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", resp.StatusCode, string(body))
	}

	// The sole remaining owner cannot leave.
	resp, body = requestJSON(t, client, http.MethodDelete, env.server.URL+"/api/houses/"+house.ID+"/members/"+ana.User.ID, ana.Token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2EExpenseSettlement(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	ana := registerUser(t, client, env.server.URL, "Ana", "ana@example.com")
	bruno := registerUser(t, client, env.server.URL, "Bruno", "bruno@example.com")

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/houses", ana.Token, map[string]string{
		"name": "Casa Verde",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var house houseResponse
	if err := json.Unmarshal(body, &house); err != nil {
		t.Fatalf("decode house: %v", err)
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/houses/join", bruno.Token, map[string]string{
		"code": house.InviteCode,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/houses/"+house.ID+"/expenses", ana.Token, map[string]interface{}{
		"title":          "Rent",
		"category":       "housing",
		"amount_cents":   100000,
		"type":           "fixed",
		"payment_method": "cash",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var rent expenseResponse
	if err := json.Unmarshal(body, &rent); err != nil {
		t.Fatalf("decode expense: %v", err)
	}

	// Settlement without a full split must fail.
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/expenses/"+rent.ID+"/pay", ana.Token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/expenses/"+rent.ID+"/split", ana.Token, map[string]interface{}{
		"user_ids": []string{ana.User.ID, bruno.User.ID},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var participants []participantResponse
	if err := json.Unmarshal(body, &participants); err != nil {
		t.Fatalf("decode participants: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(participants))
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/expenses/"+rent.ID+"/pay", ana.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var paid expenseResponse
	if err := json.Unmarshal(body, &paid); err != nil {
		t.Fatalf("decode paid expense: %v", err)
	}
	if paid.Status != "paid" {
		t.Fatalf("expected paid, got %q", paid.Status)
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/expenses/"+rent.ID+"/pay", ana.Token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on double pay, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2EInvoiceCascade(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	ana := registerUser(t, client, env.server.URL, "Ana", "ana@example.com")

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/houses", ana.Token, map[string]string{
		"name": "Casa Verde",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var house houseResponse
	if err := json.Unmarshal(body, &house); err != nil {
		t.Fatalf("decode house: %v", err)
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/credit-cards", ana.Token, map[string]interface{}{
		"name":        "Platinum",
		"brand":       "Visa",
		"last_digits": "4242",
		"limit_cents": 1000000,
		"closing_day": 5,
		"due_day":     15,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var card cardResponse
	if err := json.Unmarshal(body, &card); err != nil {
		t.Fatalf("decode card: %v", err)
	}

	for _, title := range []string{"TV", "Microwave"} {
		resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/houses/"+house.ID+"/expenses", ana.Token, map[string]interface{}{
			"title":          title,
			"category":       "electronics",
			"amount_cents":   50000,
			"type":           "variable",
			"payment_method": "credit",
			"credit_card_id": card.ID,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
		}
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/credit-cards/"+card.ID+"/invoices", ana.Token, map[string]int{
		"month": 8,
		"year":  2026,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var invoice invoiceResponse
	if err := json.Unmarshal(body, &invoice); err != nil {
		t.Fatalf("decode invoice: %v", err)
	}
	if invoice.TotalCents != 100000 {
		t.Fatalf("expected total 100000, got %d", invoice.TotalCents)
	}
	if len(invoice.ExpenseIDs) != 2 {
		t.Fatalf("expected 2 linked expenses, got %d", len(invoice.ExpenseIDs))
	}

	// A second invoice for the same cycle is rejected.
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/credit-cards/"+card.ID+"/invoices", ana.Token, map[string]int{
		"month": 8,
		"year":  2026,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, string(body))
	}

	// Card deletion is blocked while the invoice is open.
	resp, body = requestJSON(t, client, http.MethodDelete, env.server.URL+"/api/credit-cards/"+card.ID, ana.Token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/invoices/"+invoice.ID+"/pay", ana.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var paidInvoice invoiceResponse
	if err := json.Unmarshal(body, &paidInvoice); err != nil {
		t.Fatalf("decode paid invoice: %v", err)
	}
	if paidInvoice.Status != "paid" {
		t.Fatalf("expected paid invoice, got %q", paidInvoice.Status)
	}

	for _, expenseID := range invoice.ExpenseIDs {
		resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/expenses/"+expenseID, ana.Token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
		}
		var settled expenseResponse
		if err := json.Unmarshal(body, &settled); err != nil {
			t.Fatalf("decode settled expense: %v", err)
		}
		if settled.Status != "paid" {
			t.Fatalf("expected %s settled, got %q", expenseID, settled.Status)
		}
	}

	resp, body = requestJSON(t, client, http.MethodDelete, env.server.URL+"/api/credit-cards/"+card.ID, ana.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 after settlement, got %d: %s", resp.StatusCode, string(body))
	}
}
