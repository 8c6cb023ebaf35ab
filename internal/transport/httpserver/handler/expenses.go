package handler

import (
	"errors"
	"net/http"
	"time"

	creditcarddomain "homecash/internal/domain/creditcard"
	expensedomain "homecash/internal/domain/expense"
	housedomain "homecash/internal/domain/house"
	"homecash/internal/transport/httpserver/middleware"
)

type expenseRequest struct {
	Title         string  `json:"title"`
	Category      string  `json:"category"`
	AmountCents   int64   `json:"amount_cents"`
	Type          string  `json:"type"`
	DueDate       string  `json:"due_date,omitempty"`
	PaymentMethod string  `json:"payment_method"`
	CreditCardID  *string `json:"credit_card_id,omitempty"`
}

type splitRequest struct {
	Shares []shareRequest `json:"shares,omitempty"`
	// UserIDs selects an even split; mutually exclusive with shares.
	UserIDs []string `json:"user_ids,omitempty"`
}

type shareRequest struct {
	UserID      string `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
}

func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	houseID, err := pathParam(r, "house_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	dueDate, err := parseDateParam(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "due_date must be YYYY-MM-DD")
		return
	}

	result, err := h.Expenses.Create(r.Context(), userID, expensedomain.CreateExpenseInput{
		HouseID:       houseID,
		Title:         req.Title,
		Category:      req.Category,
		AmountCents:   req.AmountCents,
		Type:          req.Type,
		DueDate:       dueDate,
		PaymentMethod: req.PaymentMethod,
		CreditCardID:  req.CreditCardID,
	})
	if err != nil {
		h.writeExpenseError(w, "expenses.create", err, userID, "")
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(result))
}

func (h *Handlers) ListHouseExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	houseID, err := pathParam(r, "house_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	expenses, err := h.Expenses.GetByHouse(r.Context(), houseID, userID)
	if err != nil {
		h.writeExpenseError(w, "expenses.list", err, userID, "")
		return
	}

	response := make([]expenseResponse, 0, len(expenses))
	for i := range expenses {
		response = append(response, toExpenseResponse(&expenses[i]))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	expenseID, err := pathParam(r, "expense_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.Expenses.GetByID(r.Context(), expenseID, userID)
	if err != nil {
		h.writeExpenseError(w, "expenses.get", err, userID, expenseID)
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponse(result))
}

func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	expenseID, err := pathParam(r, "expense_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	dueDate, err := parseDateParam(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "due_date must be YYYY-MM-DD")
		return
	}

	result, err := h.Expenses.Update(r.Context(), userID, expensedomain.UpdateExpenseInput{
		ID:            expenseID,
		Title:         req.Title,
		Category:      req.Category,
		AmountCents:   req.AmountCents,
		Type:          req.Type,
		DueDate:       dueDate,
		PaymentMethod: req.PaymentMethod,
		CreditCardID:  req.CreditCardID,
	})
	if err != nil {
		h.writeExpenseError(w, "expenses.update", err, userID, expenseID)
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponse(result))
}

func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	expenseID, err := pathParam(r, "expense_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Expenses.Delete(r.Context(), expenseID, userID); err != nil {
		h.writeExpenseError(w, "expenses.delete", err, userID, expenseID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SplitExpense(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if len(req.Shares) > 0 && len(req.UserIDs) > 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "provide either shares or user_ids, not both")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	expenseID, err := pathParam(r, "expense_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var participants []expensedomain.Participant
	if len(req.UserIDs) > 0 {
		participants, err = h.Expenses.SplitEvenly(r.Context(), expenseID, userID, req.UserIDs)
	} else {
		shares := make([]expensedomain.Share, 0, len(req.Shares))
		for _, share := range req.Shares {
			shares = append(shares, expensedomain.Share{UserID: share.UserID, AmountCents: share.AmountCents})
		}
		participants, err = h.Expenses.SplitAmong(r.Context(), expenseID, userID, shares)
	}
	if err != nil {
		h.writeExpenseError(w, "expenses.split", err, userID, expenseID)
		return
	}

	writeJSON(w, http.StatusOK, toParticipantResponses(participants))
}

func (h *Handlers) ListExpenseParticipants(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	expenseID, err := pathParam(r, "expense_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	participants, err := h.Expenses.ListParticipants(r.Context(), expenseID, userID)
	if err != nil {
		h.writeExpenseError(w, "expenses.list_participants", err, userID, expenseID)
		return
	}

	writeJSON(w, http.StatusOK, toParticipantResponses(participants))
}

func (h *Handlers) PayExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	expenseID, err := pathParam(r, "expense_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.Expenses.MarkPaid(r.Context(), expenseID, userID)
	if err != nil {
		h.writeExpenseError(w, "expenses.pay", err, userID, expenseID)
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponse(result))
}

func (h *Handlers) writeExpenseError(w http.ResponseWriter, op string, err error, userID, expenseID string) {
	switch {
	case errors.Is(err, expensedomain.ErrExpenseNotFound):
		h.log.BusinessError(op+": expense not found", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusNotFound, "expense_not_found", "expense not found")
	case errors.Is(err, expensedomain.ErrExpensePaid):
		h.log.BusinessError(op+": expense already paid", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusConflict, "expense_paid", "expense is already paid")
	case errors.Is(err, expensedomain.ErrNoParticipants):
		h.log.BusinessError(op+": no participants", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusConflict, "no_participants", "expense has no participants")
	case errors.Is(err, expensedomain.ErrShareSumMismatch):
		h.log.BusinessError(op+": share sum mismatch", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusConflict, "share_sum_mismatch", "participant shares must sum to the expense total")
	case errors.Is(err, expensedomain.ErrDuplicateParticipant):
		writeError(w, http.StatusBadRequest, "duplicate_participant", "duplicate participant")
	case errors.Is(err, expensedomain.ErrParticipantNotMember):
		h.log.BusinessError(op+": participant not a member", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusUnprocessableEntity, "participant_not_member", "participant is not a member of this house")
	case errors.Is(err, expensedomain.ErrCardRequired):
		writeError(w, http.StatusBadRequest, "card_required", "credit card is required when payment method is credit")
	case errors.Is(err, creditcarddomain.ErrCardNotFound):
		h.log.BusinessError(op+": card not found", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusUnprocessableEntity, "card_not_found", "credit card not found")
	case errors.Is(err, expensedomain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, housedomain.ErrHouseNotFound):
		h.log.BusinessError(op+": house not found", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusNotFound, "house_not_found", "house not found")
	case errors.Is(err, housedomain.ErrNotMember):
		h.log.BusinessError(op+": not a member", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusForbidden, "not_member", "not a member of this house")
	default:
		h.log.InternalError(op+": failed", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type expenseResponse struct {
	ID            string     `json:"id"`
	HouseID       string     `json:"house_id"`
	Title         string     `json:"title"`
	Category      string     `json:"category"`
	AmountCents   int64      `json:"amount_cents"`
	Type          string     `json:"type"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	PaymentMethod string     `json:"payment_method"`
	Status        string     `json:"status"`
	CreatedBy     string     `json:"created_by"`
	CreditCardID  *string    `json:"credit_card_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type participantResponse struct {
	UserID      string `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

func toExpenseResponse(e *expensedomain.Expense) expenseResponse {
	return expenseResponse{
		ID:            e.ID,
		HouseID:       e.HouseID,
		Title:         e.Title,
		Category:      e.Category,
		AmountCents:   e.AmountCents,
		Type:          e.Type,
		DueDate:       e.DueDate,
		PaymentMethod: e.PaymentMethod,
		Status:        e.Status,
		CreatedBy:     e.CreatedBy,
		CreditCardID:  e.CreditCardID,
		CreatedAt:     e.CreatedAt,
	}
}

func toParticipantResponses(participants []expensedomain.Participant) []participantResponse {
	response := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		response = append(response, participantResponse{
			UserID:      p.UserID,
			AmountCents: p.AmountCents,
			Status:      p.Status,
		})
	}
	return response
}
