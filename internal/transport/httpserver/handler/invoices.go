package handler

import (
	"errors"
	"net/http"
	"time"

	creditcarddomain "homecash/internal/domain/creditcard"
	invoicedomain "homecash/internal/domain/invoice"
	"homecash/internal/transport/httpserver/middleware"
)

type generateInvoiceRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (h *Handlers) ListCardInvoices(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	cardID, err := pathParam(r, "card_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	invoices, err := h.Invoices.GetByCreditCard(r.Context(), cardID, userID)
	if err != nil {
		h.writeInvoiceError(w, "invoices.list", err, userID, cardID)
		return
	}

	response := make([]invoiceResponse, 0, len(invoices))
	for i := range invoices {
		response = append(response, toInvoiceResponse(&invoices[i]))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	invoiceID, err := pathParam(r, "invoice_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.Invoices.GetByID(r.Context(), invoiceID, userID)
	if err != nil {
		h.writeInvoiceError(w, "invoices.get", err, userID, invoiceID)
		return
	}

	writeJSON(w, http.StatusOK, toInvoiceResponse(result))
}

func (h *Handlers) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	var req generateInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	cardID, err := pathParam(r, "card_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.Invoices.GenerateForCycle(r.Context(), cardID, userID, req.Month, req.Year)
	if err != nil {
		h.writeInvoiceError(w, "invoices.generate", err, userID, cardID)
		return
	}

	writeJSON(w, http.StatusCreated, toInvoiceResponse(result))
}

func (h *Handlers) PayInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	invoiceID, err := pathParam(r, "invoice_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.Invoices.MarkPaid(r.Context(), invoiceID, userID)
	if err != nil {
		h.writeInvoiceError(w, "invoices.pay", err, userID, invoiceID)
		return
	}

	writeJSON(w, http.StatusOK, toInvoiceResponse(result))
}

func (h *Handlers) writeInvoiceError(w http.ResponseWriter, op string, err error, userID, resourceID string) {
	switch {
	case errors.Is(err, invoicedomain.ErrInvoiceNotFound):
		h.log.BusinessError(op+": invoice not found", err, "user_id", userID, "id", resourceID)
		writeError(w, http.StatusNotFound, "invoice_not_found", "invoice not found")
	case errors.Is(err, creditcarddomain.ErrCardNotFound):
		h.log.BusinessError(op+": card not found", err, "user_id", userID, "id", resourceID)
		writeError(w, http.StatusNotFound, "card_not_found", "credit card not found")
	case errors.Is(err, invoicedomain.ErrInvoicePaid):
		h.log.BusinessError(op+": invoice already paid", err, "user_id", userID, "id", resourceID)
		writeError(w, http.StatusConflict, "invoice_paid", "invoice is already paid")
	case errors.Is(err, invoicedomain.ErrNoLinkedExpenses):
		h.log.BusinessError(op+": no linked expenses", err, "user_id", userID, "id", resourceID)
		writeError(w, http.StatusConflict, "no_linked_expenses", "invoice has no expenses to mark as paid")
	case errors.Is(err, invoicedomain.ErrDuplicateCycle):
		h.log.BusinessError(op+": duplicate cycle", err, "user_id", userID, "id", resourceID)
		writeError(w, http.StatusConflict, "duplicate_cycle", "invoice already exists for this billing cycle")
	case errors.Is(err, invoicedomain.ErrNothingToBill):
		h.log.BusinessError(op+": nothing to bill", err, "user_id", userID, "id", resourceID)
		writeError(w, http.StatusConflict, "nothing_to_bill", "no open credit expenses to bill")
	case errors.Is(err, invoicedomain.ErrInvalidCycle):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, invoicedomain.ErrNotCreditExpense), errors.Is(err, invoicedomain.ErrLinkedExpenseGone):
		h.log.InternalError(op+": inconsistent invoice state", err, "user_id", userID, "id", resourceID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	default:
		h.log.InternalError(op+": failed", err, "user_id", userID, "id", resourceID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type invoiceResponse struct {
	ID           string    `json:"id"`
	CreditCardID string    `json:"credit_card_id"`
	Month        int       `json:"month"`
	Year         int       `json:"year"`
	TotalCents   int64     `json:"total_cents"`
	Status       string    `json:"status"`
	ExpenseIDs   []string  `json:"expense_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

func toInvoiceResponse(inv *invoicedomain.InvoiceWithExpenses) invoiceResponse {
	return invoiceResponse{
		ID:           inv.ID,
		CreditCardID: inv.CreditCardID,
		Month:        inv.Month,
		Year:         inv.Year,
		TotalCents:   inv.TotalCents,
		Status:       inv.Status,
		ExpenseIDs:   inv.ExpenseIDs,
		CreatedAt:    inv.CreatedAt,
	}
}
