package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	creditcarddomain "homecash/internal/domain/creditcard"
	"homecash/internal/transport/httpserver/middleware"
)

type cardRequest struct {
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	LastDigits string `json:"last_digits"`
	LimitCents int64  `json:"limit_cents"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}

func (req cardRequest) toInput() creditcarddomain.CardInput {
	return creditcarddomain.CardInput{
		Name:       strings.TrimSpace(req.Name),
		Brand:      strings.TrimSpace(req.Brand),
		LastDigits: strings.TrimSpace(req.LastDigits),
		LimitCents: req.LimitCents,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	}
}

func (h *Handlers) CreateCreditCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	result, err := h.CreditCards.Create(r.Context(), userID, req.toInput())
	if err != nil {
		h.writeCardError(w, "creditcards.create", err, userID, "")
		return
	}

	writeJSON(w, http.StatusCreated, toCardResponse(result))
}

func (h *Handlers) ListCreditCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	cards, err := h.CreditCards.ListByUser(r.Context(), userID)
	if err != nil {
		h.log.InternalError("creditcards.list: list cards failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]cardResponse, 0, len(cards))
	for i := range cards {
		response = append(response, toCardResponse(&cards[i]))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetCreditCard(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.CreditCards.GetByID(r.Context(), cardID, userID)
	if err != nil {
		h.writeCardError(w, "creditcards.get", err, userID, cardID)
		return
	}

	writeJSON(w, http.StatusOK, toCardResponse(result))
}

func (h *Handlers) UpdateCreditCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
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

	result, err := h.CreditCards.Update(r.Context(), cardID, userID, req.toInput())
	if err != nil {
		h.writeCardError(w, "creditcards.update", err, userID, cardID)
		return
	}

	writeJSON(w, http.StatusOK, toCardResponse(result))
}

func (h *Handlers) DeleteCreditCard(w http.ResponseWriter, r *http.Request) {
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

	if err := h.CreditCards.Delete(r.Context(), cardID, userID); err != nil {
		if errors.Is(err, creditcarddomain.ErrCardInUse) {
			h.log.BusinessError("creditcards.delete: card has open invoices", err, "user_id", userID, "card_id", cardID)
			writeError(w, http.StatusConflict, "card_in_use", "credit card has open invoices")
			return
		}
		h.writeCardError(w, "creditcards.delete", err, userID, cardID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeCardError(w http.ResponseWriter, op string, err error, userID, cardID string) {
	switch {
	case errors.Is(err, creditcarddomain.ErrCardNotFound):
		h.log.BusinessError(op+": card not found", err, "user_id", userID, "card_id", cardID)
		writeError(w, http.StatusNotFound, "card_not_found", "credit card not found")
	case errors.Is(err, creditcarddomain.ErrNotHouseOwner):
		h.log.BusinessError(op+": not a house owner", err, "user_id", userID)
		writeError(w, http.StatusForbidden, "not_house_owner", "only house owners can manage credit cards")
	case errors.Is(err, creditcarddomain.ErrInactiveUser):
		h.log.BusinessError(op+": inactive user", err, "user_id", userID)
		writeError(w, http.StatusForbidden, "inactive_user", "user account is inactive")
	case errors.Is(err, creditcarddomain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.log.InternalError(op+": failed", err, "user_id", userID, "card_id", cardID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type cardResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Brand      string    `json:"brand"`
	LastDigits string    `json:"last_digits"`
	LimitCents int64     `json:"limit_cents"`
	ClosingDay int       `json:"closing_day"`
	DueDay     int       `json:"due_day"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCardResponse(card *creditcarddomain.CreditCard) cardResponse {
	return cardResponse{
		ID:         card.ID,
		Name:       card.Name,
		Brand:      card.Brand,
		LastDigits: card.LastDigits,
		LimitCents: card.LimitCents,
		ClosingDay: card.ClosingDay,
		DueDay:     card.DueDay,
		CreatedAt:  card.CreatedAt,
	}
}
