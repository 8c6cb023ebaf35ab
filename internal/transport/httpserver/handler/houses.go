package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	housedomain "homecash/internal/domain/house"
	"homecash/internal/transport/httpserver/middleware"
)

type createHouseRequest struct {
	Name string `json:"name"`
}

type joinHouseRequest struct {
	Code string `json:"code"`
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handlers) CreateHouse(w http.ResponseWriter, r *http.Request) {
	var req createHouseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	result, err := h.Houses.CreateHouse(r.Context(), userID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, housedomain.ErrInactiveUser):
			h.log.BusinessError("houses.create: inactive user", err, "user_id", userID)
			writeError(w, http.StatusForbidden, "inactive_user", "user account is inactive")
		case errors.Is(err, housedomain.ErrCodeGenerationFailed):
			h.log.InternalError("houses.create: invite code generation failed", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "code_generation_failed", "could not generate invite code")
		default:
			h.log.InternalError("houses.create: create house failed", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toHouseResponse(result))
}

func (h *Handlers) ListHouses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	houses, err := h.Houses.ListByUser(r.Context(), userID)
	if err != nil {
		h.log.InternalError("houses.list: list houses failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]houseResponse, 0, len(houses))
	for i := range houses {
		response = append(response, toHouseResponse(&houses[i]))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetHouse(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.Houses.GetByID(r.Context(), houseID, userID)
	if err != nil {
		h.writeHouseError(w, "houses.get", err, userID, houseID)
		return
	}

	writeJSON(w, http.StatusOK, toHouseResponse(result))
}

func (h *Handlers) JoinHouse(w http.ResponseWriter, r *http.Request) {
	var req joinHouseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	result, err := h.Houses.JoinHouse(r.Context(), userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, housedomain.ErrInviteCodeNotFound):
			h.log.BusinessError("houses.join: invite code not found", err, "user_id", userID, "code", req.Code)
			writeError(w, http.StatusNotFound, "invite_code_not_found", "invite code not found")
		case errors.Is(err, housedomain.ErrAlreadyMember):
			h.log.BusinessError("houses.join: already a member", err, "user_id", userID)
			writeError(w, http.StatusConflict, "already_member", "already a member of this house")
		case errors.Is(err, housedomain.ErrInactiveUser):
			h.log.BusinessError("houses.join: inactive user", err, "user_id", userID)
			writeError(w, http.StatusForbidden, "inactive_user", "user account is inactive")
		default:
			h.log.InternalError("houses.join: join house failed", err, "user_id", userID, "code", req.Code)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toHouseResponse(result))
}

func (h *Handlers) ListHouseMembers(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.Houses.ListMembers(r.Context(), houseID, userID)
	if err != nil {
		h.writeHouseError(w, "houses.list_members", err, userID, houseID)
		return
	}

	response := make([]houseMemberResponse, 0, len(members))
	for _, member := range members {
		response = append(response, houseMemberResponse{
			UserID:   member.UserID,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) AddHouseMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}

	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	houseID, err := pathParam(r, "house_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Houses.AddMember(r.Context(), houseID, req.UserID, requesterID); err != nil {
		switch {
		case errors.Is(err, housedomain.ErrAlreadyMember):
			h.log.BusinessError("houses.add_member: already a member", err, "actor_id", requesterID, "member_id", req.UserID)
			writeError(w, http.StatusConflict, "already_member", "already a member of this house")
		case errors.Is(err, housedomain.ErrInactiveUser):
			h.log.BusinessError("houses.add_member: inactive user", err, "actor_id", requesterID, "member_id", req.UserID)
			writeError(w, http.StatusForbidden, "inactive_user", "user account is inactive")
		default:
			h.writeHouseError(w, "houses.add_member", err, requesterID, houseID)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) RemoveHouseMember(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	houseID, err := pathParam(r, "house_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	memberID, err := pathParam(r, "user_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Houses.RemoveMember(r.Context(), houseID, memberID, requesterID); err != nil {
		switch {
		case errors.Is(err, housedomain.ErrMemberNotFound):
			h.log.BusinessError("houses.remove_member: member not found", err, "actor_id", requesterID, "member_id", memberID)
			writeError(w, http.StatusNotFound, "member_not_found", "member not found")
		case errors.Is(err, housedomain.ErrLastMember):
			h.log.BusinessError("houses.remove_member: last member", err, "actor_id", requesterID, "member_id", memberID)
			writeError(w, http.StatusConflict, "last_member", "house must keep at least one member")
		case errors.Is(err, housedomain.ErrLastOwner):
			h.log.BusinessError("houses.remove_member: last owner", err, "actor_id", requesterID, "member_id", memberID)
			writeError(w, http.StatusConflict, "last_owner", "house must keep at least one owner")
		default:
			h.writeHouseError(w, "houses.remove_member", err, requesterID, houseID)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) RegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	houseID, err := pathParam(r, "house_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.Houses.RegenerateInviteCode(r.Context(), houseID, requesterID)
	if err != nil {
		if errors.Is(err, housedomain.ErrCodeGenerationFailed) {
			h.log.InternalError("houses.regenerate_code: generation failed", err, "actor_id", requesterID, "house_id", houseID)
			writeError(w, http.StatusInternalServerError, "code_generation_failed", "could not generate invite code")
			return
		}
		h.writeHouseError(w, "houses.regenerate_code", err, requesterID, houseID)
		return
	}

	writeJSON(w, http.StatusOK, toHouseResponse(result))
}

func (h *Handlers) DeleteHouse(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	houseID, err := pathParam(r, "house_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Houses.DeleteHouse(r.Context(), houseID, requesterID); err != nil {
		h.writeHouseError(w, "houses.delete", err, requesterID, houseID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeHouseError maps the membership and permission errors shared by most
// house operations.
func (h *Handlers) writeHouseError(w http.ResponseWriter, op string, err error, userID, houseID string) {
	switch {
	case errors.Is(err, housedomain.ErrHouseNotFound):
		h.log.BusinessError(op+": house not found", err, "user_id", userID, "house_id", houseID)
		writeError(w, http.StatusNotFound, "house_not_found", "house not found")
	case errors.Is(err, housedomain.ErrNotMember):
		h.log.BusinessError(op+": not a member", err, "user_id", userID, "house_id", houseID)
		writeError(w, http.StatusForbidden, "not_member", "not a member of this house")
	case errors.Is(err, housedomain.ErrNotOwner):
		h.log.BusinessError(op+": not an owner", err, "user_id", userID, "house_id", houseID)
		writeError(w, http.StatusForbidden, "not_owner", "owner permission required")
	default:
		h.log.InternalError(op+": failed", err, "user_id", userID, "house_id", houseID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
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

func toHouseResponse(houseModel *housedomain.House) houseResponse {
	return houseResponse{
		ID:         houseModel.ID,
		Name:       houseModel.Name,
		InviteCode: houseModel.InviteCode,
		CreatedAt:  houseModel.CreatedAt,
	}
}
