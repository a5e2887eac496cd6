package handlers

import (
	"context"
	"errors"
	"net/http"

	authsvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/auth"
	userssvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/users"
	"github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/dto"
	httperrors "github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/errors"
)

type MeService interface {
	Me(ctx context.Context, userID int64) (userssvc.Profile, error)
	Update(ctx context.Context, userID int64, in userssvc.UpdateInput) (userssvc.Profile, error)
}

type MeHandler struct {
	service MeService
}

func NewMeHandler(service MeService) *MeHandler {
	return &MeHandler{service: service}
}

func (h *MeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	profile, err := h.service.Me(r.Context(), identity.UserID)
	if err != nil {
		writeUserError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapProfile(profile))
}

func (h *MeHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	var req dto.MeUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	profile, err := h.service.Update(r.Context(), identity.UserID, userssvc.UpdateInput{Role: req.Role})
	if err != nil {
		writeUserError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapProfile(profile))
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user request")
	case errors.Is(err, userssvc.ErrInvalidRole):
		writeBadRequest(w, "VALIDATION_ERROR", "role must be tenant or landlord")
	case errors.Is(err, userssvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "user not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to load user")
	}
}

func mapProfile(p userssvc.Profile) dto.MeResponse {
	return dto.MeResponse{
		User: dto.MeUserResponse{
			ID:         p.User.ID,
			ExternalID: p.User.ExternalID,
			Role:       string(p.User.Role),
			IsPremium:  p.User.IsPremium,
			SwipeCount: p.User.SwipeCount,
			CreatedAt:  p.User.CreatedAt,
		},
		Quota: mapQuota(p.Quota),
	}
}
