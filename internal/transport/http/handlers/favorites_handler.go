package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
	authsvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/auth"
	favoritessvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/favorites"
	"github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/dto"
	httperrors "github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/errors"
)

type FavoritesService interface {
	Add(ctx context.Context, userID int64, targetType string, targetID int64) (bool, error)
	Remove(ctx context.Context, userID int64, targetType string, targetID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]model.Favorite, error)
}

type FavoritesHandler struct {
	service FavoritesService
}

func NewFavoritesHandler(service FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{service: service}
}

func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		writeFavoriteError(w, err)
		return
	}

	resp := dto.FavoritesResponse{Items: make([]dto.FavoriteItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.FavoriteItemResponse{
			TargetType: string(item.TargetType),
			TargetID:   item.TargetID,
			CreatedAt:  item.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req dto.FavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	created, err := h.service.Add(r.Context(), identity.UserID, req.TargetType, req.TargetID)
	if err != nil {
		writeFavoriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httperrors.Write(w, status, struct {
		OK      bool `json:"ok"`
		Created bool `json:"created"`
	}{OK: true, Created: created})
}

func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "target_id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid target_id")
		return
	}

	removed, err := h.service.Remove(r.Context(), identity.UserID, chi.URLParam(r, "target_type"), targetID)
	if err != nil {
		writeFavoriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK      bool `json:"ok"`
		Removed bool `json:"removed"`
	}{OK: true, Removed: removed})
}

func (h *FavoritesHandler) identity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	if h.service == nil {
		writeInternal(w, "FAVORITES_SERVICE_UNAVAILABLE", "favorites service is unavailable")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func writeFavoriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, favoritessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid favorite target")
	case errors.Is(err, favoritessvc.ErrTargetNotFound):
		writeNotFound(w, "NOT_FOUND", "favorite target not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process favorites")
	}
}
