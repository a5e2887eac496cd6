package handlers

import (
	"context"
	"errors"
	"net/http"

	authsvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/auth"
	matchessvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/matches"
	"github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/dto"
	httperrors "github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/errors"
)

type MatchesService interface {
	List(ctx context.Context, userID int64, limit int) ([]matchessvc.MatchItem, error)
}

type MatchesHandler struct {
	service MatchesService
}

func NewMatchesHandler(service MatchesService) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	items, err := h.service.List(r.Context(), identity.UserID, parseIntOrDefault(r.URL.Query().Get("limit"), 0))
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		}
		return
	}

	responseItems := make([]dto.MatchItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.MatchItemResponse{
			ID:          item.ID,
			OtherUserID: item.OtherUserID,
			RelatedType: string(item.RelatedType),
			RelatedID:   item.RelatedID,
			CreatedAt:   item.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: responseItems})
}
