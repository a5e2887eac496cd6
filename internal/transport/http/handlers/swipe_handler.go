package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	pgrepo "github.com/Geraxi/tenant-mvp-sub001/internal/repo/postgres"
	authsvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/auth"
	swipesvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/swipes"
	"github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/dto"
	httperrors "github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/errors"
)

type SwipeService interface {
	Swipe(ctx context.Context, actorUserID int64, targetType string, targetID int64, action string) (swipesvc.SwipeResult, error)
}

type SwipeHandler struct {
	service SwipeService
}

func NewSwipeHandler(service SwipeService) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 || strings.TrimSpace(req.TargetType) == "" || strings.TrimSpace(req.Action) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "target_type, target_id and action are required")
		return
	}

	result, err := h.service.Swipe(r.Context(), identity.UserID, req.TargetType, req.TargetID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "target_type must be property or roommate")
		case errors.Is(err, swipesvc.ErrUnsupportedAction):
			writeBadRequest(w, "VALIDATION_ERROR", "action must be like or skip")
		case errors.Is(err, swipesvc.ErrTargetNotFound):
			writeNotFound(w, "NOT_FOUND", "swipe target not found")
		case errors.Is(err, swipesvc.ErrActorNotFound):
			writeNotFound(w, "NOT_FOUND", "user not found")
		case errors.Is(err, pgrepo.ErrStoreUnavailable):
			writeUnavailable(w, "STORE_UNAVAILABLE", "storage is unavailable")
		default:
			if qe, ok := swipesvc.IsQuotaExceeded(err); ok {
				httperrors.Write(w, http.StatusPaymentRequired, httperrors.QuotaError{
					Code:       "QUOTA_EXCEEDED",
					Message:    "free swipe limit reached, upgrade to keep swiping",
					SwipeCount: qe.Used,
					Limit:      qe.Limit,
				})
				return
			}
			if tf, ok := swipesvc.IsTooFast(err); ok {
				httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
					Code:          "TOO_FAST",
					Message:       "too many swipes, slow down",
					RetryAfterSec: tf.RetryAfter(),
				})
				return
			}
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	resp := dto.SwipeResponse{
		OK: true,
		Swipe: dto.SwipeItemResponse{
			ID:         result.Swipe.ID,
			TargetType: string(result.Swipe.TargetType),
			TargetID:   result.Swipe.TargetID,
			Action:     string(result.Swipe.Action),
			CreatedAt:  result.Swipe.CreatedAt,
		},
		Matched:      result.Matched,
		MatchCreated: result.MatchCreated,
		Quota:        mapQuota(result.Quota),
	}
	if result.Match != nil {
		id := result.Match.ID
		resp.MatchID = &id
	}

	httperrors.Write(w, http.StatusOK, resp)
}
