package handlers

import (
	"context"
	"errors"
	"net/http"

	analyticsvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/analytics"
	authsvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/auth"
	"github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/dto"
	httperrors "github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/errors"
)

type EventsIngester interface {
	IngestBatch(ctx context.Context, userID int64, events []analyticsvc.BatchEvent) error
}

type EventsHandler struct {
	service EventsIngester
}

func NewEventsHandler(service EventsIngester) *EventsHandler {
	return &EventsHandler{service: service}
}

func (h *EventsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "EVENTS_SERVICE_UNAVAILABLE", "events service is unavailable")
		return
	}

	var req dto.EventsBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	input := make([]analyticsvc.BatchEvent, 0, len(req))
	for _, item := range req {
		input = append(input, analyticsvc.BatchEvent{
			Name:  item.Name,
			TS:    item.TS,
			Props: item.Props,
		})
	}

	if err := h.service.IngestBatch(r.Context(), identity.UserID, input); err != nil {
		switch {
		case errors.Is(err, analyticsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid events batch: max 100 events, each with non-empty name")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to ingest events")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EventsBatchResponse{
		OK:       true,
		Accepted: len(input),
	})
}
