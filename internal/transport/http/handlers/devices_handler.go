package handlers

import (
	"context"
	"errors"
	"net/http"

	authsvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/auth"
	notifysvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/notify"
	"github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/dto"
	httperrors "github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/errors"
)

type DeviceRegistrar interface {
	RegisterDevice(ctx context.Context, userID int64, token, platform string) error
}

type DevicesHandler struct {
	service DeviceRegistrar
}

func NewDevicesHandler(service DeviceRegistrar) *DevicesHandler {
	return &DevicesHandler{service: service}
}

func (h *DevicesHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DEVICES_SERVICE_UNAVAILABLE", "devices service is unavailable")
		return
	}

	var req dto.DeviceRegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.service.RegisterDevice(r.Context(), identity.UserID, req.Token, req.Platform); err != nil {
		switch {
		case errors.Is(err, notifysvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "token is required")
		case errors.Is(err, notifysvc.ErrInvalidPlatform):
			writeBadRequest(w, "VALIDATION_ERROR", "platform must be ios, android or web")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to register device")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}
