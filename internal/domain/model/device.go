package model

import (
	"time"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
)

type Device struct {
	UserID     int64                `json:"user_id"`
	Token      string               `json:"token"`
	Platform   enums.DevicePlatform `json:"platform"`
	LastSeenAt time.Time            `json:"last_seen_at"`
}
