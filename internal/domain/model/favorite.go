package model

import (
	"time"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
)

type Favorite struct {
	UserID     int64            `json:"user_id"`
	TargetType enums.TargetType `json:"target_type"`
	TargetID   int64            `json:"target_id"`
	CreatedAt  time.Time        `json:"created_at"`
}
