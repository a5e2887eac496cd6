package model

import (
	"time"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
)

type User struct {
	ID         int64      `json:"id"`
	ExternalID string     `json:"external_id"`
	Role       enums.Role `json:"role"`
	IsPremium  bool       `json:"is_premium"`
	SwipeCount int        `json:"swipe_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// UserPatch is a partial update; nil fields are left untouched. The premium
// flag is owned by billing and has no patch field.
type UserPatch struct {
	Role *enums.Role
}

func (p UserPatch) Empty() bool {
	return p.Role == nil
}
