package model

import (
	"time"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
)

type Swipe struct {
	ID          int64             `json:"id"`
	ActorUserID int64             `json:"actor_user_id"`
	TargetType  enums.TargetType  `json:"target_type"`
	TargetID    int64             `json:"target_id"`
	Action      enums.SwipeAction `json:"action"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (s Swipe) Target() Target {
	return Target{kind: s.TargetType, id: s.TargetID}
}
