package model

import (
	"time"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
)

// Match is a mutual like between two users. The pair is unordered: User1ID/User2ID
// keep the order in which the match was created, lookups must test both.
type Match struct {
	ID          int64            `json:"id"`
	User1ID     int64            `json:"user1_id"`
	User2ID     int64            `json:"user2_id"`
	RelatedType enums.TargetType `json:"related_type,omitempty"`
	RelatedID   *int64           `json:"related_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (m Match) HasUser(userID int64) bool {
	return m.User1ID == userID || m.User2ID == userID
}

func (m Match) OtherUserID(userID int64) (int64, bool) {
	switch userID {
	case m.User1ID:
		return m.User2ID, true
	case m.User2ID:
		return m.User1ID, true
	default:
		return 0, false
	}
}
