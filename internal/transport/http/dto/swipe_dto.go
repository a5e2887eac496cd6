package dto

import "time"

type SwipeRequest struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
	Action     string `json:"action"`
}

type SwipeItemResponse struct {
	ID         int64     `json:"id"`
	TargetType string    `json:"target_type"`
	TargetID   int64     `json:"target_id"`
	Action     string    `json:"action"`
	CreatedAt  time.Time `json:"created_at"`
}

type SwipeResponse struct {
	OK           bool              `json:"ok"`
	Swipe        SwipeItemResponse `json:"swipe"`
	Matched      bool              `json:"matched"`
	MatchCreated bool              `json:"match_created"`
	MatchID      *int64            `json:"match_id,omitempty"`
	Quota        QuotaResponse     `json:"quota"`
}
