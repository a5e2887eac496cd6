package dto

import "time"

type MatchItemResponse struct {
	ID          int64     `json:"id"`
	OtherUserID int64     `json:"other_user_id"`
	RelatedType string    `json:"related_type,omitempty"`
	RelatedID   *int64    `json:"related_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}
