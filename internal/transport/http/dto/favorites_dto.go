package dto

import "time"

type FavoriteRequest struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
}

type FavoriteItemResponse struct {
	TargetType string    `json:"target_type"`
	TargetID   int64     `json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type FavoritesResponse struct {
	Items []FavoriteItemResponse `json:"items"`
}
