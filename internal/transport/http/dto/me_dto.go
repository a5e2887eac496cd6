package dto

import "time"

type MeResponse struct {
	User  MeUserResponse `json:"user"`
	Quota QuotaResponse  `json:"quota"`
}

type MeUserResponse struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	Role       string    `json:"role"`
	IsPremium  bool      `json:"is_premium"`
	SwipeCount int       `json:"swipe_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type MeUpdateRequest struct {
	Role *string `json:"role,omitempty"`
}

type QuotaResponse struct {
	Used          int   `json:"used"`
	Limit         int   `json:"limit"`
	Remaining     int   `json:"remaining"`
	Unlimited     bool  `json:"unlimited"`
	RetryAfterSec int64 `json:"retry_after_sec,omitempty"`
}
