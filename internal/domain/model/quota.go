package model

// Quota is the swipe allowance view. RetryAfterSec is set only for premium
// accounts currently held back by the burst limiter.
type Quota struct {
	Used          int   `json:"used"`
	Limit         int   `json:"limit"`
	Remaining     int   `json:"remaining"`
	Unlimited     bool  `json:"unlimited"`
	RetryAfterSec int64 `json:"retry_after_sec,omitempty"`
}
