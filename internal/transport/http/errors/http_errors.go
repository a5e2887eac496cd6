package errors

import (
	"encoding/json"
	"net/http"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

// QuotaError tells the client the free allowance is spent, so it can offer an upgrade.
type QuotaError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	SwipeCount int    `json:"swipe_count"`
	Limit      int    `json:"limit"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
