package rules

import "github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"

const (
	FreeSwipeLimit = 10
)

func UnlimitedSwipes(isPremium bool) bool {
	return isPremium
}

// SwipeQuotaExhausted reports whether a free-tier account has used up its allowance.
// Premium accounts are never exhausted.
func SwipeQuotaExhausted(isPremium bool, used, limit int) bool {
	if UnlimitedSwipes(isPremium) {
		return false
	}
	if limit <= 0 {
		limit = FreeSwipeLimit
	}
	return used >= limit
}

func QuotaSnapshot(isPremium bool, used, limit int) model.Quota {
	if limit <= 0 {
		limit = FreeSwipeLimit
	}
	if used < 0 {
		used = 0
	}
	if UnlimitedSwipes(isPremium) {
		return model.Quota{Used: used, Limit: limit, Unlimited: true}
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return model.Quota{
		Used:      used,
		Limit:     limit,
		Remaining: remaining,
	}
}

// OrderedPair returns the pair with the lower id first. Match uniqueness is keyed on it.
func OrderedPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
