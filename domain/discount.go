package domain

import "time"

// AllowedDiscountPercentages is the closed set a discount code may carry.
var AllowedDiscountPercentages = []int{5, 10, 15, 20, 25, 30, 50}

func IsAllowedDiscount(pct int) bool {
	for _, p := range AllowedDiscountPercentages {
		if p == pct {
			return true
		}
	}

	return false
}

type DiscountCode struct {
	Code       string     `json:"code"`
	Percentage int        `json:"percentage"`
	UserID     string     `json:"user_id"`
	Used       bool       `json:"used"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

func (d DiscountCode) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}
