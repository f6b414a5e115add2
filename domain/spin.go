package domain

import "time"

// SpinOutcomes are the wheel segments; 0 means no win.
var SpinOutcomes = []int{0, 5, 10, 15, 20, 25, 30}

func IsSpinOutcome(pct int) bool {
	for _, p := range SpinOutcomes {
		if p == pct {
			return true
		}
	}

	return false
}

type SpinAttempt struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SpinNumber   int       `json:"spin_number"`
	Result       int       `json:"result"`
	DiscountCode string    `json:"discount_code"`
	CreatedAt    time.Time `json:"created_at"`
}

type SpinStatus struct {
	CanSpin        bool `json:"can_spin"`
	CurrentSpins   int  `json:"current_spins"`
	NextSpinNumber int  `json:"next_spin_number"`
	MaxSpins       int  `json:"max_spins"`
}
