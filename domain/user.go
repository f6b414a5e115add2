package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
)

// ParseRole accepts the canonical role names plus the legacy seller/buyer aliases.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "vendor", "seller":
		return RoleVendor, true
	case "customer", "buyer":
		return RoleCustomer, true
	}

	return "", false
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleCustomer:
		return true
	}

	return false
}

// Actor is the already-authenticated caller of a core operation.
type Actor struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Wishlist     []string  `json:"wishlist"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) InWishlist(productID string) bool {
	for _, id := range u.Wishlist {
		if id == productID {
			return true
		}
	}

	return false
}

func (u User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}
