package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Key is the store key of a cart item; one row per (user, product).
func (c CartItem) Key() string {
	return CartKey(c.UserID, c.ProductID)
}

func CartKey(userID, productID string) string {
	return userID + ":" + productID
}

type CartLine struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartSummary struct {
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}
