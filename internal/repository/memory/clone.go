package memory

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"marketplace/domain"
)

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func cloneUser(u domain.User) domain.User {
	u.Wishlist = slices.Clone(u.Wishlist)
	return u
}

func cloneProduct(p domain.Product) domain.Product {
	p.PromotionalPrice = cloneDecimal(p.PromotionalPrice)
	p.PromotionalEndDate = cloneTime(p.PromotionalEndDate)
	return p
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func cloneDiscount(d domain.DiscountCode) domain.DiscountCode {
	d.UsedAt = cloneTime(d.UsedAt)
	return d
}

func cloneMap[V any](m map[string]V, fn func(V) V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		if fn != nil {
			v = fn(v)
		}
		out[k] = v
	}
	return out
}

func cloneSnapshot(s domain.Snapshot) domain.Snapshot {
	return domain.Snapshot{
		Users:         cloneMap(s.Users, cloneUser),
		Products:      cloneMap(s.Products, cloneProduct),
		CartItems:     cloneMap[domain.CartItem](s.CartItems, nil),
		Orders:        cloneMap(s.Orders, cloneOrder),
		OrderComments: cloneMap[domain.OrderComment](s.OrderComments, nil),
		DiscountCodes: cloneMap(s.DiscountCodes, cloneDiscount),
		SpinAttempts:  cloneMap[domain.SpinAttempt](s.SpinAttempts, nil),
		Reviews:       cloneMap[domain.Review](s.Reviews, nil),
	}
}
