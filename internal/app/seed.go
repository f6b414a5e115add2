package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"marketplace/business/catalog"
	"marketplace/business/user"
	"marketplace/pkg/logger"
)

type seedProduct struct {
	name, description, category, price string
	stock                              int
	promo                              string
}

var seedProducts = []seedProduct{
	{"Organic Tomato Seeds", "Heirloom variety, 50 seeds", "seeds", "4.99", 120, ""},
	{"Compost Bin 80L", "Recycled plastic, ventilated", "garden", "39.90", 15, "29.90"},
	{"Bamboo Toothbrush Set", "Pack of four, biodegradable handles", "home", "8.50", 60, ""},
	{"Beeswax Food Wraps", "Three sizes, reusable", "kitchen", "14.00", 40, "11.20"},
	{"Solar Garden Lights", "Set of six, warm white", "garden", "24.75", 25, ""},
}

// Seed creates one account per role and a small catalog owned by the vendor.
func Seed(ctx context.Context, a *App) error {
	if _, err := a.Users.CreateAdmin(ctx, user.RegisterInput{
		Username: "admin", Email: "admin@marketplace.local", Password: "admin123",
	}); err != nil {
		return err
	}

	vendor, err := a.Users.Register(ctx, user.RegisterInput{
		Username: "greenvendor", Email: "vendor@marketplace.local", Password: "vendor123", Role: "vendor",
	})
	if err != nil {
		return err
	}

	if _, err := a.Users.Register(ctx, user.RegisterInput{
		Username: "customer", Email: "customer@marketplace.local", Password: "customer123", Role: "customer",
	}); err != nil {
		return err
	}

	for _, sp := range seedProducts {
		in := catalog.ProductInput{
			Name:        sp.name,
			Description: sp.description,
			Category:    sp.category,
			Price:       decimal.RequireFromString(sp.price),
			Stock:       sp.stock,
		}
		if sp.promo != "" {
			promo := decimal.RequireFromString(sp.promo)
			end := a.Clock().Add(14 * 24 * time.Hour)
			in.IsPromotional = true
			in.PromotionalPrice = &promo
			in.PromotionalEndDate = &end
		}
		if _, err := a.Catalog.CreateProduct(ctx, vendor.Actor(), in); err != nil {
			return err
		}
	}

	logger.Info("demo data seeded", "products", len(seedProducts))

	return nil
}
