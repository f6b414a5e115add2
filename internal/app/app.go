package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/go-playground/validator/v10"

	"marketplace/business/cart"
	"marketplace/business/catalog"
	"marketplace/business/discount"
	"marketplace/business/orders"
	"marketplace/business/review"
	"marketplace/business/txn"
	"marketplace/business/user"
	"marketplace/domain"
	"marketplace/internal/repository/memory"
	"marketplace/internal/repository/notification"
	"marketplace/pkg/config"
	"marketplace/pkg/logger"
	"marketplace/pkg/utils"
)

// App is the application context. It is built once at startup and owns the
// store, the global write lock and every service.
type App struct {
	Config   *config.Config
	Store    *memory.Store
	Unit     *txn.Unit
	Clock    txn.Clock
	Tokens   *utils.TokenIssuer
	Validate *validator.Validate

	Catalog   *catalog.Service
	Cart      *cart.Service
	Discounts *discount.Service
	Spins     *discount.SpinService
	Orders    *orders.OrdersService
	Reviews   *review.Service
	Users     *user.UserService
}

type Options struct {
	// Gateway persists snapshots; nil keeps everything in memory.
	Gateway memory.Gateway
	Clock   txn.Clock
	Random  discount.Random
}

func New(cfg *config.Config, opts Options) *App {
	if opts.Clock == nil {
		opts.Clock = txn.SystemClock
	}
	if opts.Random == nil {
		opts.Random = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	rng := discount.NewLockedRandom(opts.Random)

	store := memory.NewStore(opts.Gateway)
	unit := txn.NewUnit(&sync.Mutex{}, store)
	validate := validator.New()
	tokens := utils.NewTokenIssuer(cfg.JWT.SecretKey, cfg.JWT.TTL)

	a := &App{
		Config:   cfg,
		Store:    store,
		Unit:     unit,
		Clock:    opts.Clock,
		Tokens:   tokens,
		Validate: validate,
	}

	a.Catalog = catalog.NewService(store, unit, validate, opts.Clock)
	a.Cart = cart.NewService(store, store, unit, opts.Clock)
	a.Discounts = discount.NewService(store, unit, rng, opts.Clock, cfg.Discount.CodeTTL)
	a.Spins = discount.NewSpinService(store, a.Discounts, unit, rng, opts.Clock, cfg.Spin.Window, cfg.Spin.MaxAttempts)
	a.Orders = orders.NewOrdersService(store, store, store, a.Cart, a.Discounts, unit, opts.Clock)
	a.Reviews = review.NewService(store, store, store, unit, validate, opts.Clock)
	a.Users = user.NewUserService(store, store, tokens, unit, validate, opts.Clock)

	if cfg.Mailjet.Enabled() {
		mailer := notification.NewMailjetRepository(notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		})
		a.Orders.SetNotifier(notification.NewOrderMailer(store, mailer))
	}

	return a
}

// Start restores the last snapshot. A missing snapshot or an empty store is
// seeded with demo data when seeding is enabled.
func (a *App) Start(ctx context.Context) error {
	err := a.Store.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrSnapshotMissing):
		logger.Info("no snapshot found, starting empty")
	case err != nil:
		return fmt.Errorf("failed to load snapshot: %w", err)
	default:
		logger.Info("snapshot loaded")
	}

	if a.Config.App.SeedData && a.Store.IsEmpty() {
		if err := Seed(ctx, a); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}

	return nil
}
