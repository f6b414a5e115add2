package discount

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"marketplace/business/txn"
	"marketplace/domain"
	"marketplace/pkg/logger"
	"marketplace/pkg/metrics"
)

type DiscountRepository interface {
	CreateDiscountCode(ctx context.Context, code domain.DiscountCode) error
	FindDiscountCode(ctx context.Context, code string) (domain.DiscountCode, error)
	DiscountCodeExists(ctx context.Context, code string) (bool, error)
	FindDiscountCodesByUser(ctx context.Context, userID string) ([]domain.DiscountCode, error)
	UpdateDiscountCode(ctx context.Context, code domain.DiscountCode) error
}

// Random is the subset of *rand.Rand the engine draws from.
type Random interface {
	IntN(n int) int
}

// lockedRandom makes a Random safe for concurrent use.
type lockedRandom struct {
	mu sync.Mutex
	r  Random
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// NewLockedRandom wraps r for sharing between services. Wrapping an already
// locked source returns it unchanged.
func NewLockedRandom(r Random) Random {
	if l, ok := r.(*lockedRandom); ok {
		return l
	}
	return &lockedRandom{r: r}
}

const (
	CodeLength      = 6
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeAttempts = 32
	DefaultCodeTTL  = 7 * 24 * time.Hour
)

var hundred = decimal.NewFromInt(100)

// Apply returns the discount amount and the discounted total for pct percent
// off subtotal.
func Apply(subtotal decimal.Decimal, pct int) (amount, total decimal.Decimal) {
	amount = subtotal.Mul(decimal.NewFromInt(int64(pct))).Div(hundred)
	return amount, subtotal.Sub(amount)
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type Service struct {
	repo DiscountRepository
	unit *txn.Unit
	rng  Random
	now  txn.Clock
	ttl  time.Duration
}

func NewService(repo DiscountRepository, unit *txn.Unit, rng Random, now txn.Clock, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}

	return &Service{
		repo: repo,
		unit: unit,
		rng:  NewLockedRandom(rng),
		now:  now,
		ttl:  ttl,
	}
}

func (s *Service) generateCode() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(codeAlphabet[s.rng.IntN(len(codeAlphabet))])
	}
	return b.String()
}

// Create issues a new single-use code worth pct percent to userID.
func (s *Service) Create(ctx context.Context, pct int, userID string) (domain.DiscountCode, error) {
	var code domain.DiscountCode
	err := s.unit.Do(ctx, func() (bool, error) {
		var err error
		code, err = s.CreateTx(ctx, pct, userID)
		return err == nil, err
	})
	if err != nil {
		return domain.DiscountCode{}, err
	}

	return code, nil
}

// CreateForUser lets an admin grant a code to any user.
func (s *Service) CreateForUser(ctx context.Context, actor domain.Actor, pct int, userID string) (domain.DiscountCode, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.DiscountCode{}, domain.NewAuthorization("admin access required")
	}

	return s.Create(ctx, pct, userID)
}

// CreateTx is Create for callers already holding the unit lock.
func (s *Service) CreateTx(ctx context.Context, pct int, userID string) (domain.DiscountCode, error) {
	if !domain.IsAllowedDiscount(pct) {
		return domain.DiscountCode{}, domain.ErrInvalidDiscountValue
	}
	if userID == "" {
		return domain.DiscountCode{}, domain.NewValidation("discount code owner is required")
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate := s.generateCode()
		exists, err := s.repo.DiscountCodeExists(ctx, candidate)
		if err != nil {
			return domain.DiscountCode{}, err
		}
		if exists {
			logger.Debug("discount code collision, retrying", "attempt", attempt+1)
			continue
		}

		now := s.now()
		code := domain.DiscountCode{
			Code:       candidate,
			Percentage: pct,
			UserID:     userID,
			CreatedAt:  now,
			ExpiresAt:  now.Add(s.ttl),
		}
		if err := s.repo.CreateDiscountCode(ctx, code); err != nil {
			return domain.DiscountCode{}, fmt.Errorf("failed to create discount code: %w", err)
		}

		logger.Info("discount code created", "code", code.Code, "percentage", pct, "user_id", userID)
		return code, nil
	}

	return domain.DiscountCode{}, domain.NewCapacity("could not generate a unique discount code")
}

// Validate checks that userID may redeem code now. It never mutates state.
func (s *Service) Validate(ctx context.Context, code, userID string) (domain.DiscountCode, error) {
	dc, err := s.repo.FindDiscountCode(ctx, NormalizeCode(code))
	if err != nil {
		return domain.DiscountCode{}, err
	}

	switch {
	case dc.Used:
		return domain.DiscountCode{}, domain.ErrCodeAlreadyUsed
	case dc.UserID != userID:
		return domain.DiscountCode{}, domain.ErrCodeWrongOwner
	case dc.Expired(s.now()):
		return domain.DiscountCode{}, domain.ErrCodeExpired
	}

	return dc, nil
}

// Use validates and burns the code. There is no way to restore it.
func (s *Service) Use(ctx context.Context, code, userID string) (domain.DiscountCode, error) {
	var dc domain.DiscountCode
	err := s.unit.Do(ctx, func() (bool, error) {
		var err error
		dc, err = s.UseTx(ctx, code, userID)
		return err == nil, err
	})
	if err != nil {
		return domain.DiscountCode{}, err
	}

	return dc, nil
}

// UseTx is Use for callers already holding the unit lock.
func (s *Service) UseTx(ctx context.Context, code, userID string) (domain.DiscountCode, error) {
	dc, err := s.Validate(ctx, code, userID)
	if err != nil {
		return domain.DiscountCode{}, err
	}

	usedAt := s.now()
	dc.Used = true
	dc.UsedAt = &usedAt
	if err := s.repo.UpdateDiscountCode(ctx, dc); err != nil {
		return domain.DiscountCode{}, fmt.Errorf("failed to mark discount code used: %w", err)
	}

	metrics.DiscountCodesUsed.Inc()
	logger.Info("discount code used", "code", dc.Code, "user_id", userID)

	return dc, nil
}

func (s *Service) ListUserCodes(ctx context.Context, userID string) ([]domain.DiscountCode, error) {
	return s.repo.FindDiscountCodesByUser(ctx, userID)
}
