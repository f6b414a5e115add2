package discount

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"marketplace/business/txn"
	"marketplace/domain"
	"marketplace/pkg/logger"
	"marketplace/pkg/metrics"
)

type SpinRepository interface {
	CreateSpinAttempt(ctx context.Context, attempt domain.SpinAttempt) error
	FindSpinAttemptsByUser(ctx context.Context, userID string) ([]domain.SpinAttempt, error)
	DeleteSpinAttempts(ctx context.Context, ids []string) error
	DeleteAllSpinAttempts(ctx context.Context) (int, error)
}

const (
	DefaultSpinWindow      = 5 * time.Minute
	DefaultMaxSpinAttempts = 3
)

type SpinResult struct {
	Attempt domain.SpinAttempt
	// Code is set only for winning spins.
	Code *domain.DiscountCode
}

// SpinService limits each user to maxAttempts spins per trailing window.
// Expired attempts are evicted lazily whenever a user's attempts are read.
type SpinService struct {
	spinRepo    SpinRepository
	codes       *Service
	unit        *txn.Unit
	rng         Random
	now         txn.Clock
	window      time.Duration
	maxAttempts int
}

func NewSpinService(spinRepo SpinRepository, codes *Service, unit *txn.Unit, rng Random, now txn.Clock, window time.Duration, maxAttempts int) *SpinService {
	if window <= 0 {
		window = DefaultSpinWindow
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxSpinAttempts
	}

	return &SpinService{
		spinRepo:    spinRepo,
		codes:       codes,
		unit:        unit,
		rng:         NewLockedRandom(rng),
		now:         now,
		window:      window,
		maxAttempts: maxAttempts,
	}
}

// recentTx returns the attempts inside the window and deletes the rest.
func (s *SpinService) recentTx(ctx context.Context, userID string) ([]domain.SpinAttempt, int, error) {
	attempts, err := s.spinRepo.FindSpinAttemptsByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	recent := make([]domain.SpinAttempt, 0, len(attempts))
	var stale []string
	for _, a := range attempts {
		if now.Sub(a.CreatedAt) < s.window {
			recent = append(recent, a)
		} else {
			stale = append(stale, a.ID)
		}
	}

	if len(stale) > 0 {
		if err := s.spinRepo.DeleteSpinAttempts(ctx, stale); err != nil {
			return nil, 0, fmt.Errorf("failed to evict spin attempts: %w", err)
		}
		logger.Debug("evicted spin attempts", "user_id", userID, "count", len(stale))
	}

	return recent, len(stale), nil
}

// GetUserSpinAttempts returns the attempts inside the trailing window,
// persisting the eviction of older ones.
func (s *SpinService) GetUserSpinAttempts(ctx context.Context, userID string) ([]domain.SpinAttempt, error) {
	var recent []domain.SpinAttempt
	err := s.unit.Do(ctx, func() (bool, error) {
		var evicted int
		var err error
		recent, evicted, err = s.recentTx(ctx, userID)
		return evicted > 0, err
	})
	if err != nil {
		return nil, err
	}

	return recent, nil
}

func (s *SpinService) CanUserSpin(ctx context.Context, userID string) (bool, error) {
	recent, err := s.GetUserSpinAttempts(ctx, userID)
	if err != nil {
		return false, err
	}

	return len(recent) < s.maxAttempts, nil
}

func (s *SpinService) Status(ctx context.Context, userID string) (domain.SpinStatus, error) {
	recent, err := s.GetUserSpinAttempts(ctx, userID)
	if err != nil {
		return domain.SpinStatus{}, err
	}

	return domain.SpinStatus{
		CanSpin:        len(recent) < s.maxAttempts,
		CurrentSpins:   len(recent),
		NextSpinNumber: min(len(recent)+1, s.maxAttempts),
		MaxSpins:       s.maxAttempts,
	}, nil
}

// DetermineSpinResult draws one wheel segment uniformly.
func (s *SpinService) DetermineSpinResult() int {
	return domain.SpinOutcomes[s.rng.IntN(len(domain.SpinOutcomes))]
}

// Spin draws a result and records it for userID.
func (s *SpinService) Spin(ctx context.Context, userID string) (SpinResult, error) {
	return s.RecordSpinAttempt(ctx, userID, s.DetermineSpinResult())
}

// RecordSpinAttempt stores one attempt with the given result. A winning
// result issues exactly one discount code, linked from the attempt.
func (s *SpinService) RecordSpinAttempt(ctx context.Context, userID string, result int) (SpinResult, error) {
	if userID == "" {
		return SpinResult{}, domain.NewValidation("user id is required")
	}
	if !domain.IsSpinOutcome(result) {
		return SpinResult{}, domain.ErrInvalidDiscountValue
	}

	var out SpinResult
	err := s.unit.Do(ctx, func() (bool, error) {
		recent, evicted, err := s.recentTx(ctx, userID)
		if err != nil {
			return evicted > 0, err
		}
		if len(recent) >= s.maxAttempts {
			return evicted > 0, domain.NewCapacity(fmt.Sprintf("maximum of %d spins per %s reached", s.maxAttempts, s.window))
		}

		attempt := domain.SpinAttempt{
			ID:         uuid.NewString(),
			UserID:     userID,
			SpinNumber: len(recent) + 1,
			Result:     result,
			CreatedAt:  s.now(),
		}

		if result > 0 {
			code, err := s.codes.CreateTx(ctx, result, userID)
			if err != nil {
				return evicted > 0, err
			}
			attempt.DiscountCode = code.Code
			out.Code = &code
		}

		if err := s.spinRepo.CreateSpinAttempt(ctx, attempt); err != nil {
			return true, fmt.Errorf("failed to record spin attempt: %w", err)
		}
		out.Attempt = attempt
		return true, nil
	})
	if err != nil {
		logger.Warn("spin rejected", "user_id", userID, "error", err)
		return SpinResult{}, err
	}

	metrics.Spins.WithLabelValues(strconv.Itoa(result)).Inc()
	logger.Info("spin recorded", "user_id", userID, "spin_number", out.Attempt.SpinNumber, "result", result)

	return out, nil
}

// ResetSpinAttempts clears every user's attempts.
func (s *SpinService) ResetSpinAttempts(ctx context.Context, actor domain.Actor) (int, error) {
	if actor.Role != domain.RoleAdmin {
		return 0, domain.NewAuthorization("admin access required")
	}

	var n int
	err := s.unit.Do(ctx, func() (bool, error) {
		var err error
		n, err = s.spinRepo.DeleteAllSpinAttempts(ctx)
		return n > 0, err
	})
	if err != nil {
		return 0, err
	}

	logger.Info("spin attempts reset", "user_id", actor.UserID, "count", n)

	return n, nil
}
