package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"marketplace/domain"
	"marketplace/pkg/logger"
)

const maxCommentLength = 2000

// AddComment appends to the order's thread. Comments are never edited.
func (s *OrdersService) AddComment(ctx context.Context, actor domain.Actor, orderID, message string) (domain.OrderComment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.OrderComment{}, domain.NewValidation("comment cannot be empty")
	}
	if len(message) > maxCommentLength {
		return domain.OrderComment{}, domain.NewValidation(fmt.Sprintf("comment must be at most %d characters", maxCommentLength))
	}

	var comment domain.OrderComment
	err := s.unit.Do(ctx, func() (bool, error) {
		if _, err := s.GetOrder(ctx, actor, orderID); err != nil {
			return false, err
		}

		comment = domain.OrderComment{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			UserID:    actor.UserID,
			UserRole:  actor.Role,
			Message:   message,
			CreatedAt: s.now(),
		}
		if err := s.orderRepo.CreateComment(ctx, comment); err != nil {
			return false, fmt.Errorf("failed to add comment: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return domain.OrderComment{}, err
	}

	logger.Info("order comment added", "order_id", orderID, "user_id", actor.UserID, "role", actor.Role)

	return comment, nil
}

// Comments returns the thread oldest first.
func (s *OrdersService) Comments(ctx context.Context, actor domain.Actor, orderID string) ([]domain.OrderComment, error) {
	if _, err := s.GetOrder(ctx, actor, orderID); err != nil {
		return nil, err
	}

	return s.orderRepo.FindCommentsByOrder(ctx, orderID)
}
