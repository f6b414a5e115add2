package notification

import (
	"context"
	"fmt"

	"marketplace/domain"
)

type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (domain.User, error)
}

type EmailSender interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, text string) error
}

// OrderMailer emails the customer whenever their order changes status.
type OrderMailer struct {
	users  UserFinder
	sender EmailSender
}

func NewOrderMailer(users UserFinder, sender EmailSender) *OrderMailer {
	return &OrderMailer{users: users, sender: sender}
}

var statusText = map[domain.OrderStatus]string{
	domain.StatusPending:        "is waiting for payment",
	domain.StatusReceiptPending: "has been paid and is waiting for the vendor to confirm the receipt",
	domain.StatusAdminReview:    "is being reviewed by our team",
	domain.StatusApproved:       "has been approved and is on its way",
	domain.StatusDelivered:      "has been delivered",
	domain.StatusCancelled:      "has been cancelled",
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m *OrderMailer) OrderStatusChanged(ctx context.Context, order domain.Order, from domain.OrderStatus) error {
	customer, err := m.users.FindUserByID(ctx, order.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to find customer: %w", err)
	}

	desc, ok := statusText[order.Status]
	if !ok {
		desc = "is now " + string(order.Status)
	}

	subject := fmt.Sprintf("Order %s update", shortID(order.ID))
	text := fmt.Sprintf("Hi %s,\n\nYour order %s (total %s) %s.\nPrevious status: %s.\n",
		customer.Username, shortID(order.ID), order.Total.StringFixed(2), desc, from)

	return m.sender.SendEmail(ctx, customer.Username, customer.Email, subject, text)
}
