package orders

import "marketplace/domain"

type transitionKey struct {
	role domain.Role
	from domain.OrderStatus
}

// transitions is the whole order state machine: for each role and current
// status, the statuses that role may move an order to. Anything absent is
// rejected.
var transitions = map[transitionKey][]domain.OrderStatus{
	{domain.RoleCustomer, domain.StatusPending}:  {domain.StatusReceiptPending},
	{domain.RoleCustomer, domain.StatusApproved}: {domain.StatusDelivered},

	{domain.RoleVendor, domain.StatusReceiptPending}: {domain.StatusAdminReview},

	{domain.RoleAdmin, domain.StatusPending}: {
		domain.StatusCancelled, domain.StatusReceiptPending, domain.StatusAdminReview,
		domain.StatusApproved, domain.StatusDelivered,
	},
	{domain.RoleAdmin, domain.StatusReceiptPending}: {
		domain.StatusCancelled, domain.StatusPending, domain.StatusAdminReview,
		domain.StatusApproved, domain.StatusDelivered,
	},
	{domain.RoleAdmin, domain.StatusAdminReview}: {
		domain.StatusCancelled, domain.StatusPending, domain.StatusReceiptPending,
		domain.StatusApproved, domain.StatusDelivered,
	},
	{domain.RoleAdmin, domain.StatusApproved}: {
		domain.StatusCancelled, domain.StatusPending, domain.StatusReceiptPending,
		domain.StatusAdminReview, domain.StatusDelivered,
	},
	{domain.RoleAdmin, domain.StatusDelivered}: {
		domain.StatusCancelled, domain.StatusPending, domain.StatusReceiptPending,
		domain.StatusAdminReview, domain.StatusApproved,
	},
}

// AllowedTransitions returns the targets role may move an order in status from to.
func AllowedTransitions(role domain.Role, from domain.OrderStatus) []domain.OrderStatus {
	targets := transitions[transitionKey{role, from}]
	out := make([]domain.OrderStatus, len(targets))
	copy(out, targets)
	return out
}

func CanTransition(role domain.Role, from, to domain.OrderStatus) bool {
	for _, t := range transitions[transitionKey{role, from}] {
		if t == to {
			return true
		}
	}
	return false
}
