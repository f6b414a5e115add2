package domain

import "errors"

// Error kinds. Every error returned by a business service wraps one of these.
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrAuthorization = errors.New("authorization error")
	ErrStateConflict = errors.New("state conflict")
	ErrCapacity      = errors.New("capacity error")
	ErrPersistence   = errors.New("persistence error")
)

// Error is a classified failure. errors.Is matches both the Error value itself
// and its Kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewValidation(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

func NewNotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

func NewAuthorization(msg string) error {
	return &Error{Kind: ErrAuthorization, Msg: msg}
}

func NewStateConflict(msg string) error {
	return &Error{Kind: ErrStateConflict, Msg: msg}
}

func NewCapacity(msg string) error {
	return &Error{Kind: ErrCapacity, Msg: msg}
}

// Discount code failures.
var (
	ErrCodeNotFound         = &Error{Kind: ErrNotFound, Msg: "discount code not found"}
	ErrCodeAlreadyUsed      = &Error{Kind: ErrStateConflict, Msg: "discount code already used"}
	ErrCodeWrongOwner       = &Error{Kind: ErrAuthorization, Msg: "discount code belongs to another user"}
	ErrCodeExpired          = &Error{Kind: ErrStateConflict, Msg: "discount code expired"}
	ErrInvalidDiscountValue = &Error{Kind: ErrValidation, Msg: "invalid discount percentage"}
)

// Common lookups.
var (
	ErrUserNotFound    = &Error{Kind: ErrNotFound, Msg: "user not found"}
	ErrProductNotFound = &Error{Kind: ErrNotFound, Msg: "product not found"}
	ErrOrderNotFound   = &Error{Kind: ErrNotFound, Msg: "order not found"}
	ErrCartItemMissing = &Error{Kind: ErrNotFound, Msg: "item not found in cart"}
	ErrReviewNotFound  = &Error{Kind: ErrNotFound, Msg: "review not found"}
	ErrSnapshotMissing = &Error{Kind: ErrNotFound, Msg: "snapshot not found"}
)
