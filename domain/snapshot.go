package domain

// Snapshot is the full entity set handed to and returned from a persistence gateway.
type Snapshot struct {
	Users         map[string]User
	Products      map[string]Product
	CartItems     map[string]CartItem
	Orders        map[string]Order
	OrderComments map[string]OrderComment
	DiscountCodes map[string]DiscountCode
	SpinAttempts  map[string]SpinAttempt
	Reviews       map[string]Review
}

func NewSnapshot() Snapshot {
	return Snapshot{
		Users:         make(map[string]User),
		Products:      make(map[string]Product),
		CartItems:     make(map[string]CartItem),
		Orders:        make(map[string]Order),
		OrderComments: make(map[string]OrderComment),
		DiscountCodes: make(map[string]DiscountCode),
		SpinAttempts:  make(map[string]SpinAttempt),
		Reviews:       make(map[string]Review),
	}
}
