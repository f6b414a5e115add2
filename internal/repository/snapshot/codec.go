package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketplace/domain"
)

// Document is the on-disk shape: entity type name -> id -> record.
type Document struct {
	Users         map[string]userRecord     `json:"users"`
	Products      map[string]productRecord  `json:"products"`
	CartItems     map[string]cartRecord     `json:"cart_items"`
	Orders        map[string]orderRecord    `json:"orders"`
	OrderComments map[string]commentRecord  `json:"order_comments"`
	DiscountCodes map[string]discountRecord `json:"discount_codes"`
	SpinAttempts  map[string]spinRecord     `json:"spin_attempts"`
	Reviews       map[string]reviewRecord   `json:"reviews"`
}

type userRecord struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"password_hash"`
	Role         string   `json:"role"`
	Wishlist     []string `json:"wishlist"`
	CreatedAt    string   `json:"created_at"`
}

type productRecord struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Price              decimal.Decimal  `json:"price"`
	Category           string           `json:"category"`
	VendorID           string           `json:"vendor_id"`
	SellerID           string           `json:"seller_id,omitempty"`
	ImageFilename      string           `json:"image_filename,omitempty"`
	IsActive           *bool            `json:"is_active"`
	Stock              int              `json:"stock"`
	IsPromotional      bool             `json:"is_promotional"`
	PromotionalPrice   *decimal.Decimal `json:"promotional_price"`
	PromotionalEndDate *string          `json:"promotional_end_date"`
	CreatedAt          string           `json:"created_at"`
}

type cartRecord struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	AddedAt   string `json:"added_at"`
}

type orderItemRecord struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	VendorID    string          `json:"vendor_id,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type orderRecord struct {
	ID                 string            `json:"id"`
	CustomerID         string            `json:"customer_id"`
	BuyerID            string            `json:"buyer_id,omitempty"`
	Items              []orderItemRecord `json:"items"`
	Subtotal           decimal.Decimal   `json:"subtotal"`
	DiscountCode       string            `json:"discount_code,omitempty"`
	DiscountPercentage int               `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal   `json:"discount_amount"`
	Total              decimal.Decimal   `json:"total_amount"`
	Status             string            `json:"status"`
	CreatedAt          string            `json:"created_at"`
	UpdatedAt          string            `json:"updated_at"`
}

type commentRecord struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	UserID    string `json:"user_id"`
	UserRole  string `json:"user_role"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type discountRecord struct {
	Code       string  `json:"code"`
	Percentage int     `json:"discount_percentage"`
	UserID     string  `json:"user_id"`
	Used       bool    `json:"is_used"`
	UsedAt     *string `json:"used_at"`
	CreatedAt  string  `json:"created_at"`
	ExpiresAt  string  `json:"expires_at"`
}

type spinRecord struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	SpinNumber   int    `json:"spin_number"`
	Result       int    `json:"result_discount"`
	DiscountCode string `json:"discount_code,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type reviewRecord struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// legacy records were written without a zone
		t, err = time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
	}
	return t.UTC(), nil
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Encode renders snap as an indented JSON document.
func Encode(snap domain.Snapshot) ([]byte, error) {
	doc := toDocument(snap)
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses a JSON document. Absent optional fields take their zero
// defaults; legacy seller/buyer naming is folded into vendor/customer.
func Decode(data []byte) (domain.Snapshot, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return fromDocument(doc)
}

func toDocument(snap domain.Snapshot) Document {
	doc := Document{
		Users:         make(map[string]userRecord, len(snap.Users)),
		Products:      make(map[string]productRecord, len(snap.Products)),
		CartItems:     make(map[string]cartRecord, len(snap.CartItems)),
		Orders:        make(map[string]orderRecord, len(snap.Orders)),
		OrderComments: make(map[string]commentRecord, len(snap.OrderComments)),
		DiscountCodes: make(map[string]discountRecord, len(snap.DiscountCodes)),
		SpinAttempts:  make(map[string]spinRecord, len(snap.SpinAttempts)),
		Reviews:       make(map[string]reviewRecord, len(snap.Reviews)),
	}

	for id, u := range snap.Users {
		doc.Users[id] = userRecord{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			Role:         string(u.Role),
			Wishlist:     u.Wishlist,
			CreatedAt:    formatTime(u.CreatedAt),
		}
	}

	for id, p := range snap.Products {
		active := p.IsActive
		doc.Products[id] = productRecord{
			ID:                 p.ID,
			Name:               p.Name,
			Description:        p.Description,
			Price:              p.Price,
			Category:           p.Category,
			VendorID:           p.VendorID,
			ImageFilename:      p.ImageFilename,
			IsActive:           &active,
			Stock:              p.Stock,
			IsPromotional:      p.IsPromotional,
			PromotionalPrice:   p.PromotionalPrice,
			PromotionalEndDate: formatTimePtr(p.PromotionalEndDate),
			CreatedAt:          formatTime(p.CreatedAt),
		}
	}

	for key, c := range snap.CartItems {
		doc.CartItems[key] = cartRecord{
			UserID:    c.UserID,
			ProductID: c.ProductID,
			Quantity:  c.Quantity,
			AddedAt:   formatTime(c.AddedAt),
		}
	}

	for id, o := range snap.Orders {
		items := make([]orderItemRecord, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, orderItemRecord{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				VendorID:    it.VendorID,
				Quantity:    it.Quantity,
				Price:       it.Price,
			})
		}
		doc.Orders[id] = orderRecord{
			ID:                 o.ID,
			CustomerID:         o.CustomerID,
			Items:              items,
			Subtotal:           o.Subtotal,
			DiscountCode:       o.DiscountCode,
			DiscountPercentage: o.DiscountPercentage,
			DiscountAmount:     o.DiscountAmount,
			Total:              o.Total,
			Status:             string(o.Status),
			CreatedAt:          formatTime(o.CreatedAt),
			UpdatedAt:          formatTime(o.UpdatedAt),
		}
	}

	for id, c := range snap.OrderComments {
		doc.OrderComments[id] = commentRecord{
			ID:        c.ID,
			OrderID:   c.OrderID,
			UserID:    c.UserID,
			UserRole:  string(c.UserRole),
			Message:   c.Message,
			CreatedAt: formatTime(c.CreatedAt),
		}
	}

	for code, d := range snap.DiscountCodes {
		doc.DiscountCodes[code] = discountRecord{
			Code:       d.Code,
			Percentage: d.Percentage,
			UserID:     d.UserID,
			Used:       d.Used,
			UsedAt:     formatTimePtr(d.UsedAt),
			CreatedAt:  formatTime(d.CreatedAt),
			ExpiresAt:  formatTime(d.ExpiresAt),
		}
	}

	for id, a := range snap.SpinAttempts {
		doc.SpinAttempts[id] = spinRecord{
			ID:           a.ID,
			UserID:       a.UserID,
			SpinNumber:   a.SpinNumber,
			Result:       a.Result,
			DiscountCode: a.DiscountCode,
			CreatedAt:    formatTime(a.CreatedAt),
		}
	}

	for id, r := range snap.Reviews {
		doc.Reviews[id] = reviewRecord{
			ID:        r.ID,
			ProductID: r.ProductID,
			UserID:    r.UserID,
			UserName:  r.UserName,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: formatTime(r.CreatedAt),
		}
	}

	return doc
}

func fromDocument(doc Document) (domain.Snapshot, error) {
	snap := domain.NewSnapshot()

	for id, r := range doc.Users {
		role, ok := domain.ParseRole(r.Role)
		if !ok {
			return domain.Snapshot{}, fmt.Errorf("user %s: unknown role %q", id, r.Role)
		}
		created, err := parseTime(r.CreatedAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("user %s: %w", id, err)
		}
		snap.Users[id] = domain.User{
			ID:           firstNonEmpty(r.ID, id),
			Username:     r.Username,
			Email:        strings.ToLower(strings.TrimSpace(r.Email)),
			PasswordHash: r.PasswordHash,
			Role:         role,
			Wishlist:     r.Wishlist,
			CreatedAt:    created,
		}
	}

	for id, r := range doc.Products {
		created, err := parseTime(r.CreatedAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("product %s: %w", id, err)
		}
		end, err := parseTimePtr(r.PromotionalEndDate)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("product %s: %w", id, err)
		}
		active := true
		if r.IsActive != nil {
			active = *r.IsActive
		}
		snap.Products[id] = domain.Product{
			ID:                 firstNonEmpty(r.ID, id),
			Name:               r.Name,
			Description:        r.Description,
			Price:              r.Price,
			Category:           r.Category,
			VendorID:           firstNonEmpty(r.VendorID, r.SellerID),
			ImageFilename:      r.ImageFilename,
			IsActive:           active,
			Stock:              max(r.Stock, 0),
			IsPromotional:      r.IsPromotional,
			PromotionalPrice:   r.PromotionalPrice,
			PromotionalEndDate: end,
			CreatedAt:          created,
		}
	}

	for key, r := range doc.CartItems {
		added, err := parseTime(r.AddedAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("cart item %s: %w", key, err)
		}
		item := domain.CartItem{
			UserID:    r.UserID,
			ProductID: r.ProductID,
			Quantity:  max(r.Quantity, 1),
			AddedAt:   added,
		}
		snap.CartItems[item.Key()] = item
	}

	for id, r := range doc.Orders {
		status, ok := domain.ParseOrderStatus(r.Status)
		if !ok {
			return domain.Snapshot{}, fmt.Errorf("order %s: unknown status %q", id, r.Status)
		}
		created, err := parseTime(r.CreatedAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("order %s: %w", id, err)
		}
		updated, err := parseTime(r.UpdatedAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("order %s: %w", id, err)
		}
		items := make([]domain.OrderItem, 0, len(r.Items))
		for _, it := range r.Items {
			items = append(items, domain.OrderItem{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				VendorID:    it.VendorID,
				Quantity:    it.Quantity,
				Price:       it.Price,
			})
		}
		snap.Orders[id] = domain.Order{
			ID:                 firstNonEmpty(r.ID, id),
			CustomerID:         firstNonEmpty(r.CustomerID, r.BuyerID),
			Items:              items,
			Subtotal:           r.Subtotal,
			DiscountCode:       r.DiscountCode,
			DiscountPercentage: r.DiscountPercentage,
			DiscountAmount:     r.DiscountAmount,
			Total:              r.Total,
			Status:             status,
			CreatedAt:          created,
			UpdatedAt:          updated,
		}
	}

	for id, r := range doc.OrderComments {
		role, _ := domain.ParseRole(r.UserRole)
		created, err := parseTime(r.CreatedAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("comment %s: %w", id, err)
		}
		snap.OrderComments[id] = domain.OrderComment{
			ID:        firstNonEmpty(r.ID, id),
			OrderID:   r.OrderID,
			UserID:    r.UserID,
			UserRole:  role,
			Message:   r.Message,
			CreatedAt: created,
		}
	}

	for code, r := range doc.DiscountCodes {
		created, err := parseTime(r.CreatedAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("discount code %s: %w", code, err)
		}
		expires, err := parseTime(r.ExpiresAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("discount code %s: %w", code, err)
		}
		usedAt, err := parseTimePtr(r.UsedAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("discount code %s: %w", code, err)
		}
		snap.DiscountCodes[code] = domain.DiscountCode{
			Code:       firstNonEmpty(r.Code, code),
			Percentage: r.Percentage,
			UserID:     r.UserID,
			Used:       r.Used,
			UsedAt:     usedAt,
			CreatedAt:  created,
			ExpiresAt:  expires,
		}
	}

	for id, r := range doc.SpinAttempts {
		created, err := parseTime(r.CreatedAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("spin attempt %s: %w", id, err)
		}
		snap.SpinAttempts[id] = domain.SpinAttempt{
			ID:           firstNonEmpty(r.ID, id),
			UserID:       r.UserID,
			SpinNumber:   r.SpinNumber,
			Result:       r.Result,
			DiscountCode: r.DiscountCode,
			CreatedAt:    created,
		}
	}

	for id, r := range doc.Reviews {
		created, err := parseTime(r.CreatedAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("review %s: %w", id, err)
		}
		snap.Reviews[id] = domain.Review{
			ID:        firstNonEmpty(r.ID, id),
			ProductID: r.ProductID,
			UserID:    r.UserID,
			UserName:  r.UserName,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: created,
		}
	}

	return snap, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
