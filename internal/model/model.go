// Package model defines domain entities shared by the API client and services.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role of an authenticated user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is the server-owned account record. The client treats it as a
// read-mostly cache invalidated by logout or a fresh login/register response.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user may reach the admin surface.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Session pairs a bearer token with its cached user. ExpiresAt is zero for
// the ephemeral tier, which has no expiry bookkeeping.
type Session struct {
	Token     string    `json:"token"`
	User      *User     `json:"user,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// AuthResponse is the envelope data of login/register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Product is read-only from the client's perspective.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	ImageURL      string          `json:"image_url"`
	Category      string          `json:"category"`
	Code          string          `json:"code"`
	Description   string          `json:"description,omitempty"`
	Unit          string          `json:"unit,omitempty"`
	AverageRating float64         `json:"average_rating,omitempty"`
	RatingCount   int             `json:"rating_count,omitempty"`
}

// CartLine is one cart entry. Selected is a pure client-side annotation and
// never crosses the wire.
type CartLine struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"price"`
	StockAvailable int             `json:"stock"`
	ImageURL       string          `json:"image_url"`
	Name           string          `json:"name"`
	Selected       bool            `json:"-"`
}

// Subtotal returns unit price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the server's cart payload as returned by GET /api/cart.
type Cart struct {
	Items     []CartLine      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// OrderStatus values are server-assigned; the client only ever requests a
// transition and renders whatever comes back.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPaid       OrderStatus = "paid"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderItem is a purchased line frozen at order time.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// Order as returned by the orders endpoints.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingAddress string          `json:"shipping_address"`
	PhoneNumber     string          `json:"phone_number"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Wallet is read-only to the client except through an explicit deposit.
type Wallet struct {
	Balance decimal.Decimal `json:"balance"`
}

// Transaction is one wallet history entry.
type Transaction struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}
