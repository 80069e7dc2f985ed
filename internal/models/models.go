package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices in the JSON documents are bare numbers (9.99), not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Variant struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
	Variants    []Variant       `json:"variants,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses lists every status an order may hold.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func ValidOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// TerminalOrderStatus reports whether s ends the order lifecycle. A terminal
// order never transitions again.
func TerminalOrderStatus(s string) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type OrderItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	VariantID   int             `json:"variant_id,omitempty"`
	Variant     string          `json:"variant,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	UserID      int64           `json:"user_id"`
	UserName    string          `json:"user_name"`
	Items       []OrderItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// User is keyed by the chat identifier of the messaging platform. The cart is
// deliberately absent: it lives in memory for the session only.
type User struct {
	ID             int64           `json:"id"`
	FirstName      string          `json:"first_name"`
	Username       string          `json:"username,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	OrderCount     int             `json:"order_count"`
	CreatedAt      time.Time       `json:"created_at"`
	LastActivity   time.Time       `json:"last_activity"`
}

const (
	DepositStatusPending        = "pending"
	DepositStatusProofSubmitted = "proof_submitted"
	DepositStatusCompleted      = "completed"
	DepositStatusRejected       = "rejected"
)

type Deposit struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Settings struct {
	StoreName      string          `json:"store_name"`
	WelcomeMessage string          `json:"welcome_message"`
	SupportContact string          `json:"support_contact"`
	MinDeposit     decimal.Decimal `json:"min_deposit"`
	MaxDeposit     decimal.Decimal `json:"max_deposit"`
}

func DefaultSettings() Settings {
	return Settings{
		StoreName:      "Premium Store",
		WelcomeMessage: "Welcome to Premium Store! Browse the catalog and pay from your balance.",
		SupportContact: "@premstore_support",
		MinDeposit:     decimal.NewFromInt(20),
		MaxDeposit:     decimal.NewFromInt(10000),
	}
}
