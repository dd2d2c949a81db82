package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	Email       string `json:"email"`
	Type        string `json:"type"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
}

type Settings struct {
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxDisplay     bool            `json:"tax_display"`
	PaymentAddress string          `json:"payment_address"`
	NativeCurrency string          `json:"native_currency"`
	PaymentMethods []string        `json:"payment_methods"`
}

// BusinessData is the record a business keeps in its box.
type BusinessData struct {
	Profile  Profile  `json:"profile"`
	Settings Settings `json:"settings"`
}

type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

type OrderItem struct {
	MenuItem
	Quantity int `json:"quantity"`
}

type Checkout struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

type PaymentMethod struct {
	Type     string `json:"type"`
	ChainID  int    `json:"chain_id"`
	Currency string `json:"currency"`
}

// PaymentRequest is what the customer's wallet is asked to pay.
// Amount is expressed in units of Currency, not in the native currency.
type PaymentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Address  string          `json:"address"`
	Currency string          `json:"currency"`
	ChainID  int             `json:"chain_id"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderSubmitted OrderStatus = "submitted"
	OrderConfirmed OrderStatus = "confirmed"
	OrderFailed    OrderStatus = "failed"
)

type Order struct {
	ID            string          `json:"id"`
	BusinessID    string          `json:"business_id"`
	Items         []OrderItem     `json:"items"`
	Checkout      Checkout        `json:"checkout"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Payment       *PaymentRequest `json:"payment,omitempty"`
	URI           string          `json:"uri,omitempty"`
	Status        OrderStatus     `json:"status"`
	TxHash        string          `json:"tx_hash,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderEvent is published on the orders topic once an order is persisted.
type OrderEvent struct {
	Type       string           `json:"type"`
	OrderID    string           `json:"order_id"`
	BusinessID string           `json:"business_id"`
	Items      []OrderEventItem `json:"items"`
	Total      decimal.Decimal  `json:"total"`
	Currency   string           `json:"currency"`
	Timestamp  time.Time        `json:"timestamp"`
}

type OrderEventItem struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

const OrderSubmittedEvent = "order_submitted"

type ItemSales struct {
	ItemID   string  `json:"item_id"`
	Quantity float64 `json:"quantity"`
}
