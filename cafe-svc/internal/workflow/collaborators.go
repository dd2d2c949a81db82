package workflow

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"cafe-checkout/cafe-svc/internal/domain"
	"cafe-checkout/cafe-svc/internal/ethapi"
)

// Provider is the connected wallet.
type Provider interface {
	Accounts(ctx context.Context) ([]string, error)
	Send(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// BusinessStore persists each business's profile, settings and menu.
// Open returns a nil record for an address that has not signed up.
type BusinessStore interface {
	Open(ctx context.Context, address string) (*domain.BusinessData, []domain.MenuItem, error)
	Lookup(ctx context.Context, businessID string) (*domain.BusinessData, []domain.MenuItem, error)
	SetData(ctx context.Context, address string, data domain.BusinessData) error
	SetMenu(ctx context.Context, address string, menu []domain.MenuItem) error
}

type OrderStore interface {
	ListOrders(ctx context.Context, businessID string) ([]domain.Order, error)
	CreateOrder(ctx context.Context, order *domain.Order) error
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, txHash string) error
}

type BalanceService interface {
	AvailableBalance(ctx context.Context, address, currency string) (decimal.Decimal, error)
}

type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash string, chainID int) (*ethapi.TransactionReceipt, error)
}
