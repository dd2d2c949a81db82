package service

import (
	"context"

	"github.com/shopspring/decimal"

	"cafe-checkout/cafe-svc/internal/domain"
	"cafe-checkout/cafe-svc/internal/ethapi"
)

type BalanceAPI interface {
	AccountBalance(ctx context.Context, address string, chainID int) (ethapi.AssetData, error)
	TokenBalance(ctx context.Context, address string, chainID int, contractAddress string) (ethapi.AssetData, error)
}

type BalanceCache interface {
	BalanceKey(address, currency string) string
	GetBalance(ctx context.Context, key string) (decimal.Decimal, bool, error)
	SetBalance(ctx context.Context, key string, value decimal.Decimal) error
}

type BalanceServiceInterface interface {
	AvailableBalance(ctx context.Context, address, currency string) (decimal.Decimal, error)
}

type QRGenerator interface {
	Generate(uri string) ([]byte, error)
}

type SalesStore interface {
	RecordSale(ctx context.Context, businessID string, items []domain.OrderEventItem) error
	TopItems(ctx context.Context, businessID string, limit int) ([]domain.ItemSales, error)
}

var _ BalanceServiceInterface = (*Aggregator)(nil)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	ListOrders(ctx context.Context, businessID string) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, txHash string) error
}

type OrderPublisher interface {
	PublishOrder(ctx context.Context, event domain.OrderEvent) error
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	ListOrders(ctx context.Context, businessID string) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, txHash string) error
	QRCode(ctx context.Context, id string) ([]byte, error)
}

var _ OrderServiceInterface = (*OrderService)(nil)
