package mocks

import (
	context "context"
	io "io"

	domain "cafe-checkout/cafe-svc/internal/domain"
	ethapi "cafe-checkout/cafe-svc/internal/ethapi"

	kafka "github.com/segmentio/kafka-go"
	decimal "github.com/shopspring/decimal"
	mock "github.com/stretchr/testify/mock"
)

// BalanceAPI is a mock type for the BalanceAPI type
type BalanceAPI struct {
	mock.Mock
}

func (_m *BalanceAPI) AccountBalance(ctx context.Context, address string, chainID int) (ethapi.AssetData, error) {
	ret := _m.Called(ctx, address, chainID)

	var r0 ethapi.AssetData
	if rf, ok := ret.Get(0).(func(context.Context, string, int) ethapi.AssetData); ok {
		r0 = rf(ctx, address, chainID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(ethapi.AssetData)
	}
	return r0, ret.Error(1)
}

func (_m *BalanceAPI) TokenBalance(ctx context.Context, address string, chainID int, contractAddress string) (ethapi.AssetData, error) {
	ret := _m.Called(ctx, address, chainID, contractAddress)

	var r0 ethapi.AssetData
	if rf, ok := ret.Get(0).(func(context.Context, string, int, string) ethapi.AssetData); ok {
		r0 = rf(ctx, address, chainID, contractAddress)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(ethapi.AssetData)
	}
	return r0, ret.Error(1)
}

func NewBalanceAPI(t testingT) *BalanceAPI {
	m := &BalanceAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// BalanceCache is a mock type for the BalanceCache type
type BalanceCache struct {
	mock.Mock
}

func (_m *BalanceCache) BalanceKey(address string, currency string) string {
	ret := _m.Called(address, currency)
	return ret.String(0)
}

func (_m *BalanceCache) GetBalance(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	ret := _m.Called(ctx, key)

	var r0 decimal.Decimal
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(decimal.Decimal)
	}
	return r0, ret.Bool(1), ret.Error(2)
}

func (_m *BalanceCache) SetBalance(ctx context.Context, key string, value decimal.Decimal) error {
	ret := _m.Called(ctx, key, value)
	return ret.Error(0)
}

func NewBalanceCache(t testingT) *BalanceCache {
	m := &BalanceCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// OrderRepository is a mock type for the OrderRepository type
type OrderRepository struct {
	mock.Mock
}

func (_m *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	ret := _m.Called(ctx, order)
	return ret.Error(0)
}

func (_m *OrderRepository) ListOrders(ctx context.Context, businessID string) ([]domain.Order, error) {
	ret := _m.Called(ctx, businessID)

	var r0 []domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *OrderRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, txHash string) error {
	ret := _m.Called(ctx, id, status, txHash)
	return ret.Error(0)
}

func NewOrderRepository(t testingT) *OrderRepository {
	m := &OrderRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// OrderPublisher is a mock type for the OrderPublisher type
type OrderPublisher struct {
	mock.Mock
}

func (_m *OrderPublisher) PublishOrder(ctx context.Context, event domain.OrderEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

func NewOrderPublisher(t testingT) *OrderPublisher {
	m := &OrderPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// OrderService is a mock type for the OrderServiceInterface type
type OrderService struct {
	OrderRepository
}

func (_m *OrderService) QRCode(ctx context.Context, id string) ([]byte, error) {
	ret := _m.Called(ctx, id)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

func NewOrderService(t testingT) *OrderService {
	m := &OrderService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// SalesStore is a mock type for the SalesStore type
type SalesStore struct {
	mock.Mock
}

func (_m *SalesStore) RecordSale(ctx context.Context, businessID string, items []domain.OrderEventItem) error {
	ret := _m.Called(ctx, businessID, items)
	return ret.Error(0)
}

func (_m *SalesStore) TopItems(ctx context.Context, businessID string, limit int) ([]domain.ItemSales, error) {
	ret := _m.Called(ctx, businessID, limit)

	var r0 []domain.ItemSales
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.ItemSales)
	}
	return r0, ret.Error(1)
}

func NewSalesStore(t testingT) *SalesStore {
	m := &SalesStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// QRGenerator is a mock type for the QRGenerator type
type QRGenerator struct {
	mock.Mock
}

func (_m *QRGenerator) Generate(uri string) ([]byte, error) {
	ret := _m.Called(uri)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

func NewQRGenerator(t testingT) *QRGenerator {
	m := &QRGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MessageReader is a mock type for the MessageReader type
type MessageReader struct {
	mock.Mock
}

func (_m *MessageReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	ret := _m.Called(ctx)

	var r0 kafka.Message
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(kafka.Message)
	}
	return r0, ret.Error(1)
}

func NewMessageReader(t testingT) *MessageReader {
	m := &MessageReader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ImagePinner is a mock type for the ImagePinner type
type ImagePinner struct {
	mock.Mock
}

func (_m *ImagePinner) PinFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	ret := _m.Called(ctx, filename, content)
	return ret.String(0), ret.Error(1)
}

func (_m *ImagePinner) FileURL(hash string) string {
	ret := _m.Called(hash)
	return ret.String(0)
}

func NewImagePinner(t testingT) *ImagePinner {
	m := &ImagePinner{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
