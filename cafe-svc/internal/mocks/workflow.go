package mocks

import (
	context "context"
	json "encoding/json"

	domain "cafe-checkout/cafe-svc/internal/domain"
	ethapi "cafe-checkout/cafe-svc/internal/ethapi"

	decimal "github.com/shopspring/decimal"
	mock "github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// Provider is a mock type for the Provider type
type Provider struct {
	mock.Mock
}

func (_m *Provider) Accounts(ctx context.Context) ([]string, error) {
	ret := _m.Called(ctx)

	var r0 []string
	if rf, ok := ret.Get(0).(func(context.Context) []string); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}

func (_m *Provider) Send(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	_ca := []interface{}{ctx, method}
	_ca = append(_ca, params...)
	ret := _m.Called(_ca...)

	var r0 json.RawMessage
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(json.RawMessage)
	}
	return r0, ret.Error(1)
}

func NewProvider(t testingT) *Provider {
	m := &Provider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// BusinessStore is a mock type for the BusinessStore type
type BusinessStore struct {
	mock.Mock
}

func (_m *BusinessStore) Open(ctx context.Context, address string) (*domain.BusinessData, []domain.MenuItem, error) {
	ret := _m.Called(ctx, address)

	var r0 *domain.BusinessData
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.BusinessData)
	}
	var r1 []domain.MenuItem
	if ret.Get(1) != nil {
		r1 = ret.Get(1).([]domain.MenuItem)
	}
	return r0, r1, ret.Error(2)
}

func (_m *BusinessStore) Lookup(ctx context.Context, businessID string) (*domain.BusinessData, []domain.MenuItem, error) {
	ret := _m.Called(ctx, businessID)

	var r0 *domain.BusinessData
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.BusinessData)
	}
	var r1 []domain.MenuItem
	if ret.Get(1) != nil {
		r1 = ret.Get(1).([]domain.MenuItem)
	}
	return r0, r1, ret.Error(2)
}

func (_m *BusinessStore) SetData(ctx context.Context, address string, data domain.BusinessData) error {
	ret := _m.Called(ctx, address, data)
	return ret.Error(0)
}

func (_m *BusinessStore) SetMenu(ctx context.Context, address string, menu []domain.MenuItem) error {
	ret := _m.Called(ctx, address, menu)
	return ret.Error(0)
}

func NewBusinessStore(t testingT) *BusinessStore {
	m := &BusinessStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// OrderStore is a mock type for the OrderStore type
type OrderStore struct {
	mock.Mock
}

func (_m *OrderStore) ListOrders(ctx context.Context, businessID string) ([]domain.Order, error) {
	ret := _m.Called(ctx, businessID)

	var r0 []domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *OrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	ret := _m.Called(ctx, order)
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Order) error); ok {
		return rf(ctx, order)
	}
	return ret.Error(0)
}

func (_m *OrderStore) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, txHash string) error {
	ret := _m.Called(ctx, id, status, txHash)
	return ret.Error(0)
}

func NewOrderStore(t testingT) *OrderStore {
	m := &OrderStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// BalanceService is a mock type for the BalanceService type
type BalanceService struct {
	mock.Mock
}

func (_m *BalanceService) AvailableBalance(ctx context.Context, address string, currency string) (decimal.Decimal, error) {
	ret := _m.Called(ctx, address, currency)

	var r0 decimal.Decimal
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(decimal.Decimal)
	}
	return r0, ret.Error(1)
}

func NewBalanceService(t testingT) *BalanceService {
	m := &BalanceService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ReceiptFetcher is a mock type for the ReceiptFetcher type
type ReceiptFetcher struct {
	mock.Mock
}

func (_m *ReceiptFetcher) TransactionReceipt(ctx context.Context, txHash string, chainID int) (*ethapi.TransactionReceipt, error) {
	ret := _m.Called(ctx, txHash, chainID)

	var r0 *ethapi.TransactionReceipt
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*ethapi.TransactionReceipt)
	}
	return r0, ret.Error(1)
}

func NewReceiptFetcher(t testingT) *ReceiptFetcher {
	m := &ReceiptFetcher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Notifier is a mock type for the Notifier type
type Notifier struct {
	mock.Mock
}

func (_m *Notifier) Notify(message string, isError bool) {
	_m.Called(message, isError)
}

func NewNotifier(t testingT) *Notifier {
	m := &Notifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
