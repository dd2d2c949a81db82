package tests

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cafe-checkout/cafe-svc/internal/domain"
	"cafe-checkout/cafe-svc/internal/ethapi"
	"cafe-checkout/cafe-svc/internal/mocks"
	"cafe-checkout/cafe-svc/internal/workflow"
)

var daiOnMainnet = domain.PaymentMethod{Type: "wallet", ChainID: 1, Currency: "DAI"}

const settlementHash = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"

// browsingOrder returns a session with the blue-cup menu loaded.
func browsingOrder(t *testing.T, orders *mocks.OrderStore, receipts *mocks.ReceiptFetcher) *workflow.Order {
	businesses := mocks.NewBusinessStore(t)
	businesses.On("Lookup", mock.Anything, "blue-cup").Return(blueCup(), []domain.MenuItem{espresso()}, nil).Once()

	order := workflow.NewOrder(businesses, orders, receipts)
	state := order.LoadMenu(context.Background(), "blue-cup")
	require.Equal(t, workflow.PhaseBrowsing, state.Phase)
	return order
}

func addEspressos(t *testing.T, order *workflow.Order, n int) {
	for i := 0; i < n; i++ {
		_, err := order.AddItem("espresso")
		require.NoError(t, err)
	}
}

func TestOrder_LoadMenu(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		prepareMock func(*mocks.BusinessStore)
		wantPhase   workflow.Phase
		wantWarning bool
	}{
		{
			name: "loads profile settings and menu",
			prepareMock: func(businesses *mocks.BusinessStore) {
				businesses.On("Lookup", ctx, "blue-cup").Return(blueCup(), []domain.MenuItem{espresso()}, nil).Once()
			},
			wantPhase: workflow.PhaseBrowsing,
		},
		{
			name: "lookup error",
			prepareMock: func(businesses *mocks.BusinessStore) {
				businesses.On("Lookup", ctx, "blue-cup").Return(nil, nil, errors.New("redis down")).Once()
			},
			wantPhase:   workflow.PhaseLoadingMenu,
			wantWarning: true,
		},
		{
			name: "unknown business",
			prepareMock: func(businesses *mocks.BusinessStore) {
				businesses.On("Lookup", ctx, "blue-cup").Return(nil, nil, nil).Once()
			},
			wantPhase:   workflow.PhaseLoadingMenu,
			wantWarning: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			businesses := mocks.NewBusinessStore(t)
			testCase.prepareMock(businesses)

			state := workflow.NewOrder(businesses, nil, nil).LoadMenu(ctx, "blue-cup")

			assert.Equal(t, testCase.wantPhase, state.Phase)
			assert.False(t, state.Loading)
			assert.Equal(t, testCase.wantWarning, state.Warning.Show)
			if testCase.wantWarning {
				assert.Contains(t, state.Warning.Message, "blue-cup")
			}
		})
	}
}

func TestOrder_Cart(t *testing.T) {
	order := browsingOrder(t, mocks.NewOrderStore(t), nil)

	addEspressos(t, order, 2)
	state := order.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.Items[0].Quantity)

	checkout := state.Checkout()
	assert.Equal(t, "5", checkout.Subtotal.String())
	assert.Equal(t, "0.5", checkout.Tax.String())
	assert.Equal(t, "5.5", checkout.Total.String())
	assert.Equal(t, "USD", checkout.Currency)

	state, err := order.RemoveItem("espresso")
	require.NoError(t, err)
	assert.Equal(t, 1, state.Items[0].Quantity)

	_, err = order.AddItem("latte")
	assert.ErrorIs(t, err, workflow.ErrUnknownMenuItem)
}

func TestOrder_AddItemBeforeMenu(t *testing.T) {
	order := workflow.NewOrder(mocks.NewBusinessStore(t), nil, nil)

	_, err := order.AddItem("espresso")

	assert.ErrorIs(t, err, workflow.ErrMenuNotLoaded)
}

func TestOrder_ChoosePaymentMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  domain.PaymentMethod
		wantErr error
	}{
		{name: "accepted asset", method: domain.PaymentMethod{ChainID: 1, Currency: "DAI"}},
		{name: "asset not on chain", method: domain.PaymentMethod{ChainID: 100, Currency: "DAI"}, wantErr: workflow.ErrUnsupportedPaymentMethod},
		{name: "asset not accepted by business", method: domain.PaymentMethod{ChainID: 1, Currency: "USDC"}, wantErr: workflow.ErrUnsupportedPaymentMethod},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			order := browsingOrder(t, nil, nil)

			state, err := order.ChoosePaymentMethod(testCase.method)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				assert.Nil(t, state.PaymentMethod)
				assert.True(t, state.Warning.Show)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, state.PaymentMethod)
			assert.Equal(t, "wallet", state.PaymentMethod.Type)
			assert.True(t, state.ShowPayment)
		})
	}
}

func TestOrder_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("without payment method only shows the selector", func(t *testing.T) {
		orders := mocks.NewOrderStore(t)
		order := browsingOrder(t, orders, nil)
		addEspressos(t, order, 2)

		state, err := order.Submit(ctx)

		require.NoError(t, err)
		assert.Equal(t, workflow.PhaseChoosingPayment, state.Phase)
		assert.True(t, state.ShowPaymentMethods)
		assert.Empty(t, state.OrderID)
		orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("empty cart", func(t *testing.T) {
		order := browsingOrder(t, mocks.NewOrderStore(t), nil)
		_, err := order.ChoosePaymentMethod(daiOnMainnet)
		require.NoError(t, err)

		state, err := order.Submit(ctx)

		assert.ErrorIs(t, err, workflow.ErrEmptyCart)
		assert.True(t, state.Warning.Show)
		assert.Equal(t, workflow.PhaseBrowsing, state.Phase)
	})

	t.Run("stores the order and builds the payment request", func(t *testing.T) {
		orders := mocks.NewOrderStore(t)
		var stored *domain.Order
		orders.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(func(_ context.Context, o *domain.Order) error {
			stored = o
			return nil
		}).Once()
		order := browsingOrder(t, orders, nil)
		addEspressos(t, order, 2)
		_, err := order.ChoosePaymentMethod(daiOnMainnet)
		require.NoError(t, err)

		state, err := order.Submit(ctx)

		require.NoError(t, err)
		assert.Equal(t, workflow.PhaseSubmitted, state.Phase)
		assert.False(t, state.Loading)
		require.NotNil(t, state.Payment)
		assert.True(t, state.Payment.Amount.Equal(decimal.RequireFromString("5.5")))
		assert.Equal(t, "DAI", state.Payment.Currency)
		assert.Equal(t, ownerAddress, state.Payment.Address)
		assert.Equal(t, "ethereum:0x6B175474E89094C44Da98b954EedeAC495271d0F@1/transfer?address="+ownerAddress+"&uint256=5500000000000000000", state.URI)
		assert.Equal(t, domain.OrderPending, state.Settlement)

		require.NotNil(t, stored)
		assert.Equal(t, state.OrderID, stored.ID)
		assert.Equal(t, "blue-cup", stored.BusinessID)
		assert.Equal(t, "5.5", stored.Checkout.Total.String())

		_, err = order.AddItem("espresso")
		assert.ErrorIs(t, err, workflow.ErrCartLocked)
		assert.Equal(t, 2, order.State().Items[0].Quantity)

		again, err := order.Submit(ctx)
		require.NoError(t, err)
		assert.Equal(t, state.OrderID, again.OrderID)
	})

	t.Run("store failure returns to browsing", func(t *testing.T) {
		orders := mocks.NewOrderStore(t)
		orders.On("CreateOrder", ctx, mock.Anything).Return(errors.New("db error")).Once()
		order := browsingOrder(t, orders, nil)
		addEspressos(t, order, 1)
		_, err := order.ChoosePaymentMethod(daiOnMainnet)
		require.NoError(t, err)

		state, err := order.Submit(ctx)

		assert.Error(t, err)
		assert.Equal(t, workflow.PhaseBrowsing, state.Phase)
		assert.False(t, state.Loading)
		assert.True(t, state.Warning.Show)
		assert.True(t, strings.HasPrefix(state.Warning.Message, "Failed to submit order"))
		assert.Empty(t, state.OrderID)
	})
}

// submitted returns a session whose order was stored.
func submitted(t *testing.T, orders *mocks.OrderStore, receipts *mocks.ReceiptFetcher) *workflow.Order {
	orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil).Once()
	order := browsingOrder(t, orders, receipts)
	addEspressos(t, order, 2)
	_, err := order.ChoosePaymentMethod(daiOnMainnet)
	require.NoError(t, err)
	_, err = order.Submit(context.Background())
	require.NoError(t, err)
	return order
}

func TestOrder_Unsubmit(t *testing.T) {
	t.Run("keeps the cart", func(t *testing.T) {
		order := submitted(t, mocks.NewOrderStore(t), nil)

		state := order.Unsubmit(false)

		assert.Equal(t, workflow.PhaseBrowsing, state.Phase)
		assert.False(t, state.ShowPayment)
		assert.Len(t, state.Items, 1)
		assert.NotEmpty(t, state.OrderID)
		assert.Equal(t, state, order.Unsubmit(false))
	})

	t.Run("clears the cart", func(t *testing.T) {
		order := submitted(t, mocks.NewOrderStore(t), nil)

		state := order.Unsubmit(true)

		assert.Equal(t, workflow.PhaseBrowsing, state.Phase)
		assert.Empty(t, state.Items)
		assert.Nil(t, state.PaymentMethod)
		assert.Nil(t, state.Payment)
		assert.Empty(t, state.OrderID)
		assert.True(t, state.Checkout().Total.IsZero())
	})
}

func TestOrder_ConfirmSettlement(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		receipt    *ethapi.TransactionReceipt
		wantStatus domain.OrderStatus
	}{
		{name: "mined and successful", receipt: &ethapi.TransactionReceipt{Status: "0x1", To: daiContract}, wantStatus: domain.OrderConfirmed},
		{name: "recipient compared without case", receipt: &ethapi.TransactionReceipt{Status: "0x1", To: strings.ToLower(daiContract)}, wantStatus: domain.OrderConfirmed},
		{name: "reverted", receipt: &ethapi.TransactionReceipt{Status: "0x0", To: daiContract}, wantStatus: domain.OrderFailed},
		{name: "not mined yet", receipt: nil, wantStatus: domain.OrderSubmitted},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			orders := mocks.NewOrderStore(t)
			receipts := mocks.NewReceiptFetcher(t)
			order := submitted(t, orders, receipts)
			id := order.State().OrderID

			receipts.On("TransactionReceipt", ctx, settlementHash, 1).Return(testCase.receipt, nil).Once()
			orders.On("UpdateOrderStatus", ctx, id, testCase.wantStatus, settlementHash).Return(nil).Once()

			state, err := order.ConfirmSettlement(ctx, settlementHash)

			require.NoError(t, err)
			assert.Equal(t, testCase.wantStatus, state.Settlement)
			assert.Equal(t, settlementHash, state.TxHash)
		})
	}

	wrongRecipients := []struct {
		name    string
		receipt *ethapi.TransactionReceipt
	}{
		{name: "sent to another contract", receipt: &ethapi.TransactionReceipt{Status: "0x1", To: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"}},
		{name: "sent straight to the business", receipt: &ethapi.TransactionReceipt{Status: "0x1", To: ownerAddress}},
		{name: "contract creation", receipt: &ethapi.TransactionReceipt{Status: "0x1"}},
	}

	for _, testCase := range wrongRecipients {
		t.Run(testCase.name, func(t *testing.T) {
			orders := mocks.NewOrderStore(t)
			receipts := mocks.NewReceiptFetcher(t)
			order := submitted(t, orders, receipts)
			receipts.On("TransactionReceipt", ctx, settlementHash, 1).Return(testCase.receipt, nil).Once()

			state, err := order.ConfirmSettlement(ctx, settlementHash)

			assert.ErrorIs(t, err, workflow.ErrWrongRecipient)
			assert.True(t, state.Warning.Show)
			assert.Equal(t, domain.OrderPending, state.Settlement)
			assert.Empty(t, state.TxHash)
			orders.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("native coin pays the business address", func(t *testing.T) {
		orders := mocks.NewOrderStore(t)
		receipts := mocks.NewReceiptFetcher(t)
		orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil).Once()
		order := browsingOrder(t, orders, receipts)
		addEspressos(t, order, 1)
		_, err := order.ChoosePaymentMethod(domain.PaymentMethod{Type: "wallet", ChainID: 1, Currency: "ETH"})
		require.NoError(t, err)
		_, err = order.Submit(ctx)
		require.NoError(t, err)
		id := order.State().OrderID

		receipts.On("TransactionReceipt", ctx, settlementHash, 1).Return(&ethapi.TransactionReceipt{Status: "0x1", To: ownerAddress}, nil).Once()
		orders.On("UpdateOrderStatus", ctx, id, domain.OrderConfirmed, settlementHash).Return(nil).Once()

		state, err := order.ConfirmSettlement(ctx, settlementHash)

		require.NoError(t, err)
		assert.Equal(t, domain.OrderConfirmed, state.Settlement)
	})

	t.Run("before submit", func(t *testing.T) {
		order := browsingOrder(t, nil, nil)

		_, err := order.ConfirmSettlement(ctx, settlementHash)

		assert.ErrorIs(t, err, workflow.ErrNotSubmitted)
	})

	t.Run("malformed hash", func(t *testing.T) {
		order := submitted(t, mocks.NewOrderStore(t), nil)

		_, err := order.ConfirmSettlement(ctx, "0xfeed")

		assert.ErrorIs(t, err, workflow.ErrInvalidTxHash)
	})

	t.Run("receipt lookup failure warns", func(t *testing.T) {
		receipts := mocks.NewReceiptFetcher(t)
		order := submitted(t, mocks.NewOrderStore(t), receipts)
		receipts.On("TransactionReceipt", ctx, settlementHash, 1).Return(nil, errors.New("rpc timeout")).Once()

		state, err := order.ConfirmSettlement(ctx, settlementHash)

		assert.Error(t, err)
		assert.True(t, state.Warning.Show)
		assert.Equal(t, domain.OrderPending, state.Settlement)
	})
}
