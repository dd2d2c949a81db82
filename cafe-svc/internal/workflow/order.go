package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"cafe-checkout/cafe-svc/internal/domain"
	"cafe-checkout/cafe-svc/internal/metrics"
	"cafe-checkout/cafe-svc/internal/utils"
)

var (
	ErrMenuNotLoaded            = errors.New("menu is not loaded")
	ErrUnknownMenuItem          = errors.New("item is not on the menu")
	ErrCartLocked               = errors.New("order is already submitted")
	ErrEmptyCart                = errors.New("cart is empty")
	ErrUnsupportedPaymentMethod = errors.New("payment method not supported")
	ErrNoPaymentAddress         = errors.New("business has no payment address")
	ErrNoPrice                  = errors.New("no price for payment asset")
	ErrNotSubmitted             = errors.New("order has not been submitted")
	ErrInvalidTxHash            = errors.New("invalid transaction hash")
	ErrWrongRecipient           = errors.New("transaction does not pay this order")
)

type Phase string

const (
	PhaseLoadingMenu     Phase = "loading-menu"
	PhaseBrowsing        Phase = "browsing"
	PhaseChoosingPayment Phase = "choosing-payment"
	PhaseSubmitting      Phase = "submitting"
	PhaseSubmitted       Phase = "submitted"
)

type Warning struct {
	Show    bool   `json:"show"`
	Message string `json:"message"`
}

// OrderState is one customer's checkout session. Totals are not part of it;
// call Checkout.
type OrderState struct {
	Phase              Phase                  `json:"phase"`
	Loading            bool                   `json:"loading"`
	BusinessID         string                 `json:"business_id"`
	Profile            domain.Profile         `json:"profile"`
	Settings           domain.Settings        `json:"settings"`
	Menu               []domain.MenuItem      `json:"menu"`
	Items              []domain.OrderItem     `json:"items"`
	PaymentMethod      *domain.PaymentMethod  `json:"payment_method"`
	ShowPaymentMethods bool                   `json:"show_payment_methods"`
	ShowPayment        bool                   `json:"show_payment"`
	Payment            *domain.PaymentRequest `json:"payment"`
	URI                string                 `json:"uri"`
	OrderID            string                 `json:"order_id"`
	Settlement         domain.OrderStatus     `json:"settlement"`
	TxHash             string                 `json:"tx_hash"`
	Warning            Warning                `json:"warning"`
}

func (s OrderState) Checkout() domain.Checkout {
	return domain.ComputeCheckout(s.Items, s.Settings)
}

func (s OrderState) locked() bool {
	return s.Phase == PhaseSubmitting || s.Phase == PhaseSubmitted
}

func InitialOrderState() OrderState {
	return OrderState{
		Phase:    PhaseLoadingMenu,
		Settings: domain.DefaultSettings(),
		Menu:     []domain.MenuItem{},
		Items:    []domain.OrderItem{},
	}
}

// OrderAction is one checkout transition. The set is closed: only the types
// in this file implement it.
type OrderAction interface {
	orderAction()
}

type (
	MenuRequest struct{ BusinessID string }
	MenuSuccess struct {
		Profile  domain.Profile
		Settings domain.Settings
		Menu     []domain.MenuItem
	}
	MenuFailure         struct{ Message string }
	ItemAdded           struct{ Item domain.MenuItem }
	ItemRemoved         struct{ ItemID string }
	PaymentMethodsShown struct{}
	PaymentMethodChosen struct{ Method domain.PaymentMethod }
	SubmitRequest       struct{}
	SubmitSuccess       struct {
		OrderID string
		Payment domain.PaymentRequest
		URI     string
	}
	SubmitFailure     struct{ Message string }
	Unsubmitted       struct{ ClearCart bool }
	SettlementUpdated struct {
		Status domain.OrderStatus
		TxHash string
	}
	WarningShown     struct{ Message string }
	WarningDismissed struct{}
)

func (MenuRequest) orderAction()         {}
func (MenuSuccess) orderAction()         {}
func (MenuFailure) orderAction()         {}
func (ItemAdded) orderAction()           {}
func (ItemRemoved) orderAction()         {}
func (PaymentMethodsShown) orderAction() {}
func (PaymentMethodChosen) orderAction() {}
func (SubmitRequest) orderAction()       {}
func (SubmitSuccess) orderAction()       {}
func (SubmitFailure) orderAction()       {}
func (Unsubmitted) orderAction()         {}
func (SettlementUpdated) orderAction()   {}
func (WarningShown) orderAction()        {}
func (WarningDismissed) orderAction()    {}

func reduceOrder(state OrderState, action OrderAction) OrderState {
	switch a := action.(type) {
	case MenuRequest:
		state.Phase = PhaseLoadingMenu
		state.Loading = true
		state.BusinessID = a.BusinessID
	case MenuSuccess:
		state.Phase = PhaseBrowsing
		state.Loading = false
		state.Profile = a.Profile
		state.Settings = a.Settings
		state.Menu = orEmpty(a.Menu)
	case MenuFailure:
		state.Loading = false
		state.Warning = Warning{Show: true, Message: a.Message}
	case ItemAdded:
		if !state.locked() {
			state.Items = domain.AddToCart(state.Items, a.Item)
		}
	case ItemRemoved:
		if !state.locked() {
			state.Items = domain.RemoveFromCart(state.Items, domain.MenuItem{ID: a.ItemID})
		}
	case PaymentMethodsShown:
		if !state.locked() {
			state.Phase = PhaseChoosingPayment
			state.ShowPaymentMethods = true
		}
	case PaymentMethodChosen:
		if !state.locked() {
			method := a.Method
			state.PaymentMethod = &method
			state.Phase = PhaseBrowsing
			state.ShowPaymentMethods = false
			state.ShowPayment = true
		}
	case SubmitRequest:
		state.Phase = PhaseSubmitting
		state.Loading = true
	case SubmitSuccess:
		payment := a.Payment
		state.Phase = PhaseSubmitted
		state.Loading = false
		state.OrderID = a.OrderID
		state.Payment = &payment
		state.URI = a.URI
		state.Settlement = domain.OrderPending
		state.TxHash = ""
	case SubmitFailure:
		state.Phase = PhaseBrowsing
		state.Loading = false
		state.Warning = Warning{Show: true, Message: a.Message}
	case Unsubmitted:
		if state.Phase == PhaseSubmitting || state.Phase == PhaseLoadingMenu {
			break
		}
		state.Phase = PhaseBrowsing
		state.ShowPayment = false
		state.ShowPaymentMethods = false
		if a.ClearCart {
			state.Items = []domain.OrderItem{}
			state.PaymentMethod = nil
			state.Payment = nil
			state.URI = ""
			state.OrderID = ""
			state.Settlement = ""
			state.TxHash = ""
		}
	case SettlementUpdated:
		state.Settlement = a.Status
		state.TxHash = a.TxHash
	case WarningShown:
		state.Warning = Warning{Show: true, Message: a.Message}
	case WarningDismissed:
		state.Warning = Warning{}
	}
	return state
}

// Order drives one customer's checkout: menu, cart, payment method,
// submission and settlement.
type Order struct {
	store      *Store[OrderState, OrderAction]
	businesses BusinessStore
	orders     OrderStore
	receipts   ReceiptFetcher
	prices     map[string]map[string]decimal.Decimal

	submitMu sync.Mutex
}

func NewOrder(businesses BusinessStore, orders OrderStore, receipts ReceiptFetcher) *Order {
	return &Order{
		store:      NewStore[OrderState, OrderAction](InitialOrderState(), reduceOrder),
		businesses: businesses,
		orders:     orders,
		receipts:   receipts,
		prices:     domain.AssetPrices,
	}
}

func (o *Order) State() OrderState {
	return o.store.State()
}

// LoadMenu fetches the business's profile, settings and menu. Failures end
// up in the session warning.
func (o *Order) LoadMenu(ctx context.Context, businessID string) OrderState {
	o.store.Dispatch(MenuRequest{BusinessID: businessID})
	data, menu, err := o.businesses.Lookup(ctx, businessID)
	if err == nil && data == nil {
		err = fmt.Errorf("business %s has no data", businessID)
	}
	if err != nil {
		o.fail("load menu", err)
		return o.store.Dispatch(MenuFailure{Message: fmt.Sprintf("Failed to load menu for %s", businessID)})
	}
	return o.store.Dispatch(MenuSuccess{Profile: data.Profile, Settings: data.Settings, Menu: menu})
}

func (o *Order) AddItem(itemID string) (OrderState, error) {
	state := o.store.State()
	if state.Phase == PhaseLoadingMenu {
		return state, ErrMenuNotLoaded
	}
	item, ok := domain.FindMenuItem(state.Menu, itemID)
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrUnknownMenuItem, itemID)
	}
	next := o.store.Dispatch(ItemAdded{Item: item})
	if next.locked() {
		return next, ErrCartLocked
	}
	return next, nil
}

// RemoveItem drops one unit of the item. Items not in the cart are ignored.
func (o *Order) RemoveItem(itemID string) (OrderState, error) {
	next := o.store.Dispatch(ItemRemoved{ItemID: itemID})
	if next.locked() {
		return next, ErrCartLocked
	}
	return next, nil
}

func (o *Order) ShowPaymentMethods() OrderState {
	return o.store.Dispatch(PaymentMethodsShown{})
}

// ChoosePaymentMethod records the asset the customer pays with. The asset
// must exist on the chosen chain and be accepted by the business.
func (o *Order) ChoosePaymentMethod(method domain.PaymentMethod) (OrderState, error) {
	state := o.store.State()
	if state.locked() {
		return state, ErrCartLocked
	}
	_, supported := domain.SupportedAssets[method.ChainID][method.Currency]
	accepted := len(state.Settings.PaymentMethods) == 0 || slices.Contains(state.Settings.PaymentMethods, method.Currency)
	if !supported || !accepted {
		next := o.store.Dispatch(WarningShown{Message: fmt.Sprintf("%s on chain %d is not accepted here", method.Currency, method.ChainID)})
		return next, ErrUnsupportedPaymentMethod
	}
	if method.Type == "" {
		method.Type = "wallet"
	}
	next := o.store.Dispatch(PaymentMethodChosen{Method: method})
	if next.PaymentMethod == nil || *next.PaymentMethod != method {
		return next, ErrCartLocked
	}
	return next, nil
}

// Submit turns the cart into a stored order with a payment request. Without
// a payment method it only opens the method selector.
func (o *Order) Submit(ctx context.Context) (OrderState, error) {
	o.submitMu.Lock()
	defer o.submitMu.Unlock()

	state := o.store.State()
	switch {
	case state.Phase == PhaseSubmitted:
		return state, nil
	case state.Phase == PhaseLoadingMenu:
		return state, ErrMenuNotLoaded
	case state.PaymentMethod == nil:
		return o.store.Dispatch(PaymentMethodsShown{}), nil
	case len(state.Items) == 0:
		return o.store.Dispatch(WarningShown{Message: "Your cart is empty"}), ErrEmptyCart
	}

	state = o.store.Dispatch(SubmitRequest{})
	order, err := o.buildOrder(state)
	if err == nil {
		err = o.orders.CreateOrder(ctx, &order)
	}
	if err != nil {
		o.fail("submit", err)
		return o.store.Dispatch(SubmitFailure{Message: "Failed to submit order: " + err.Error()}), err
	}

	log.WithFields(log.Fields{"order": order.ID, "business": order.BusinessID}).Info("order submitted")
	return o.store.Dispatch(SubmitSuccess{OrderID: order.ID, Payment: *order.Payment, URI: order.URI}), nil
}

func (o *Order) buildOrder(state OrderState) (domain.Order, error) {
	method := *state.PaymentMethod
	asset, ok := domain.SupportedAssets[method.ChainID][method.Currency]
	if !ok {
		return domain.Order{}, ErrUnsupportedPaymentMethod
	}
	if state.Settings.PaymentAddress == "" {
		return domain.Order{}, ErrNoPaymentAddress
	}

	checkout := state.Checkout()
	price, ok := o.prices[checkout.Currency][asset.Symbol]
	if !ok || !price.IsPositive() {
		return domain.Order{}, fmt.Errorf("%w: %s in %s", ErrNoPrice, asset.Symbol, checkout.Currency)
	}

	payment := domain.PaymentRequest{
		Amount:   checkout.Total.DivRound(price, asset.Decimals),
		Address:  state.Settings.PaymentAddress,
		Currency: asset.Symbol,
		ChainID:  method.ChainID,
	}
	return domain.Order{
		ID:            utils.UUID(),
		BusinessID:    state.BusinessID,
		Items:         state.Items,
		Checkout:      checkout,
		PaymentMethod: method,
		Payment:       &payment,
		URI:           utils.PaymentURI(payment, asset),
		Status:        domain.OrderPending,
	}, nil
}

// Unsubmit returns to browsing. The cart, payment and order id are only
// discarded when clearCart is set.
func (o *Order) Unsubmit(clearCart bool) OrderState {
	return o.store.Dispatch(Unsubmitted{ClearCart: clearCart})
}

// ConfirmSettlement checks the payment transaction and records the outcome
// on the stored order. A transaction that is not mined yet leaves the order
// submitted.
func (o *Order) ConfirmSettlement(ctx context.Context, txHash string) (OrderState, error) {
	state := o.store.State()
	if state.OrderID == "" || state.Payment == nil {
		return state, ErrNotSubmitted
	}
	if !utils.IsHexString(txHash) || len(utils.RemoveHexPrefix(txHash)) != 64 {
		return state, fmt.Errorf("%w: %s", ErrInvalidTxHash, txHash)
	}

	receipt, err := o.receipts.TransactionReceipt(ctx, txHash, state.Payment.ChainID)
	if err != nil {
		o.fail("confirm settlement", err)
		return o.store.Dispatch(WarningShown{Message: "Could not check the payment transaction"}), err
	}

	status := domain.OrderSubmitted
	if receipt != nil {
		if want := paymentRecipient(*state.Payment); want == "" || !strings.EqualFold(receipt.To, want) {
			log.WithFields(log.Fields{"order": state.OrderID, "tx": txHash, "to": receipt.To, "want": want}).
				Warn("settlement transaction sent elsewhere")
			return o.store.Dispatch(WarningShown{Message: "That transaction does not pay this order"}),
				fmt.Errorf("%w: %s", ErrWrongRecipient, txHash)
		}
		status = domain.OrderFailed
		if receipt.Succeeded() {
			status = domain.OrderConfirmed
		}
	}
	if err := o.orders.UpdateOrderStatus(ctx, state.OrderID, status, txHash); err != nil {
		o.fail("confirm settlement", err)
		return state, err
	}
	return o.store.Dispatch(SettlementUpdated{Status: status, TxHash: txHash}), nil
}

// paymentRecipient is the address a settling transaction must be sent to:
// the payee for a native coin, the token contract otherwise. It is empty
// when the asset is unknown.
func paymentRecipient(payment domain.PaymentRequest) string {
	asset, ok := domain.SupportedAssets[payment.ChainID][payment.Currency]
	if !ok {
		return ""
	}
	if asset.IsNative() {
		return payment.Address
	}
	return asset.ContractAddress
}

func (o *Order) DismissWarning() OrderState {
	return o.store.Dispatch(WarningDismissed{})
}

func (o *Order) fail(action string, err error) {
	log.WithFields(log.Fields{"workflow": "order", "action": action}).Error(err)
	metrics.WorkflowFailures.WithLabelValues("order", action).Inc()
}
