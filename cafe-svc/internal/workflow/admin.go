package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"cafe-checkout/cafe-svc/internal/domain"
	"cafe-checkout/cafe-svc/internal/metrics"
	"cafe-checkout/cafe-svc/internal/utils"
)

var (
	ErrNoAccounts          = errors.New("wallet exposes no accounts")
	ErrNotConnected        = errors.New("wallet is not connected")
	ErrInvalidTaxRate      = errors.New("tax rate must be numeric")
	ErrInvalidAddress      = errors.New("invalid payment address")
	ErrUnsupportedCurrency = errors.New("unsupported native currency")
	ErrInvalidMenuItem     = errors.New("menu item needs a name and a non-negative price")
	ErrMissingName         = errors.New("business name is required")
)

type ConnectionStatus string

const (
	Disconnected ConnectionStatus = "disconnected"
	Connecting   ConnectionStatus = "connecting"
	Connected    ConnectionStatus = "connected"
)

type RequestState string

const (
	RequestIdle    RequestState = "idle"
	RequestPending RequestState = "pending"
	RequestSuccess RequestState = "success"
	RequestFailure RequestState = "failure"
)

const (
	RouteHome   = "/"
	RouteSignup = "/signup"
	RouteAdmin  = "/admin"
)

type AdminState struct {
	Status          ConnectionStatus  `json:"status"`
	Loading         bool              `json:"loading"`
	Address         string            `json:"address"`
	ChainID         int               `json:"chain_id"`
	Profile         domain.Profile    `json:"profile"`
	Settings        domain.Settings   `json:"settings"`
	Menu            []domain.MenuItem `json:"menu"`
	MenuVersion     uint64            `json:"-"`
	Orders          []domain.Order    `json:"orders"`
	Balance         decimal.Decimal   `json:"available_balance"`
	BalanceCurrency string            `json:"balance_currency"`
	ShowAuth        bool              `json:"show_auth"`
	Route           string            `json:"route"`
	GetOrders       RequestState      `json:"get_orders"`
	SubmitSignup    RequestState      `json:"submit_signup"`
	SaveData        RequestState      `json:"save_data"`
	GetBalance      RequestState      `json:"get_balance"`
}

func InitialAdminState() AdminState {
	return AdminState{
		Status:       Disconnected,
		ChainID:      1,
		Profile:      domain.DefaultProfile,
		Settings:     domain.DefaultSettings(),
		Menu:         []domain.MenuItem{},
		Orders:       []domain.Order{},
		Route:        RouteHome,
		GetOrders:    RequestIdle,
		SubmitSignup: RequestIdle,
		SaveData:     RequestIdle,
		GetBalance:   RequestIdle,
	}
}

// ProfilePatch carries the profile fields to overwrite. Nil fields are kept.
type ProfilePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Logo        *string `json:"logo"`
	Email       *string `json:"email"`
	Type        *string `json:"type"`
	Country     *string `json:"country"`
	Phone       *string `json:"phone"`
}

// SettingsPatch carries the settings fields to overwrite. Nil fields are kept.
type SettingsPatch struct {
	TaxRate        *string  `json:"tax_rate"`
	TaxDisplay     *bool    `json:"tax_display"`
	PaymentAddress *string  `json:"payment_address"`
	NativeCurrency *string  `json:"native_currency"`
	PaymentMethods []string `json:"payment_methods"`
}

// AdminAction is one admin transition. The set is closed: only the types in
// this file implement it.
type AdminAction interface {
	adminAction()
}

// ConnectSuccess carries everything loaded for the connected address. A nil
// Data means the address has no business yet.
type ConnectSuccess struct {
	Address string
	ChainID int
	Data    *domain.BusinessData
	Menu    []domain.MenuItem
	Orders  []domain.Order
}

type (
	AuthRequested       struct{}
	ConnectRequest      struct{}
	ConnectFailure      struct{}
	GetOrdersRequest    struct{}
	GetOrdersSuccess    struct{ Orders []domain.Order }
	GetOrdersFailure    struct{}
	SubmitSignupRequest struct{}
	SubmitSignupSuccess struct{ PaymentAddress string }
	SubmitSignupFailure struct{}
	SaveDataRequest     struct{}
	SaveDataSuccess     struct{}
	SaveDataFailure     struct{}
	BalanceRequest      struct{ Currency string }
	BalanceSuccess      struct{ Balance decimal.Decimal }
	BalanceFailure      struct{}
	ProfileUpdated      struct{ Patch ProfilePatch }
	SettingsUpdated     struct{ Patch SettingsPatch }
	MenuItemAdded       struct{ Item domain.MenuItem }
	MenuItemRemoved     struct{ ItemID string }
	RouteChanged        struct{ Route string }
	StateCleared        struct{}
)

func (AuthRequested) adminAction()       {}
func (ConnectRequest) adminAction()      {}
func (ConnectSuccess) adminAction()      {}
func (ConnectFailure) adminAction()      {}
func (GetOrdersRequest) adminAction()    {}
func (GetOrdersSuccess) adminAction()    {}
func (GetOrdersFailure) adminAction()    {}
func (SubmitSignupRequest) adminAction() {}
func (SubmitSignupSuccess) adminAction() {}
func (SubmitSignupFailure) adminAction() {}
func (SaveDataRequest) adminAction()     {}
func (SaveDataSuccess) adminAction()     {}
func (SaveDataFailure) adminAction()     {}
func (BalanceRequest) adminAction()      {}
func (BalanceSuccess) adminAction()      {}
func (BalanceFailure) adminAction()      {}
func (ProfileUpdated) adminAction()      {}
func (SettingsUpdated) adminAction()     {}
func (MenuItemAdded) adminAction()       {}
func (MenuItemRemoved) adminAction()     {}
func (RouteChanged) adminAction()        {}
func (StateCleared) adminAction()        {}

func reduceAdmin(state AdminState, action AdminAction) AdminState {
	switch a := action.(type) {
	case AuthRequested:
		state.ShowAuth = true
	case ConnectRequest:
		state.Status = Connecting
		state.Loading = true
		state.ShowAuth = false
	case ConnectSuccess:
		state.Status = Connected
		state.Loading = false
		state.Address = a.Address
		state.ChainID = a.ChainID
		state.Orders = orEmpty(a.Orders)
		if a.Data != nil {
			state.Profile = a.Data.Profile
			state.Settings = a.Data.Settings
			state.Menu = orEmpty(a.Menu)
			if state.Route == RouteHome || state.Route == RouteSignup {
				state.Route = RouteAdmin
			}
		} else {
			state.Route = RouteSignup
		}
	case ConnectFailure:
		state.Status = Disconnected
		state.Loading = false
	case GetOrdersRequest:
		state.Loading = true
		state.GetOrders = RequestPending
	case GetOrdersSuccess:
		state.Loading = false
		state.GetOrders = RequestSuccess
		state.Orders = orEmpty(a.Orders)
	case GetOrdersFailure:
		state.Loading = false
		state.GetOrders = RequestFailure
	case SubmitSignupRequest:
		state.Loading = true
		state.SubmitSignup = RequestPending
	case SubmitSignupSuccess:
		state.Loading = false
		state.SubmitSignup = RequestSuccess
		state.Settings.PaymentAddress = a.PaymentAddress
		state.Route = RouteAdmin
	case SubmitSignupFailure:
		state.Loading = false
		state.SubmitSignup = RequestFailure
	case SaveDataRequest:
		state.SaveData = RequestPending
	case SaveDataSuccess:
		state.SaveData = RequestSuccess
	case SaveDataFailure:
		state.SaveData = RequestFailure
	case BalanceRequest:
		state.GetBalance = RequestPending
		state.BalanceCurrency = a.Currency
	case BalanceSuccess:
		state.GetBalance = RequestSuccess
		state.Balance = a.Balance
	case BalanceFailure:
		state.GetBalance = RequestFailure
	case ProfileUpdated:
		state.Profile = mergeProfile(state.Profile, a.Patch)
	case SettingsUpdated:
		state.Settings = mergeSettings(state.Settings, a.Patch)
	case MenuItemAdded:
		state.Menu = domain.AddToMenu(state.Menu, a.Item)
		state.MenuVersion++
	case MenuItemRemoved:
		state.Menu = domain.RemoveFromMenu(state.Menu, domain.MenuItem{ID: a.ItemID})
		state.MenuVersion++
	case RouteChanged:
		state.Route = a.Route
	case StateCleared:
		version := state.MenuVersion
		state = InitialAdminState()
		state.MenuVersion = version
	}
	return state
}

func mergeProfile(profile domain.Profile, patch ProfilePatch) domain.Profile {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&profile.Name, patch.Name)
	set(&profile.Description, patch.Description)
	set(&profile.Logo, patch.Logo)
	set(&profile.Email, patch.Email)
	set(&profile.Type, patch.Type)
	set(&profile.Country, patch.Country)
	set(&profile.Phone, patch.Phone)
	profile.ID = domain.ItemID(profile.Name)
	return profile
}

// mergeSettings drops a tax rate that does not parse and keeps the rest of
// the patch.
func mergeSettings(settings domain.Settings, patch SettingsPatch) domain.Settings {
	if patch.TaxRate != nil {
		if rate, err := decimal.NewFromString(strings.TrimSpace(*patch.TaxRate)); err == nil {
			settings.TaxRate = rate
		}
	}
	if patch.TaxDisplay != nil {
		settings.TaxDisplay = *patch.TaxDisplay
	}
	if patch.PaymentAddress != nil {
		settings.PaymentAddress = *patch.PaymentAddress
	}
	if patch.NativeCurrency != nil {
		settings.NativeCurrency = *patch.NativeCurrency
	}
	if patch.PaymentMethods != nil {
		settings.PaymentMethods = append([]string(nil), patch.PaymentMethods...)
	}
	return settings
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Admin drives the business owner's dashboard: wallet connection, profile,
// settings and menu editing, signup and order history.
type Admin struct {
	store      *Store[AdminState, AdminAction]
	businesses BusinessStore
	orders     OrderStore
	balances   BalanceService
	notifier   Notifier

	background sync.WaitGroup
	persistMu  sync.Mutex
	savedMenu  uint64
}

func NewAdmin(businesses BusinessStore, orders OrderStore, balances BalanceService, notifier Notifier) *Admin {
	return &Admin{
		store:      NewStore[AdminState, AdminAction](InitialAdminState(), reduceAdmin),
		businesses: businesses,
		orders:     orders,
		balances:   balances,
		notifier:   notifier,
	}
}

func (a *Admin) State() AdminState {
	return a.store.State()
}

// RequestAuthentication asks the owner to pick a wallet.
func (a *Admin) RequestAuthentication() AdminState {
	return a.store.Dispatch(AuthRequested{})
}

func (a *Admin) Navigate(route string) AdminState {
	return a.store.Dispatch(RouteChanged{Route: route})
}

// Connect opens the business record owned by the provider's first account.
// On failure profile, settings and menu are left as they were.
func (a *Admin) Connect(ctx context.Context, provider Provider) error {
	a.store.Dispatch(ConnectRequest{})
	success, err := a.open(ctx, provider)
	if err != nil {
		a.fail("connect", err)
		a.store.Dispatch(ConnectFailure{})
		return err
	}
	a.store.Dispatch(success)
	log.WithFields(log.Fields{"address": success.Address, "chain": success.ChainID}).Info("wallet connected")
	return nil
}

func (a *Admin) open(ctx context.Context, provider Provider) (ConnectSuccess, error) {
	accounts, err := provider.Accounts(ctx)
	if err != nil {
		return ConnectSuccess{}, err
	}
	if len(accounts) == 0 {
		return ConnectSuccess{}, ErrNoAccounts
	}
	address := accounts[0]

	chainID, err := utils.QueryChainID(ctx, provider)
	if err != nil {
		return ConnectSuccess{}, err
	}

	data, menu, err := a.businesses.Open(ctx, address)
	if err != nil {
		return ConnectSuccess{}, fmt.Errorf("open business box: %w", err)
	}

	success := ConnectSuccess{Address: address, ChainID: chainID, Data: data, Menu: menu}
	if data != nil {
		orders, err := a.orders.ListOrders(ctx, data.Profile.ID)
		if err != nil {
			return ConnectSuccess{}, fmt.Errorf("list orders: %w", err)
		}
		success.Orders = orders
	}
	return success, nil
}

// UpdateProfile merges patch into the profile and saves it in the background.
// A rename is saved before returning, so a taken id reaches the caller.
func (a *Admin) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	if patch.Country != nil {
		if _, err := utils.CountryName(*patch.Country); err != nil {
			return err
		}
	}
	a.store.Dispatch(ProfileUpdated{Patch: patch})
	if patch.Name != nil {
		// a new name means a new public id, which must be claimed before
		// the caller hears back.
		return a.SaveData(ctx)
	}
	a.saveInBackground(ctx)
	return nil
}

// UpdateSettings merges patch into the settings and saves them in the
// background. A non-numeric tax rate rejects the whole patch.
func (a *Admin) UpdateSettings(ctx context.Context, patch SettingsPatch) error {
	if patch.TaxRate != nil {
		if _, err := decimal.NewFromString(strings.TrimSpace(*patch.TaxRate)); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTaxRate, *patch.TaxRate)
		}
	}
	if patch.PaymentAddress != nil && *patch.PaymentAddress != "" && !utils.IsAddress(*patch.PaymentAddress) {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, *patch.PaymentAddress)
	}
	if patch.NativeCurrency != nil {
		if _, ok := utils.NativeCurrency(*patch.NativeCurrency); !ok {
			return fmt.Errorf("%w: %s", ErrUnsupportedCurrency, *patch.NativeCurrency)
		}
	}
	a.store.Dispatch(SettingsUpdated{Patch: patch})
	a.saveInBackground(ctx)
	return nil
}

// SaveData writes the current profile and settings. It does nothing until a
// wallet is connected. A failure does not undo the edits that preceded it.
func (a *Admin) SaveData(ctx context.Context) error {
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	state := a.store.State()
	if state.Status != Connected {
		return nil
	}
	a.store.Dispatch(SaveDataRequest{})
	data := domain.BusinessData{Profile: state.Profile, Settings: state.Settings}
	if err := a.businesses.SetData(ctx, state.Address, data); err != nil {
		a.fail("save data", err)
		a.store.Dispatch(SaveDataFailure{})
		return err
	}
	a.store.Dispatch(SaveDataSuccess{})
	return nil
}

func (a *Admin) AddMenuItem(ctx context.Context, item domain.MenuItem) error {
	item = item.Normalize()
	if item.ID == "" || item.Price.IsNegative() {
		return ErrInvalidMenuItem
	}
	a.store.Dispatch(MenuItemAdded{Item: item})
	a.saveMenuInBackground(ctx)
	return nil
}

func (a *Admin) RemoveMenuItem(ctx context.Context, itemID string) {
	a.store.Dispatch(MenuItemRemoved{ItemID: itemID})
	a.saveMenuInBackground(ctx)
}

// SubmitSignup stores the new business with the connected address as its
// payment address, then routes to the dashboard.
func (a *Admin) SubmitSignup(ctx context.Context) error {
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	state := a.store.State()
	if state.Status != Connected {
		return ErrNotConnected
	}
	if strings.TrimSpace(state.Profile.Name) == "" {
		return ErrMissingName
	}

	a.store.Dispatch(SubmitSignupRequest{})
	settings := state.Settings
	settings.PaymentAddress = state.Address
	if err := a.businesses.SetData(ctx, state.Address, domain.BusinessData{Profile: state.Profile, Settings: settings}); err != nil {
		a.fail("submit signup", err)
		a.store.Dispatch(SubmitSignupFailure{})
		return err
	}
	a.store.Dispatch(SubmitSignupSuccess{PaymentAddress: state.Address})
	return nil
}

// GetAllOrders refreshes the order history. It does nothing until a wallet
// is connected.
func (a *Admin) GetAllOrders(ctx context.Context) error {
	state := a.store.State()
	if state.Status != Connected {
		return nil
	}
	a.store.Dispatch(GetOrdersRequest{})
	orders, err := a.orders.ListOrders(ctx, state.Profile.ID)
	if err != nil {
		a.fail("get orders", err)
		a.store.Dispatch(GetOrdersFailure{})
		return err
	}
	a.store.Dispatch(GetOrdersSuccess{Orders: orders})
	return nil
}

// RefreshBalance values everything the connected address holds in the
// business's native currency.
func (a *Admin) RefreshBalance(ctx context.Context) error {
	state := a.store.State()
	if state.Status != Connected {
		return ErrNotConnected
	}
	currency := state.Settings.NativeCurrency
	if currency == "" {
		currency = "USD"
	}
	a.store.Dispatch(BalanceRequest{Currency: currency})
	balance, err := a.balances.AvailableBalance(ctx, state.Address, currency)
	if err != nil {
		a.fail("get balance", err)
		a.store.Dispatch(BalanceFailure{})
		return err
	}
	a.store.Dispatch(BalanceSuccess{Balance: balance})
	return nil
}

func (a *Admin) ClearState() AdminState {
	return a.store.Dispatch(StateCleared{})
}

// Flush waits for background saves to finish.
func (a *Admin) Flush() {
	a.background.Wait()
}

func (a *Admin) saveInBackground(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	a.background.Add(1)
	go func() {
		defer a.background.Done()
		_ = a.SaveData(ctx)
	}()
}

// saveMenuInBackground writes the menu as it is when the write runs, so the
// last write always carries the newest menu. Writes for versions already
// stored are skipped.
func (a *Admin) saveMenuInBackground(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	a.background.Add(1)
	go func() {
		defer a.background.Done()
		a.persistMu.Lock()
		defer a.persistMu.Unlock()

		state := a.store.State()
		if state.Status != Connected || state.MenuVersion <= a.savedMenu {
			return
		}
		if err := a.businesses.SetMenu(ctx, state.Address, state.Menu); err != nil {
			a.fail("save menu", err)
			return
		}
		a.savedMenu = state.MenuVersion
	}()
}

func (a *Admin) fail(action string, err error) {
	log.WithFields(log.Fields{"workflow": "admin", "action": action}).Error(err)
	metrics.WorkflowFailures.WithLabelValues("admin", action).Inc()
	if a.notifier != nil {
		a.notifier.Notify(err.Error(), true)
	}
}
