package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"cafe-checkout/cafe-svc/internal/domain"
	"cafe-checkout/cafe-svc/internal/service"
	"cafe-checkout/cafe-svc/internal/storage"
	"cafe-checkout/cafe-svc/internal/utils"
	"cafe-checkout/cafe-svc/internal/workflow"
)

type SalesReader interface {
	TopItems(ctx context.Context, businessID string, limit int) ([]domain.ItemSales, error)
}

// ImagePinner stores uploaded images and resolves their public URL.
type ImagePinner interface {
	PinFile(ctx context.Context, filename string, content io.Reader) (string, error)
	FileURL(hash string) string
}

// Dialer opens a wallet provider. The returned func releases it.
type Dialer func(ctx context.Context, url string) (workflow.Provider, func(), error)

type Handler struct {
	Balances service.BalanceServiceInterface
	Orders   service.OrderServiceInterface
	Sales    SalesReader
	Admin    *workflow.Admin
	Sessions *Sessions

	Images    ImagePinner
	Inbox     *workflow.Inbox
	Dial      Dialer
	WalletURL string

	// AdminToken is the bearer token the /api/admin routes require.
	AdminToken string
}

func NewHandler(balances service.BalanceServiceInterface, orders service.OrderServiceInterface, sales SalesReader, admin *workflow.Admin, sessions *Sessions) *Handler {
	return &Handler{
		Balances: balances,
		Orders:   orders,
		Sales:    sales,
		Admin:    admin,
		Sessions: sessions,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/api/reference", h.getReference).Methods("GET")
	r.HandleFunc("/api/balances/{address}", h.getBalance).Methods("GET")
	r.HandleFunc("/api/currencies/{symbol}/format", h.formatAmount).Methods("GET")

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(h.requireAdmin)
	admin.HandleFunc("", h.getAdmin).Methods("GET")
	admin.HandleFunc("", h.clearAdmin).Methods("DELETE")
	admin.HandleFunc("/auth", h.requestAuth).Methods("POST")
	admin.HandleFunc("/connect", h.connect).Methods("POST")
	admin.HandleFunc("/route", h.navigate).Methods("PUT")
	admin.HandleFunc("/profile", h.updateProfile).Methods("PATCH")
	admin.HandleFunc("/settings", h.updateSettings).Methods("PATCH")
	admin.HandleFunc("/save", h.saveData).Methods("POST")
	admin.HandleFunc("/signup", h.submitSignup).Methods("POST")
	admin.HandleFunc("/orders", h.getAdminOrders).Methods("GET")
	admin.HandleFunc("/menu", h.addMenuItem).Methods("POST")
	admin.HandleFunc("/menu/{itemId}", h.removeMenuItem).Methods("DELETE")
	admin.HandleFunc("/balance", h.refreshBalance).Methods("POST")
	admin.HandleFunc("/images", h.uploadImage).Methods("POST")
	admin.HandleFunc("/notifications", h.getNotifications).Methods("GET")

	r.HandleFunc("/api/sessions", h.createSession).Methods("POST")
	r.HandleFunc("/api/sessions/{id}", h.getSession).Methods("GET")
	r.HandleFunc("/api/sessions/{id}", h.deleteSession).Methods("DELETE")
	r.HandleFunc("/api/sessions/{id}/items", h.addItem).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/items/{itemId}", h.removeItem).Methods("DELETE")
	r.HandleFunc("/api/sessions/{id}/payment-methods", h.showPaymentMethods).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/payment-method", h.choosePaymentMethod).Methods("PUT")
	r.HandleFunc("/api/sessions/{id}/submit", h.submit).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/unsubmit", h.unsubmit).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/settle", h.settle).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/warning", h.dismissWarning).Methods("DELETE")

	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")
	r.HandleFunc("/api/businesses/{id}/top-items", h.getTopItems).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "cafe-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) getReference(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chains":         domain.SupportedChains,
		"assets":         domain.SupportedAssets,
		"currencies":     domain.NativeCurrencies,
		"business_types": domain.BusinessTypes,
		"countries":      domain.Countries,
	})
}

type balanceResponse struct {
	Address  string          `json:"address"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Display  string          `json:"display"`
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	currency := strings.ToUpper(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = "USD"
	}
	balance, err := h.Balances.AvailableBalance(r.Context(), address, currency)
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		Address:  address,
		Currency: currency,
		Balance:  balance,
		Display:  utils.FormatDisplayAmount(balance, currency),
	})
}

func (h *Handler) formatAmount(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		http.Error(w, "amount must be numeric", http.StatusBadRequest)
		return
	}
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	writeJSON(w, http.StatusOK, map[string]string{"display": utils.FormatDisplayAmount(amount, symbol)})
}

func (h *Handler) getAdmin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Admin.State())
}

func (h *Handler) clearAdmin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Admin.ClearState())
}

func (h *Handler) requestAuth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Admin.RequestAuthentication())
}

// requireAdmin rejects requests that do not carry the configured admin
// bearer token. With no token configured the admin routes stay closed.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.AdminToken == "" {
			http.Error(w, "admin access is not configured", http.StatusServiceUnavailable)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.AdminToken)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// connect always dials the configured wallet endpoint; the request body is
// ignored.
func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	if h.Dial == nil || h.WalletURL == "" {
		http.Error(w, "no wallet provider configured", http.StatusServiceUnavailable)
		return
	}

	provider, release, err := h.Dial(r.Context(), h.WalletURL)
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	defer release()

	if err := h.Admin.Connect(r.Context(), provider); err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, h.Admin.State())
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Route string `json:"route"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	switch req.Route {
	case workflow.RouteHome, workflow.RouteSignup, workflow.RouteAdmin:
	default:
		http.Error(w, "unknown route", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.Admin.Navigate(req.Route))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch workflow.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Admin.UpdateProfile(r.Context(), patch); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.Admin.State())
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var patch workflow.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Admin.UpdateSettings(r.Context(), patch); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.Admin.State())
}

func (h *Handler) saveData(w http.ResponseWriter, r *http.Request) {
	if err := h.Admin.SaveData(r.Context()); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.Admin.State())
}

func (h *Handler) submitSignup(w http.ResponseWriter, r *http.Request) {
	if err := h.Admin.SubmitSignup(r.Context()); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.Admin.State())
}

func (h *Handler) getAdminOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.Admin.GetAllOrders(r.Context()); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.Admin.State().Orders)
}

func (h *Handler) addMenuItem(w http.ResponseWriter, r *http.Request) {
	var item domain.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Admin.AddMenuItem(r.Context(), item); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.Admin.State().Menu)
}

func (h *Handler) removeMenuItem(w http.ResponseWriter, r *http.Request) {
	h.Admin.RemoveMenuItem(r.Context(), mux.Vars(r)["itemId"])
	writeJSON(w, http.StatusOK, h.Admin.State().Menu)
}

func (h *Handler) refreshBalance(w http.ResponseWriter, r *http.Request) {
	if err := h.Admin.RefreshBalance(r.Context()); err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	state := h.Admin.State()
	writeJSON(w, http.StatusOK, balanceResponse{
		Address:  state.Address,
		Currency: state.BalanceCurrency,
		Balance:  state.Balance,
		Display:  utils.FormatDisplayAmount(state.Balance, state.BalanceCurrency),
	})
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if h.Images == nil {
		http.Error(w, "image pinning is not configured", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Error retrieving file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	hash, err := h.Images.PinFile(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hash": hash, "image_url": h.Images.FileURL(hash)})
}

func (h *Handler) getNotifications(w http.ResponseWriter, r *http.Request) {
	if h.Inbox == nil {
		writeJSON(w, http.StatusOK, []workflow.Notification{})
		return
	}
	writeJSON(w, http.StatusOK, h.Inbox.Drain())
}

type sessionResponse struct {
	ID       string              `json:"id"`
	State    workflow.OrderState `json:"state"`
	Checkout domain.Checkout     `json:"checkout"`
}

func newSessionResponse(id string, state workflow.OrderState) sessionResponse {
	return sessionResponse{ID: id, State: state, Checkout: state.Checkout()}
}

// session resolves the {id} route variable, answering 404 itself when the
// session is unknown.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, *workflow.Order, bool) {
	id := mux.Vars(r)["id"]
	order, ok := h.Sessions.Get(id)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return id, nil, false
	}
	return id, order, true
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BusinessID string `json:"business_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.BusinessID) == "" {
		http.Error(w, "business_id is required", http.StatusBadRequest)
		return
	}
	id, order := h.Sessions.Create()
	state := order.LoadMenu(r.Context(), req.BusinessID)
	writeJSON(w, http.StatusCreated, newSessionResponse(id, state))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	id, order, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, order.State()))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.Sessions.Delete(mux.Vars(r)["id"]) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	id, order, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondSession(w, id)(order.AddItem(req.ItemID))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, order, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondSession(w, id)(order.RemoveItem(mux.Vars(r)["itemId"]))
}

func (h *Handler) showPaymentMethods(w http.ResponseWriter, r *http.Request) {
	id, order, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, order.ShowPaymentMethods()))
}

func (h *Handler) choosePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, order, ok := h.session(w, r)
	if !ok {
		return
	}
	var method domain.PaymentMethod
	if err := json.NewDecoder(r.Body).Decode(&method); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondSession(w, id)(order.ChoosePaymentMethod(method))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	id, order, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondSession(w, id)(order.Submit(r.Context()))
}

func (h *Handler) unsubmit(w http.ResponseWriter, r *http.Request) {
	id, order, ok := h.session(w, r)
	if !ok {
		return
	}
	clearCart, _ := strconv.ParseBool(r.URL.Query().Get("clear"))
	writeJSON(w, http.StatusOK, newSessionResponse(id, order.Unsubmit(clearCart)))
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	id, order, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		TxHash string `json:"tx_hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondSession(w, id)(order.ConfirmSettlement(r.Context(), req.TxHash))
}

func (h *Handler) dismissWarning(w http.ResponseWriter, r *http.Request) {
	id, order, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, order.DismissWarning()))
}

// respondSession writes the session state, or the mapped error when the
// operation failed.
func (h *Handler) respondSession(w http.ResponseWriter, id string) func(workflow.OrderState, error) {
	return func(state workflow.OrderState, err error) {
		if err != nil {
			writeError(w, err, http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(id, state))
	}
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	qrCode, err := h.Orders.QRCode(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(qrCode)
}

const (
	defaultTopItems = 10
	maxTopItems     = 100
)

func (h *Handler) getTopItems(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultTopItems
	}
	if limit > maxTopItems {
		limit = maxTopItems
	}
	top, err := h.Sales.TopItems(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var (
	badRequest = []error{
		service.ErrEmptyAddress, service.ErrNoPrices, utils.ErrUnsupportedCountry,
		workflow.ErrInvalidTaxRate, workflow.ErrInvalidAddress, workflow.ErrUnsupportedCurrency,
		workflow.ErrInvalidMenuItem, workflow.ErrMissingName, workflow.ErrMenuNotLoaded,
		workflow.ErrUnknownMenuItem, workflow.ErrEmptyCart, workflow.ErrUnsupportedPaymentMethod,
		workflow.ErrNoPaymentAddress, workflow.ErrNoPrice, workflow.ErrInvalidTxHash, workflow.ErrWrongRecipient,
	}
	notFound = []error{storage.ErrOrderNotFound, storage.ErrBusinessNotFound, service.ErrNoPaymentURI}
	conflict = []error{
		workflow.ErrNotConnected, workflow.ErrCartLocked, workflow.ErrNotSubmitted, workflow.ErrNoAccounts,
		storage.ErrBusinessIDTaken,
	}
)

// writeError maps known errors to their status and everything else to
// fallback.
func writeError(w http.ResponseWriter, err error, fallback int) {
	status := fallback
	switch {
	case isAny(err, badRequest):
		status = http.StatusBadRequest
	case isAny(err, notFound):
		status = http.StatusNotFound
	case isAny(err, conflict):
		status = http.StatusConflict
	}
	if status >= http.StatusInternalServerError {
		log.WithField("status", status).Error(err)
	}
	http.Error(w, err.Error(), status)
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
