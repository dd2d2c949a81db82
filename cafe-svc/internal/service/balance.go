package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cafe-checkout/cafe-svc/internal/domain"
	"cafe-checkout/cafe-svc/internal/metrics"
	"cafe-checkout/cafe-svc/internal/utils"
)

var (
	ErrEmptyAddress = errors.New("address must not be empty")
	ErrNoPrices     = errors.New("no asset prices for currency")
)

// Aggregator values every supported asset held by an address and sums the
// valuations into one available balance.
type Aggregator struct {
	API    BalanceAPI
	Cache  BalanceCache
	Assets map[int]map[string]domain.Asset
	Prices map[string]map[string]decimal.Decimal
}

func NewAggregator(api BalanceAPI, cache BalanceCache) *Aggregator {
	return &Aggregator{
		API:    api,
		Cache:  cache,
		Assets: domain.SupportedAssets,
		Prices: domain.AssetPrices,
	}
}

// AvailableBalance queries all assets concurrently and returns their total
// value in currency. A single failed query fails the whole aggregation.
func (a *Aggregator) AvailableBalance(ctx context.Context, address, currency string) (decimal.Decimal, error) {
	if strings.TrimSpace(address) == "" {
		return decimal.Zero, ErrEmptyAddress
	}
	prices, ok := a.Prices[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w %s", ErrNoPrices, currency)
	}

	start := time.Now()
	var cacheKey string
	if a.Cache != nil {
		cacheKey = a.Cache.BalanceKey(address, currency)
		cached, found, err := a.Cache.GetBalance(ctx, cacheKey)
		if err != nil {
			log.Warnf("balance cache read %s: %v", cacheKey, err)
		} else if found {
			metrics.BalanceAggregation.WithLabelValues(currency, "cache").Observe(time.Since(start).Seconds())
			return cached, nil
		}
	}

	assets := a.assetList()
	for _, asset := range assets {
		if _, ok := prices[asset.Symbol]; !ok {
			return decimal.Zero, fmt.Errorf("%w %s: missing %s", ErrNoPrices, currency, asset.Symbol)
		}
	}

	values := make([]decimal.Decimal, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range assets {
		g.Go(func() error {
			value, err := a.assetValue(gctx, address, asset, prices[asset.Symbol])
			if err != nil {
				return err
			}
			values[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithFields(log.Fields{"address": address, "currency": currency}).Errorf("aggregate balance: %v", err)
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, value := range values {
		total = total.Add(value)
	}
	total = total.Round(displayPlaces(currency))

	if a.Cache != nil {
		if err := a.Cache.SetBalance(ctx, cacheKey, total); err != nil {
			log.Warnf("balance cache write %s: %v", cacheKey, err)
		}
	}
	metrics.BalanceAggregation.WithLabelValues(currency, "api").Observe(time.Since(start).Seconds())
	return total, nil
}

func (a *Aggregator) assetValue(ctx context.Context, address string, asset domain.Asset, price decimal.Decimal) (decimal.Decimal, error) {
	kind := "account"
	query := func() (decimal.Decimal, int32, error) {
		res, err := a.API.AccountBalance(ctx, address, asset.ChainID)
		if err != nil {
			return decimal.Zero, 0, err
		}
		return parseBalance(res.Balance, int32(res.Decimals))
	}
	if !asset.IsNative() {
		kind = "token"
		query = func() (decimal.Decimal, int32, error) {
			res, err := a.API.TokenBalance(ctx, address, asset.ChainID, asset.ContractAddress)
			if err != nil {
				return decimal.Zero, 0, err
			}
			return parseBalance(res.Balance, int32(res.Decimals))
		}
	}

	raw, decimals, err := query()
	if err != nil {
		metrics.BalanceQueries.WithLabelValues(kind, "error").Inc()
		return decimal.Zero, fmt.Errorf("%s balance of %s on chain %d: %w", kind, asset.Symbol, asset.ChainID, err)
	}
	metrics.BalanceQueries.WithLabelValues(kind, "ok").Inc()

	if raw.IsZero() {
		return decimal.Zero, nil
	}
	if decimals == 0 {
		decimals = asset.Decimals
	}
	return utils.FromRawAmount(raw, decimals).Mul(price), nil
}

// assetList flattens the asset table in a fixed chain/symbol order.
func (a *Aggregator) assetList() []domain.Asset {
	chainIDs := make([]int, 0, len(a.Assets))
	for chainID := range a.Assets {
		chainIDs = append(chainIDs, chainID)
	}
	sort.Ints(chainIDs)

	var assets []domain.Asset
	for _, chainID := range chainIDs {
		symbols := make([]string, 0, len(a.Assets[chainID]))
		for symbol := range a.Assets[chainID] {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		for _, symbol := range symbols {
			asset := a.Assets[chainID][symbol]
			if asset.ChainID == 0 {
				asset.ChainID = chainID
			}
			assets = append(assets, asset)
		}
	}
	return assets
}

func parseBalance(balance string, decimals int32) (decimal.Decimal, int32, error) {
	raw, err := utils.ParseRawAmount(balance)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return decimal.NewFromBigInt(raw, 0), decimals, nil
}

func displayPlaces(currency string) int32 {
	if native, ok := utils.NativeCurrency(currency); ok {
		return native.Decimals
	}
	return 2
}
