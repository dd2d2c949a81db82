package domain

import "github.com/shopspring/decimal"

type Alignment string

const (
	AlignLeft  Alignment = "left"
	AlignRight Alignment = "right"
)

// NativeCurrency is a unit valuations are displayed in.
type NativeCurrency struct {
	Symbol     string          `json:"symbol"`
	Currency   string          `json:"currency"`
	Decimals   int32           `json:"decimals"`
	Alignment  Alignment       `json:"alignment"`
	AssetLimit decimal.Decimal `json:"asset_limit"`
}

var NativeCurrencies = map[string]NativeCurrency{
	"USD": {Symbol: "$", Currency: "USD", Decimals: 2, Alignment: AlignLeft, AssetLimit: decimal.NewFromInt(1)},
	"GBP": {Symbol: "£", Currency: "GBP", Decimals: 2, Alignment: AlignLeft, AssetLimit: decimal.NewFromInt(1)},
	"EUR": {Symbol: "€", Currency: "EUR", Decimals: 2, Alignment: AlignLeft, AssetLimit: decimal.NewFromInt(1)},
	"BTC": {Symbol: "₿", Currency: "BTC", Decimals: 8, Alignment: AlignRight, AssetLimit: decimal.RequireFromString("0.0001")},
	"ETH": {Symbol: "Ξ", Currency: "ETH", Decimals: 8, Alignment: AlignRight, AssetLimit: decimal.RequireFromString("0.001")},
}

type Asset struct {
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	Decimals        int32  `json:"decimals"`
	ContractAddress string `json:"contract_address,omitempty"`
	ChainID         int    `json:"chain_id"`
}

// IsNative reports whether the asset is the chain's own coin.
func (a Asset) IsNative() bool {
	return a.ContractAddress == ""
}

type Chain struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Chain     string `json:"chain"`
	Network   string `json:"network"`
	ChainID   int    `json:"chain_id"`
	NetworkID int    `json:"network_id"`
	RPCURL    string `json:"rpc_url"`
	Native    Asset  `json:"native_currency"`
}

var SupportedChains = []Chain{
	{
		Name: "Ethereum Mainnet", ShortName: "eth", Chain: "ETH", Network: "mainnet",
		ChainID: 1, NetworkID: 1, RPCURL: "https://mainnet.infura.io/v3/%API_KEY%",
		Native: Asset{Symbol: "ETH", Name: "Ether", Decimals: 18, ChainID: 1},
	},
	{
		Name: "Ethereum Ropsten", ShortName: "rop", Chain: "ETH", Network: "ropsten",
		ChainID: 3, NetworkID: 3, RPCURL: "https://ropsten.infura.io/v3/%API_KEY%",
		Native: Asset{Symbol: "ETH", Name: "Ether", Decimals: 18, ChainID: 3},
	},
	{
		Name: "Ethereum Kovan", ShortName: "kov", Chain: "ETH", Network: "kovan",
		ChainID: 42, NetworkID: 42, RPCURL: "https://kovan.infura.io/v3/%API_KEY%",
		Native: Asset{Symbol: "ETH", Name: "Ether", Decimals: 18, ChainID: 42},
	},
	{
		Name: "Ethereum Classic Mainnet", ShortName: "etc", Chain: "ETC", Network: "mainnet",
		ChainID: 61, NetworkID: 1, RPCURL: "https://ethereumclassic.network",
		Native: Asset{Symbol: "ETC", Name: "Ether Classic", Decimals: 18, ChainID: 61},
	},
	{
		Name: "xDAI Chain", ShortName: "xdai", Chain: "POA", Network: "dai",
		ChainID: 100, NetworkID: 100, RPCURL: "https://dai.poa.network",
		Native: Asset{Symbol: "xDAI", Name: "xDAI", Decimals: 18, ChainID: 100},
	},
}

// SupportedAssets lists, per chain id, the assets whose balances are
// tracked, keyed by symbol.
var SupportedAssets = map[int]map[string]Asset{
	1: {
		"ETH": {Symbol: "ETH", Name: "Ether", Decimals: 18, ChainID: 1},
		"DAI": {Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18, ChainID: 1,
			ContractAddress: "0x6B175474E89094C44Da98b954EedeAC495271d0F"},
		"USDC": {Symbol: "USDC", Name: "USD Coin", Decimals: 6, ChainID: 1,
			ContractAddress: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
	},
	100: {
		"xDAI": {Symbol: "xDAI", Name: "xDAI", Decimals: 18, ChainID: 100},
	},
}

// AssetPrices holds, per native currency, the price of one unit of each
// supported asset.
var AssetPrices = map[string]map[string]decimal.Decimal{
	"USD": {
		"ETH":  decimal.RequireFromString("180.00"),
		"DAI":  decimal.RequireFromString("1.00"),
		"USDC": decimal.RequireFromString("1.00"),
		"xDAI": decimal.RequireFromString("1.00"),
	},
	"GBP": {
		"ETH":  decimal.RequireFromString("145.00"),
		"DAI":  decimal.RequireFromString("0.81"),
		"USDC": decimal.RequireFromString("0.81"),
		"xDAI": decimal.RequireFromString("0.81"),
	},
	"EUR": {
		"ETH":  decimal.RequireFromString("162.00"),
		"DAI":  decimal.RequireFromString("0.90"),
		"USDC": decimal.RequireFromString("0.90"),
		"xDAI": decimal.RequireFromString("0.90"),
	},
	"BTC": {
		"ETH":  decimal.RequireFromString("0.0185"),
		"DAI":  decimal.RequireFromString("0.000103"),
		"USDC": decimal.RequireFromString("0.000103"),
		"xDAI": decimal.RequireFromString("0.000103"),
	},
	"ETH": {
		"ETH":  decimal.NewFromInt(1),
		"DAI":  decimal.RequireFromString("0.00556"),
		"USDC": decimal.RequireFromString("0.00556"),
		"xDAI": decimal.RequireFromString("0.00556"),
	},
}

type BusinessType struct {
	Type        string `json:"type"`
	DisplayType string `json:"display_type"`
}

var BusinessTypes = []BusinessType{
	{Type: "cafe", DisplayType: "Café"},
	{Type: "bar", DisplayType: "Bar"},
	{Type: "fast_food", DisplayType: "Fast-Food"},
	{Type: "bistro", DisplayType: "Bistro"},
	{Type: "restaurant", DisplayType: "Restaurant"},
	{Type: "bakery", DisplayType: "Bakery"},
	{Type: "food_truck", DisplayType: "Food Truck"},
	{Type: "other", DisplayType: "Other"},
}

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var Countries = []Country{
	{Code: "AU", Name: "Australia"},
	{Code: "BR", Name: "Brazil"},
	{Code: "CA", Name: "Canada"},
	{Code: "CH", Name: "Switzerland"},
	{Code: "DE", Name: "Germany"},
	{Code: "ES", Name: "Spain"},
	{Code: "FR", Name: "France"},
	{Code: "GB", Name: "United Kingdom"},
	{Code: "IE", Name: "Ireland"},
	{Code: "IT", Name: "Italy"},
	{Code: "JP", Name: "Japan"},
	{Code: "NL", Name: "Netherlands"},
	{Code: "PT", Name: "Portugal"},
	{Code: "US", Name: "United States"},
}

var DefaultProfile = Profile{Type: "cafe"}

func DefaultSettings() Settings {
	return Settings{
		TaxRate:        decimal.Zero,
		TaxDisplay:     true,
		NativeCurrency: "USD",
		PaymentMethods: []string{"ETH", "DAI", "xDAI"},
	}
}
