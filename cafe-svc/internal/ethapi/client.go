package ethapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cafe-checkout/cafe-svc/internal/utils"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ethapi: %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}

// Decimals accepts both JSON numbers and numeric strings.
type Decimals int32

func (d *Decimals) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return fmt.Errorf("ethapi: decimals %q: %w", s, err)
	}
	*d = Decimals(n)
	return nil
}

type AssetData struct {
	Symbol          string   `json:"symbol"`
	Name            string   `json:"name"`
	Decimals        Decimals `json:"decimals"`
	ContractAddress string   `json:"contractAddress"`
	Balance         string   `json:"balance"`
}

type GasPrice struct {
	Time  float64 `json:"time"`
	Price float64 `json:"price"`
}

type GasPrices struct {
	Timestamp float64  `json:"timestamp"`
	Slow      GasPrice `json:"slow"`
	Average   GasPrice `json:"average"`
	Fast      GasPrice `json:"fast"`
}

type TransactionReceipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     string `json:"blockNumber"`
	Status          string `json:"status"`
	From            string `json:"from"`
	To              string `json:"to"`
}

// Succeeded reports whether the receipt carries a success status.
func (r TransactionReceipt) Succeeded() bool {
	return utils.ConvertHexToNumber(r.Status) == 1
}

type rpcRequest struct {
	ID      int64  `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// Client talks to the hosted balance, gas and price API.
type Client struct {
	baseURL string
	client  HTTPClient
}

func NewClient(baseURL string, client HTTPClient) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *Client) AccountNonce(ctx context.Context, address string) (uint64, error) {
	var nonce uint64
	err := c.get(ctx, "/account-nonce", url.Values{
		"address": {address},
		"chainId": {"1"},
	}, &nonce)
	return nonce, err
}

func (c *Client) GasPrices(ctx context.Context) (GasPrices, error) {
	var prices GasPrices
	err := c.get(ctx, "/gas-prices", nil, &prices)
	return prices, err
}

func (c *Client) GasLimit(ctx context.Context, contractAddress, data string, chainID int) (uint64, error) {
	var limit uint64
	err := c.get(ctx, "/gas-limit", url.Values{
		"contractAddress": {contractAddress},
		"data":            {data},
		"chainId":         {strconv.Itoa(chainID)},
	}, &limit)
	return limit, err
}

func (c *Client) AccountBalance(ctx context.Context, address string, chainID int) (AssetData, error) {
	var asset AssetData
	err := c.get(ctx, "/account-balance", url.Values{
		"address": {address},
		"chainId": {strconv.Itoa(chainID)},
	}, &asset)
	return asset, err
}

func (c *Client) TokenBalance(ctx context.Context, address string, chainID int, contractAddress string) (AssetData, error) {
	var asset AssetData
	err := c.get(ctx, "/token-balance", url.Values{
		"address":         {address},
		"chainId":         {strconv.Itoa(chainID)},
		"contractAddress": {contractAddress},
	}, &asset)
	return asset, err
}

// CustomRequest forwards a JSON-RPC call to the node behind the API and
// decodes its result into out.
func (c *Client) CustomRequest(ctx context.Context, chainID int, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{
		ID:      utils.PayloadID(),
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}
	path := "/custom-request?" + url.Values{"chainId": {strconv.Itoa(chainID)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return c.do(req, "/custom-request", out)
}

func (c *Client) TransactionByHash(ctx context.Context, txHash string, chainID int) (json.RawMessage, error) {
	var tx json.RawMessage
	err := c.CustomRequest(ctx, chainID, "eth_getTransactionByHash", []any{txHash}, &tx)
	return tx, err
}

// TransactionReceipt returns nil without error while the transaction is not
// mined yet.
func (c *Client) TransactionReceipt(ctx context.Context, txHash string, chainID int) (*TransactionReceipt, error) {
	var receipt *TransactionReceipt
	if err := c.CustomRequest(ctx, chainID, "eth_getTransactionReceipt", []any{txHash}, &receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ethapi: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(body))}
	}

	envelope := struct {
		Result json.RawMessage `json:"result"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("ethapi: decode %s: %w", path, err)
	}
	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("ethapi: decode %s result: %w", path, err)
	}
	return nil
}
