package wallet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// Caller is the subset of an rpc.Client the provider needs.
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// RPCProvider exposes a wallet/node JSON-RPC endpoint as a workflow provider.
type RPCProvider struct {
	caller Caller
}

func NewRPCProvider(caller Caller) *RPCProvider {
	return &RPCProvider{caller: caller}
}

// Dial connects to the JSON-RPC endpoint at rawURL.
func Dial(ctx context.Context, rawURL string) (*RPCProvider, func(), error) {
	client, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("wallet: dial %s: %w", rawURL, err)
	}
	return NewRPCProvider(client), client.Close, nil
}

func (p *RPCProvider) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.caller.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("wallet: eth_accounts: %w", err)
	}
	return accounts, nil
}

func (p *RPCProvider) Send(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := p.caller.CallContext(ctx, &result, method, params...); err != nil {
		return nil, fmt.Errorf("wallet: %s: %w", method, err)
	}
	return result, nil
}
