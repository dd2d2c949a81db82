package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"cafe-checkout/cafe-svc/internal/domain"
)

var ErrUnsupportedChain = errors.New("chainId missing or not supported")

// RPCSender is the part of a wallet provider needed to query the network.
type RPCSender interface {
	Send(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

func IsHexString(value string) bool {
	if !strings.HasPrefix(value, "0x") && !strings.HasPrefix(value, "0X") {
		return false
	}
	for _, c := range value[2:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

func AddHexPrefix(hex string) string {
	if strings.HasPrefix(strings.ToLower(hex), "0x") {
		return hex
	}
	return "0x" + hex
}

func RemoveHexPrefix(hex string) string {
	if strings.HasPrefix(strings.ToLower(hex), "0x") {
		return hex[2:]
	}
	return hex
}

// SanitizeHex pads hex to an even number of digits and prefixes it.
func SanitizeHex(hex string) string {
	hex = RemoveHexPrefix(hex)
	if len(hex)%2 != 0 {
		hex = "0" + hex
	}
	if hex == "" {
		return hex
	}
	return AddHexPrefix(hex)
}

// ConvertHexToNumber parses a hex quantity, returning 0 for anything that
// is not one.
func ConvertHexToNumber(hex string) uint64 {
	n, ok := math.ParseUint64(SanitizeHex(hex))
	if !ok {
		return 0
	}
	return n
}

// ParseRawAmount parses an integer amount given either in decimal or as a
// 0x-prefixed hex quantity.
func ParseRawAmount(raw string) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return new(big.Int), nil
	}
	n, ok := math.ParseBig256(raw)
	if !ok {
		return nil, fmt.Errorf("invalid raw amount %q", raw)
	}
	return n, nil
}

func IsAddress(address string) bool {
	return common.IsHexAddress(address)
}

func ChainData(chainID int) (domain.Chain, error) {
	for _, chain := range domain.SupportedChains {
		if chain.ChainID == chainID {
			return chain, nil
		}
	}
	return domain.Chain{}, ErrUnsupportedChain
}

func ChainIDFromNetworkID(networkID int) (int, bool) {
	for _, chain := range domain.SupportedChains {
		if chain.NetworkID == networkID {
			return chain.ChainID, true
		}
	}
	return 0, false
}

// QueryChainID asks the provider for eth_chainId and falls back to
// net_version when the provider does not report one.
func QueryChainID(ctx context.Context, provider RPCSender) (int, error) {
	res, err := provider.Send(ctx, "eth_chainId")
	if err != nil {
		return 0, fmt.Errorf("eth_chainId: %w", err)
	}
	if chainID := ConvertHexToNumber(rawString(res)); chainID != 0 {
		return int(chainID), nil
	}

	res, err = provider.Send(ctx, "net_version")
	if err != nil {
		return 0, fmt.Errorf("net_version: %w", err)
	}
	networkID, err := strconv.Atoi(rawString(res))
	if err != nil || networkID == 0 {
		return 0, ErrUnsupportedChain
	}
	chainID, ok := ChainIDFromNetworkID(networkID)
	if !ok {
		return 0, ErrUnsupportedChain
	}
	return chainID, nil
}

// rawString unwraps a JSON string or number result into its text.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
