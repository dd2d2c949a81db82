package utils

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cafe-checkout/cafe-svc/internal/domain"
)

// ToRawAmount converts an amount in asset units into its integer base units.
func ToRawAmount(amount decimal.Decimal, decimals int32) decimal.Decimal {
	return amount.Shift(decimals).Truncate(0)
}

// FromRawAmount converts integer base units into asset units.
func FromRawAmount(raw decimal.Decimal, decimals int32) decimal.Decimal {
	return raw.Shift(-decimals)
}

// PaymentURI encodes a payment request as an EIP-681 URI so wallets can
// prefill the transfer.
func PaymentURI(req domain.PaymentRequest, asset domain.Asset) string {
	raw := ToRawAmount(req.Amount, asset.Decimals).String()
	if asset.IsNative() {
		return fmt.Sprintf("ethereum:%s@%d?value=%s", req.Address, req.ChainID, raw)
	}
	return fmt.Sprintf("ethereum:%s@%d/transfer?address=%s&uint256=%s",
		asset.ContractAddress, req.ChainID, req.Address, raw)
}
