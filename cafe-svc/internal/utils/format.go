package utils

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cafe-checkout/cafe-svc/internal/domain"
)

var ErrUnsupportedCountry = errors.New("country missing or not supported")

func Capitalize(s string) string {
	words := strings.Split(s, " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

// EllipseText shortens text to at most maxLength characters on a word
// boundary, appending "...".
func EllipseText(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	limit := maxLength - 3
	current := 0
	kept := make([]string, 0)
	for _, word := range strings.Split(text, " ") {
		current += len(word)
		if current >= limit {
			break
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ") + "..."
}

func PadLeft(s string, length int, pad string) string {
	if pad == "" {
		pad = "0"
	}
	if len(s) >= length {
		return s
	}
	return strings.Repeat(pad, length-len(s)) + s
}

func PadRight(s string, length int, pad string) string {
	if pad == "" {
		pad = "0"
	}
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(pad, length-len(s))
}

// DataString builds call data from a function selector and 32-byte words.
func DataString(selector string, words []string) string {
	var b strings.Builder
	b.WriteString(selector)
	for _, word := range words {
		b.WriteString(PadLeft(RemoveHexPrefix(word), 64, "0"))
	}
	return b.String()
}

// PayloadID returns a JSON-RPC request id: milliseconds since epoch scaled by
// a thousand plus a random suffix.
func PayloadID() int64 {
	return time.Now().UnixMilli()*1000 + rand.Int63n(1000)
}

func UUID() string {
	return uuid.New().String()
}

func NativeCurrency(symbol string) (domain.NativeCurrency, bool) {
	currency, ok := domain.NativeCurrencies[symbol]
	return currency, ok
}

// FormatDisplayAmount renders amount in the given native currency. Unknown
// currencies fall back to two decimals without a symbol.
func FormatDisplayAmount(amount decimal.Decimal, symbol string) string {
	currency, ok := NativeCurrency(symbol)
	if !ok {
		return amount.StringFixed(2)
	}
	fixed := amount.StringFixed(currency.Decimals)
	if currency.Alignment == domain.AlignLeft {
		return currency.Symbol + " " + fixed
	}
	return fixed + " " + currency.Symbol
}

// CountryName resolves an ISO country code. A blank code yields an empty
// name; an unknown one is an error.
func CountryName(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}
	for _, country := range domain.Countries {
		if country.Code == code {
			return country.Name, nil
		}
	}
	return "", ErrUnsupportedCountry
}

// AppVersion turns a semantic version into the major_minor form used in
// asset paths; from 1.0 on the minor part is replaced by "x".
func AppVersion(version string) string {
	if version == "" {
		version = "0.0.1"
	}
	parts := strings.Split(version, ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	if len(parts) == 2 {
		if major, err := decimal.NewFromString(parts[0]); err == nil && major.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			parts[1] = "x"
		}
	}
	return strings.Join(parts, "_")
}
