package workflow

import (
	"github.com/shopspring/decimal"

	"cafe-checkout/cafe-svc/internal/domain"
)

func testItem(name, price string) domain.MenuItem {
	return domain.MenuItem{Name: name, Price: decimal.RequireFromString(price)}
}
