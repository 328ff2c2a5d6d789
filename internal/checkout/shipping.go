package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ShippingTable maps a shipping method to its fixed price.
type ShippingTable map[string]decimal.Decimal

func (t ShippingTable) Price(method string) (decimal.Decimal, error) {
	p, ok := t[method]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown shipping method %q", method)
	}
	return p, nil
}
