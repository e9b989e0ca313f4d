package staking

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// PriceTable maps token addresses to a price in the quote unit (e.g. USD).
type PriceTable map[common.Address]float64

// Lookup returns the price of token or an ErrMissingPrice error. It never defaults to zero.
func (p PriceTable) Lookup(token common.Address) (float64, error) {
	price, ok := p[token]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingPrice, token.Hex())
	}
	return price, nil
}
