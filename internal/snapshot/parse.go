package snapshot

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"stakerScope/internal/staking"
)

// ParseAddress converts a hex string into common.Address.
func ParseAddress(field, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", field, input)
	}
	return common.HexToAddress(input), nil
}

// ParseAddresses converts string addresses into common.Address, skipping blanks.
func ParseAddresses(field string, inputs []string) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input) == "" {
			continue
		}
		addr, err := ParseAddress(field, input)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

// parseAmount parses a non-negative decimal integer. An empty string is zero.
func parseAmount(field, value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("%s: invalid int %q", field, value)
	}
	if parsed.Sign() < 0 {
		return nil, fmt.Errorf("%s: negative amount %s", field, value)
	}
	return parsed, nil
}

func parsePrice(field, value string) (float64, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid price %q: %w", field, value, err)
	}
	if price.IsNegative() {
		return 0, fmt.Errorf("%s: negative price %s", field, value)
	}
	f := price.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%s: price %s overflows float64", field, value)
	}
	return f, nil
}

func parseTokenID(field, value string) (staking.TokenID, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid token id %q", field, value)
	}
	return staking.TokenID(id), nil
}
