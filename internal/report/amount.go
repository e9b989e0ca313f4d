package report

import "math/big"

// formatTokenAmount scales a raw amount by decimals and prints every fractional digit.
func formatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(new(big.Int).Abs(value), denom)
	text := rat.FloatString(int(decimals))
	if value.Sign() < 0 {
		return "-" + text
	}
	return text
}
