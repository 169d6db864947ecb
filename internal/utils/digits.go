package utils

import (
	"math/big"
	"strings"
)

// Digits strips every non-digit character.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// NumericValue is the integer formed by the digits of s; strings without digits count as zero.
// Arbitrary length is supported since invoice numbers can exceed int64.
func NumericValue(s string) *big.Int {
	n, ok := new(big.Int).SetString(Digits(s), 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

