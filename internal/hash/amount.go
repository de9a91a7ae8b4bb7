package hash

import (
	"errors"
	"math/big"
	"strconv"
)

var ErrBadAmount = errors.New("invalid amount format")

// ParseAmount converts a decimal amount string to minor units. Fractions
// beyond two digits are truncated.
func ParseAmount(value string) (int64, error) {
	r := new(big.Rat)
	if _, ok := r.SetString(value); !ok {
		return 0, ErrBadAmount
	}

	r.Mul(r, big.NewRat(100, 1))
	i := new(big.Int)
	i.Div(r.Num(), r.Denom())

	if !i.IsInt64() {
		return 0, ErrBadAmount
	}
	return i.Int64(), nil
}

// FormatAmount renders minor units with exactly two fraction digits, the
// only form the digest protocol accepts. "100" and "100.00" hash to
// different values, so every hashed amount goes through here.
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	intPart := minor / 100
	decPart := minor % 100
	return sign + strconv.FormatInt(intPart, 10) + "." + twoDigits(int(decPart))
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
