package math

import (
	"errors"

	"lukechampine.com/uint128"
)

var (
	ErrOverflow       = errors.New("SafeMath: overflow")
	ErrUnderflow      = errors.New("SafeMath: underflow")
	ErrDivisionByZero = errors.New("SafeMath: division by zero")
)

// Add returns a+b, failing on u64 overflow.
func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b, failing on underflow.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// Mul returns a*b, failing if the product does not fit a u64.
func Mul(a, b uint64) (uint64, error) {
	prod := uint128.From64(a).Mul64(b)
	if prod.Hi != 0 {
		return 0, ErrOverflow
	}
	return prod.Lo, nil
}

// Div returns a/b truncated toward zero.
func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// MulDiv returns floor(a*b/denominator), carrying the intermediate product in
// 128 bits so a*b may exceed the u64 range. The quotient is narrowed back with
// an explicit range check.
func MulDiv(a, b, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, ErrDivisionByZero
	}
	quot := uint128.From64(a).Mul64(b).Div64(denominator)
	if quot.Hi != 0 {
		return 0, ErrOverflow
	}
	return quot.Lo, nil
}
