package math

import "errors"

var (
	ErrZeroAmount           = errors.New("amount must be greater than 0")
	ErrInsufficientReserves = errors.New("insufficient token reserves")
)

// TokensOut computes the token amount a buyer receives for solIn lamports
// against the current virtual reserves:
//
//	tokens_out = floor(virtual_token_reserves * sol_in / (virtual_sol_reserves + sol_in))
//
// Truncation toward zero favors the curve over the trader. The denominator is
// formed with checked u64 addition, so adversarial inputs fail with
// ErrOverflow instead of wrapping.
func TokensOut(virtualSolReserves, virtualTokenReserves, solIn uint64) (uint64, error) {
	if solIn == 0 {
		return 0, ErrZeroAmount
	}
	denominator, err := Add(virtualSolReserves, solIn)
	if err != nil {
		return 0, err
	}
	tokensOut, err := MulDiv(virtualTokenReserves, solIn, denominator)
	if err != nil {
		return 0, err
	}
	if tokensOut >= virtualTokenReserves {
		return 0, ErrInsufficientReserves
	}
	return tokensOut, nil
}

// SolOut computes the lamports a seller receives for tokensIn:
//
//	sol_out = floor(virtual_sol_reserves * tokens_in / (virtual_token_reserves + tokens_in))
//
// Same constant-product integral as TokensOut with the reserve sides swapped.
func SolOut(virtualTokenReserves, virtualSolReserves, tokensIn uint64) (uint64, error) {
	if tokensIn == 0 {
		return 0, ErrZeroAmount
	}
	denominator, err := Add(virtualTokenReserves, tokensIn)
	if err != nil {
		return 0, err
	}
	solOut, err := MulDiv(virtualSolReserves, tokensIn, denominator)
	if err != nil {
		return 0, err
	}
	if solOut >= virtualSolReserves {
		return 0, ErrInsufficientReserves
	}
	return solOut, nil
}
