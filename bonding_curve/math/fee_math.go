package math

import "errors"

const (
	// MaxBasisPoint is the bps denominator: 10_000 bps = 100%.
	MaxBasisPoint = 10_000
	// MaxFeeBasisPoint caps the platform fee at 10%.
	MaxFeeBasisPoint = 1_000
)

var ErrInvalidFeeBps = errors.New("fee basis points exceed maximum")

// SplitFee splits a gross lamport amount into the fee retained by the
// platform and the net amount that continues through the trade:
//
//	fee = floor(gross * feeBps / 10_000)
//	net = gross - fee
//
// The fee rounds down, so fee + net == gross exactly. The fee is always taken
// on the SOL side of a trade, never on token quantities.
func SplitFee(gross uint64, feeBps uint16) (net, fee uint64, err error) {
	if feeBps > MaxFeeBasisPoint {
		return 0, 0, ErrInvalidFeeBps
	}
	fee, err = MulDiv(gross, uint64(feeBps), MaxBasisPoint)
	if err != nil {
		return 0, 0, err
	}
	net, err = Sub(gross, fee)
	if err != nil {
		return 0, 0, err
	}
	return net, fee, nil
}
