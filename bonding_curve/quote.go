package bonding_curve

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	curvemath "github.com/launchlab/bondingcurve-go/bonding_curve/math"
)

// QuoteService prices prospective trades without mutating any state. Quotes
// use the same formulas as execution, so a quote taken against an unchanged
// curve matches the executed trade bit for bit.
type QuoteService struct {
	*engine
}

// BuyQuote prices a buy of solIn lamports. slippageBps widens the minimum
// acceptable output the caller should pass to Buy.
func (s *QuoteService) BuyQuote(ctx context.Context, mint solana.PublicKey, solIn uint64, slippageBps uint16) (*Quote, error) {
	cfg, curve, err := s.snapshot(ctx, mint)
	if err != nil {
		return nil, err
	}
	netIn, fee, err := curvemath.SplitFee(solIn, cfg.FeeBasisPoints)
	if err != nil {
		return nil, err
	}
	tokensOut, err := curvemath.TokensOut(curve.VirtualSolReserves, curve.VirtualTokenReserves, netIn)
	if err != nil {
		return nil, mapPricingErr(err)
	}
	return &Quote{
		Direction:    TradeDirectionBuy,
		AmountIn:     solIn,
		AmountOut:    tokensOut,
		Fee:          fee,
		MinAmountOut: applySlippage(tokensOut, slippageBps),
	}, nil
}

// SellQuote prices a sell of tokensIn tokens, net of fee.
func (s *QuoteService) SellQuote(ctx context.Context, mint solana.PublicKey, tokensIn uint64, slippageBps uint16) (*Quote, error) {
	cfg, curve, err := s.snapshot(ctx, mint)
	if err != nil {
		return nil, err
	}
	grossOut, err := curvemath.SolOut(curve.VirtualTokenReserves, curve.VirtualSolReserves, tokensIn)
	if err != nil {
		return nil, mapPricingErr(err)
	}
	netOut, fee, err := curvemath.SplitFee(grossOut, cfg.FeeBasisPoints)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Direction:    TradeDirectionSell,
		AmountIn:     tokensIn,
		AmountOut:    netOut,
		Fee:          fee,
		MinAmountOut: applySlippage(netOut, slippageBps),
	}, nil
}

// SpotPrice returns the current SOL price of one whole token, derived from
// the virtual reserve ratio adjusted for the decimal difference between the
// two sides.
func (s *QuoteService) SpotPrice(ctx context.Context, mint solana.PublicKey) (decimal.Decimal, error) {
	_, curve, err := s.snapshot(ctx, mint)
	if err != nil {
		return decimal.Zero, err
	}
	sol := decimal.NewFromUint64(curve.VirtualSolReserves).Shift(-SolDecimals)
	tokens := decimal.NewFromUint64(curve.VirtualTokenReserves).Shift(-TokenDecimals)
	if tokens.IsZero() {
		return decimal.Zero, ErrInvalidReserves
	}
	return sol.DivRound(tokens, 18), nil
}

// Progress reports how far the curve is toward graduation, in percent,
// capped at 100.
func (s *QuoteService) Progress(ctx context.Context, mint solana.PublicKey) (decimal.Decimal, error) {
	cfg, curve, err := s.snapshot(ctx, mint)
	if err != nil {
		return decimal.Zero, err
	}
	if curve.CompletionState != CompletionStateActive {
		return decimal.NewFromInt(100), nil
	}
	pct := decimal.NewFromUint64(curve.RealSolReserves).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromUint64(cfg.GraduationThreshold), 4)
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		pct = decimal.NewFromInt(100)
	}
	return pct, nil
}

// MarketCap returns the total supply valued at the current spot price, in
// SOL.
func (s *QuoteService) MarketCap(ctx context.Context, mint solana.PublicKey) (decimal.Decimal, error) {
	price, err := s.SpotPrice(ctx, mint)
	if err != nil {
		return decimal.Zero, err
	}
	curve, err := s.ledger.Curve(ctx, mint)
	if err != nil {
		return decimal.Zero, err
	}
	supply := decimal.NewFromUint64(curve.TotalSupply).Shift(-TokenDecimals)
	return price.Mul(supply), nil
}

func (s *QuoteService) snapshot(ctx context.Context, mint solana.PublicKey) (PlatformConfig, CurveState, error) {
	cfg, err := s.ledger.Config(ctx)
	if err != nil {
		return PlatformConfig{}, CurveState{}, err
	}
	curve, err := s.ledger.Curve(ctx, mint)
	if err != nil {
		return PlatformConfig{}, CurveState{}, err
	}
	return cfg, curve, nil
}

func applySlippage(amount uint64, slippageBps uint16) uint64 {
	if slippageBps == 0 || slippageBps >= curvemath.MaxBasisPoint {
		return amount
	}
	// floor(amount * (10000 - bps) / 10000); the product is carried in 128
	// bits so it cannot wrap.
	out, err := curvemath.MulDiv(amount, uint64(curvemath.MaxBasisPoint-slippageBps), curvemath.MaxBasisPoint)
	if err != nil {
		return amount
	}
	return out
}
