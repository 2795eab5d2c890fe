package bonding_curve

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	curvemath "github.com/launchlab/bondingcurve-go/bonding_curve/math"
)

// TradeService executes buys and sells against a curve. Each operation is
// all-or-nothing: every validation and checked-arithmetic step runs inside
// the ledger transaction, and a failure anywhere discards the whole
// operation with no observable side effect.
type TradeService struct {
	*engine
	logger *zap.Logger
}

// Buy swaps params.SolIn lamports for tokens. The platform fee is deducted
// from the gross SOL before it enters the pricing formula, so the curve is
// priced on the net amount. The buy that pushes real SOL reserves across the
// graduation threshold still succeeds and flips the curve to Graduating.
func (s *TradeService) Buy(ctx context.Context, params BuyParams) (*TradeRecord, error) {
	var rec TradeRecord

	err := s.ledger.UpdateCurve(ctx, params.Mint, func(tx Tx) error {
		cfg := tx.Config()
		if cfg.Paused {
			return ErrPlatformPaused
		}
		curve := tx.Curve()
		if err := checkTradable(curve); err != nil {
			return err
		}
		if params.SolIn == 0 {
			return ErrInvalidAmount
		}
		if cfg.MinBuyAmount != 0 && params.SolIn < cfg.MinBuyAmount {
			return ErrBelowMinimumBuy
		}
		if cfg.MaxBuyAmount != 0 && params.SolIn > cfg.MaxBuyAmount {
			return ErrAboveMaximumBuy
		}
		if tx.LamportBalance(params.Trader) < params.SolIn {
			return ErrInsufficientFunds
		}

		netIn, fee, err := curvemath.SplitFee(params.SolIn, cfg.FeeBasisPoints)
		if err != nil {
			return err
		}
		tokensOut, err := curvemath.TokensOut(curve.VirtualSolReserves, curve.VirtualTokenReserves, netIn)
		if err != nil {
			return mapPricingErr(err)
		}
		// A positive input can still price to zero tokens; reject it before
		// any state mutation.
		if tokensOut == 0 {
			return ErrInvalidAmount
		}
		if tokensOut < params.MinTokensOut {
			return ErrSlippageExceeded
		}
		if tokensOut > curve.RealTokenReserves {
			return ErrInsufficientReserves
		}

		if curve.VirtualSolReserves, err = curvemath.Add(curve.VirtualSolReserves, netIn); err != nil {
			return err
		}
		if curve.VirtualTokenReserves, err = curvemath.Sub(curve.VirtualTokenReserves, tokensOut); err != nil {
			return err
		}
		if curve.RealSolReserves, err = curvemath.Add(curve.RealSolReserves, netIn); err != nil {
			return err
		}
		if curve.RealTokenReserves, err = curvemath.Sub(curve.RealTokenReserves, tokensOut); err != nil {
			return err
		}

		now := s.clock.Now()
		curve.LastTradeAt = now

		graduated := false
		if curve.RealSolReserves >= cfg.GraduationThreshold {
			curve.CompletionState = CompletionStateGraduating
			graduated = true
		}

		if cfg.TotalVolume, err = curvemath.Add(cfg.TotalVolume, params.SolIn); err != nil {
			return err
		}
		if cfg.AccruedFees, err = curvemath.Add(cfg.AccruedFees, fee); err != nil {
			return err
		}
		if err := tx.Stats(params.Trader).recordBuy(tokensOut, params.SolIn, fee, now); err != nil {
			return err
		}

		tx.TransferLamports(params.Trader, curve.Mint, netIn)
		if fee > 0 {
			tx.TransferLamports(params.Trader, cfg.FeeRecipient, fee)
		}
		tx.TransferToken(curve.Mint, curve.Mint, params.Trader, tokensOut)

		rec = TradeRecord{
			ID:                   uuid.New(),
			Trader:               params.Trader,
			Mint:                 params.Mint,
			Direction:            TradeDirectionBuy,
			AmountIn:             params.SolIn,
			AmountOut:            tokensOut,
			Fee:                  fee,
			VirtualSolReserves:   curve.VirtualSolReserves,
			VirtualTokenReserves: curve.VirtualTokenReserves,
			RealSolReserves:      curve.RealSolReserves,
			RealTokenReserves:    curve.RealTokenReserves,
			Graduated:            graduated,
			Timestamp:            now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("buy executed",
		zap.String("mint", rec.Mint.String()),
		zap.String("trader", rec.Trader.String()),
		zap.Uint64("sol_in", rec.AmountIn),
		zap.Uint64("tokens_out", rec.AmountOut),
		zap.Uint64("fee", rec.Fee),
		zap.Bool("graduated", rec.Graduated))

	s.emit(ctx, rec)
	return &rec, nil
}

// Sell swaps params.TokensIn tokens back into lamports. The fee is deducted
// from the computed SOL output, so the trader receives the net amount while
// the curve gives up the gross.
func (s *TradeService) Sell(ctx context.Context, params SellParams) (*TradeRecord, error) {
	var rec TradeRecord

	err := s.ledger.UpdateCurve(ctx, params.Mint, func(tx Tx) error {
		cfg := tx.Config()
		if cfg.Paused {
			return ErrPlatformPaused
		}
		curve := tx.Curve()
		if err := checkTradable(curve); err != nil {
			return err
		}
		if params.TokensIn == 0 {
			return ErrInvalidAmount
		}
		if tx.TokenBalance(params.Mint, params.Trader) < params.TokensIn {
			return ErrInsufficientTokenBalance
		}

		grossOut, err := curvemath.SolOut(curve.VirtualTokenReserves, curve.VirtualSolReserves, params.TokensIn)
		if err != nil {
			return mapPricingErr(err)
		}
		if grossOut == 0 {
			return ErrInvalidAmount
		}
		netOut, fee, err := curvemath.SplitFee(grossOut, cfg.FeeBasisPoints)
		if err != nil {
			return err
		}
		if netOut < params.MinSolOut {
			return ErrSlippageExceeded
		}
		if grossOut > curve.RealSolReserves {
			return ErrInsufficientCurveBalance
		}

		if curve.VirtualTokenReserves, err = curvemath.Add(curve.VirtualTokenReserves, params.TokensIn); err != nil {
			return err
		}
		if curve.VirtualSolReserves, err = curvemath.Sub(curve.VirtualSolReserves, grossOut); err != nil {
			return err
		}
		if curve.RealTokenReserves, err = curvemath.Add(curve.RealTokenReserves, params.TokensIn); err != nil {
			return err
		}
		if curve.RealSolReserves, err = curvemath.Sub(curve.RealSolReserves, grossOut); err != nil {
			return err
		}

		now := s.clock.Now()
		curve.LastTradeAt = now

		if cfg.TotalVolume, err = curvemath.Add(cfg.TotalVolume, grossOut); err != nil {
			return err
		}
		if cfg.AccruedFees, err = curvemath.Add(cfg.AccruedFees, fee); err != nil {
			return err
		}
		if err := tx.Stats(params.Trader).recordSell(params.TokensIn, netOut, grossOut, fee, now); err != nil {
			return err
		}

		tx.TransferToken(curve.Mint, params.Trader, curve.Mint, params.TokensIn)
		tx.TransferLamports(curve.Mint, params.Trader, netOut)
		if fee > 0 {
			tx.TransferLamports(curve.Mint, cfg.FeeRecipient, fee)
		}

		rec = TradeRecord{
			ID:                   uuid.New(),
			Trader:               params.Trader,
			Mint:                 params.Mint,
			Direction:            TradeDirectionSell,
			AmountIn:             params.TokensIn,
			AmountOut:            netOut,
			Fee:                  fee,
			VirtualSolReserves:   curve.VirtualSolReserves,
			VirtualTokenReserves: curve.VirtualTokenReserves,
			RealSolReserves:      curve.RealSolReserves,
			RealTokenReserves:    curve.RealTokenReserves,
			Timestamp:            now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sell executed",
		zap.String("mint", rec.Mint.String()),
		zap.String("trader", rec.Trader.String()),
		zap.Uint64("tokens_in", rec.AmountIn),
		zap.Uint64("sol_out", rec.AmountOut),
		zap.Uint64("fee", rec.Fee))

	s.emit(ctx, rec)
	return &rec, nil
}

// emit records the trade with the sink. The trade is already committed, so a
// sink failure is logged and swallowed.
func (s *TradeService) emit(ctx context.Context, rec TradeRecord) {
	if err := s.sink.RecordTrade(ctx, rec); err != nil {
		s.logger.Warn("trade record sink failed",
			zap.String("trade_id", rec.ID.String()),
			zap.Error(err))
	}
	if rec.Graduated {
		gr := GraduationRecord{
			Mint:             rec.Mint,
			State:            CompletionStateGraduating,
			FinalSolReserves: rec.RealSolReserves,
			Timestamp:        rec.Timestamp,
		}
		if err := s.sink.RecordGraduation(ctx, gr); err != nil {
			s.logger.Warn("graduation record sink failed",
				zap.String("mint", rec.Mint.String()),
				zap.Error(err))
		}
	}
}

func checkTradable(curve *CurveState) error {
	switch curve.CompletionState {
	case CompletionStateActive:
		return nil
	case CompletionStateMigrated:
		return ErrAlreadyMigrated
	default:
		return ErrCurveComplete
	}
}

func mapPricingErr(err error) error {
	switch {
	case errors.Is(err, curvemath.ErrZeroAmount):
		return ErrInvalidAmount
	case errors.Is(err, curvemath.ErrInsufficientReserves):
		return ErrInsufficientReserves
	}
	return err
}
