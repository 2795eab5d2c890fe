package bonding_curve

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// MigrationService hands a graduated curve off to the downstream liquidity
// venue. The curve must already be Graduating; the Active -> Graduating
// transition only ever happens inside the buy that crosses the threshold.
type MigrationService struct {
	*engine
	logger *zap.Logger
}

// Migrate finalizes a Graduating curve and returns the reserve snapshot that
// seeds the external venue. It succeeds exactly once per curve; the
// transition to Migrated is terminal.
func (s *MigrationService) Migrate(ctx context.Context, authority, mint solana.PublicKey) (*MigrationSummary, error) {
	var summary MigrationSummary

	err := s.ledger.UpdateCurve(ctx, mint, func(tx Tx) error {
		cfg := tx.Config()
		if !authority.Equals(cfg.Authority) {
			return ErrUnauthorized
		}
		curve := tx.Curve()
		switch curve.CompletionState {
		case CompletionStateMigrated:
			return ErrAlreadyMigrated
		case CompletionStateActive:
			return ErrGraduationThresholdNotMet
		}

		curve.CompletionState = CompletionStateMigrated
		summary = MigrationSummary{
			Mint:                 curve.Mint,
			RealSolReserves:      curve.RealSolReserves,
			RealTokenReserves:    curve.RealTokenReserves,
			VirtualSolReserves:   curve.VirtualSolReserves,
			VirtualTokenReserves: curve.VirtualTokenReserves,
			TotalSupply:          curve.TotalSupply,
			MigratedAt:           s.clock.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("curve migrated",
		zap.String("mint", summary.Mint.String()),
		zap.Uint64("real_sol_reserves", summary.RealSolReserves),
		zap.Uint64("real_token_reserves", summary.RealTokenReserves))

	gr := GraduationRecord{
		Mint:             summary.Mint,
		State:            CompletionStateMigrated,
		FinalSolReserves: summary.RealSolReserves,
		Timestamp:        summary.MigratedAt,
	}
	if err := s.sink.RecordGraduation(ctx, gr); err != nil {
		s.logger.Warn("migration record sink failed",
			zap.String("mint", summary.Mint.String()),
			zap.Error(err))
	}
	return &summary, nil
}
