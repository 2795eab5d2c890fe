package bonding_curve

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	curvemath "github.com/launchlab/bondingcurve-go/bonding_curve/math"
)

// AdminService manages the process-wide platform configuration. All writes
// require the configured authority and are serialized by the ledger.
type AdminService struct {
	*engine
	logger *zap.Logger
}

// InitializeParams seeds the platform configuration. Zero reserve values
// fall back to the package defaults.
type InitializeParams struct {
	Authority    solana.PublicKey
	FeeRecipient solana.PublicKey

	FeeBasisPoints      uint16
	GraduationThreshold uint64
	MinBuyAmount        uint64
	MaxBuyAmount        uint64

	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
}

// UpdateParams carries optional configuration changes; nil fields are left
// untouched.
type UpdateParams struct {
	FeeBasisPoints *uint16
	Paused         *bool
	MinBuyAmount   *uint64
	MaxBuyAmount   *uint64
}

// Initialize creates the platform configuration. It runs once; a second call
// fails with ErrPlatformInitialized.
func (s *AdminService) Initialize(ctx context.Context, params InitializeParams) error {
	cfg := PlatformConfig{
		Authority:                   params.Authority,
		FeeRecipient:                params.FeeRecipient,
		FeeBasisPoints:              params.FeeBasisPoints,
		GraduationThreshold:         params.GraduationThreshold,
		MinBuyAmount:                params.MinBuyAmount,
		MaxBuyAmount:                params.MaxBuyAmount,
		InitialVirtualTokenReserves: params.InitialVirtualTokenReserves,
		InitialVirtualSolReserves:   params.InitialVirtualSolReserves,
	}
	if cfg.GraduationThreshold == 0 {
		cfg.GraduationThreshold = DefaultGraduationThreshold
	}
	if cfg.InitialVirtualSolReserves == 0 {
		cfg.InitialVirtualSolReserves = DefaultVirtualSolReserves
	}
	if cfg.InitialVirtualTokenReserves == 0 {
		cfg.InitialVirtualTokenReserves = DefaultVirtualTokenReserves
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.ledger.InitConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("platform initialized",
		zap.String("authority", cfg.Authority.String()),
		zap.Uint16("fee_bps", cfg.FeeBasisPoints),
		zap.Uint64("graduation_threshold", cfg.GraduationThreshold))
	return nil
}

// UpdateConfig applies the non-nil fields of params. Fee changes above the
// cap are rejected here, at configuration time, never at trade time.
func (s *AdminService) UpdateConfig(ctx context.Context, authority solana.PublicKey, params UpdateParams) error {
	return s.ledger.UpdateConfig(ctx, func(tx Tx) error {
		cfg := tx.Config()
		if !authority.Equals(cfg.Authority) {
			return ErrUnauthorized
		}
		if params.FeeBasisPoints != nil {
			cfg.FeeBasisPoints = *params.FeeBasisPoints
		}
		if params.Paused != nil {
			cfg.Paused = *params.Paused
		}
		if params.MinBuyAmount != nil {
			cfg.MinBuyAmount = *params.MinBuyAmount
		}
		if params.MaxBuyAmount != nil {
			cfg.MaxBuyAmount = *params.MaxBuyAmount
		}
		return cfg.Validate()
	})
}

// WithdrawFees moves accrued platform fees from the fee recipient's custody
// to the authority.
func (s *AdminService) WithdrawFees(ctx context.Context, authority solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return s.ledger.UpdateConfig(ctx, func(tx Tx) error {
		cfg := tx.Config()
		if !authority.Equals(cfg.Authority) {
			return ErrUnauthorized
		}
		if amount > cfg.AccruedFees {
			return ErrInsufficientFunds
		}
		var err error
		if cfg.AccruedFees, err = curvemath.Sub(cfg.AccruedFees, amount); err != nil {
			return err
		}
		tx.TransferLamports(cfg.FeeRecipient, cfg.Authority, amount)
		return nil
	})
}
