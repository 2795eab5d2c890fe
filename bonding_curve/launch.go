package bonding_curve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	curvemath "github.com/launchlab/bondingcurve-go/bonding_curve/math"
)

// LaunchService creates new token launches. A launch pre-mints the entire
// supply into curve custody; buys draw from those real reserves and never
// mint on demand, so TotalSupply stays constant across trades.
type LaunchService struct {
	*engine
	logger *zap.Logger
}

// CreateLaunch validates metadata, seeds the curve from the platform
// configuration and mints the initial supply to the curve's custody account.
func (s *LaunchService) CreateLaunch(ctx context.Context, params LaunchParams) (*CurveState, error) {
	if err := validateLaunchMetadata(params); err != nil {
		return nil, err
	}
	if params.InitialSupply == 0 {
		return nil, fmt.Errorf("%w: initial supply must be positive", ErrInvalidAmount)
	}

	cfg, err := s.ledger.Config(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Paused {
		return nil, ErrPlatformPaused
	}
	if params.InitialSupply > cfg.InitialVirtualTokenReserves {
		return nil, fmt.Errorf("%w: initial supply exceeds virtual token reserves", ErrInvalidReserves)
	}

	now := s.clock.Now()
	curve := CurveState{
		Mint:                 params.Mint,
		Creator:              params.Creator,
		VirtualTokenReserves: cfg.InitialVirtualTokenReserves,
		VirtualSolReserves:   cfg.InitialVirtualSolReserves,
		RealTokenReserves:    params.InitialSupply,
		RealSolReserves:      0,
		TotalSupply:          params.InitialSupply,
		CompletionState:      CompletionStateActive,
		CreatedAt:            now,
		LastTradeAt:          now,
	}

	err = s.ledger.CreateCurve(ctx, curve, func(tx Tx) error {
		cfg := tx.Config()
		var cerr error
		if cfg.TotalLaunches, cerr = curvemath.Add(cfg.TotalLaunches, 1); cerr != nil {
			return cerr
		}
		tx.MintTo(params.Mint, params.Mint, params.InitialSupply)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("launch created",
		zap.String("mint", params.Mint.String()),
		zap.String("creator", params.Creator.String()),
		zap.String("symbol", params.Symbol),
		zap.Uint64("initial_supply", params.InitialSupply))

	rec := LaunchRecord{
		Mint:          params.Mint,
		Creator:       params.Creator,
		Name:          params.Name,
		Symbol:        params.Symbol,
		URI:           params.URI,
		InitialSupply: params.InitialSupply,
		Timestamp:     now,
	}
	if err := s.sink.RecordLaunch(ctx, rec); err != nil {
		s.logger.Warn("launch record sink failed",
			zap.String("mint", params.Mint.String()),
			zap.Error(err))
	}
	return &curve, nil
}

func validateLaunchMetadata(params LaunchParams) error {
	if params.Name == "" || len(params.Name) > MaxNameLen {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidMetadata, MaxNameLen)
	}
	if params.Symbol == "" || len(params.Symbol) > MaxSymbolLen {
		return fmt.Errorf("%w: symbol must be 1-%d characters", ErrInvalidMetadata, MaxSymbolLen)
	}
	if len(params.URI) > MaxURILen {
		return fmt.Errorf("%w: uri exceeds %d characters", ErrInvalidMetadata, MaxURILen)
	}
	if params.MetadataJSON != "" {
		if err := ValidateMetadataJSON(params.MetadataJSON); err != nil {
			return err
		}
	}
	return nil
}
