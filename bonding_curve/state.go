package bonding_curve

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	curvemath "github.com/launchlab/bondingcurve-go/bonding_curve/math"
)

// CompletionState tracks a curve's lifecycle. Transitions are one-directional:
// Active -> Graduating (automatic, inside the buy that crosses the threshold)
// and Graduating -> Migrated (explicit, exactly once).
type CompletionState uint8

const (
	CompletionStateActive CompletionState = iota
	CompletionStateGraduating
	CompletionStateMigrated
)

func (s CompletionState) String() string {
	switch s {
	case CompletionStateActive:
		return "active"
	case CompletionStateGraduating:
		return "graduating"
	case CompletionStateMigrated:
		return "migrated"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

type TradeDirection uint8

const (
	TradeDirectionBuy TradeDirection = iota
	TradeDirectionSell
)

func (d TradeDirection) String() string {
	if d == TradeDirectionBuy {
		return "buy"
	}
	return "sell"
}

// CurveState is the reserve model of one launched token. One instance exists
// per mint and is owned exclusively by its launch.
type CurveState struct {
	Mint    solana.PublicKey
	Creator solana.PublicKey

	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TotalSupply          uint64

	CompletionState CompletionState

	CreatedAt   int64
	LastTradeAt int64
}

// Validate checks the reserve invariants that must hold before and after
// every trade. The store runs it on each commit; a violation aborts the
// operation instead of persisting a corrupt curve.
func (c *CurveState) Validate() error {
	if c.VirtualSolReserves == 0 || c.VirtualTokenReserves == 0 {
		return fmt.Errorf("%w: virtual reserves must stay positive", ErrInvalidReserves)
	}
	if c.RealSolReserves > c.VirtualSolReserves {
		return fmt.Errorf("%w: real SOL reserves exceed virtual", ErrInvalidReserves)
	}
	if c.RealTokenReserves > c.VirtualTokenReserves {
		return fmt.Errorf("%w: real token reserves exceed virtual", ErrInvalidReserves)
	}
	if c.LastTradeAt < c.CreatedAt {
		return fmt.Errorf("%w: trade timestamp precedes creation", ErrInvalidReserves)
	}
	return nil
}

func (c *CurveState) IsActive() bool {
	return c.CompletionState == CompletionStateActive
}

// PlatformConfig is the process-wide administrative state shared by all
// curves. Trades read a single consistent snapshot of it; only the authority
// mutates it.
type PlatformConfig struct {
	Authority    solana.PublicKey
	FeeRecipient solana.PublicKey

	FeeBasisPoints      uint16
	GraduationThreshold uint64
	MinBuyAmount        uint64 // 0 = no minimum
	MaxBuyAmount        uint64 // 0 = no maximum

	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64

	Paused bool

	TotalLaunches uint64
	TotalVolume   uint64
	AccruedFees   uint64
}

// Validate rejects malformed platform parameters at configuration time, so
// trades never have to re-check them.
func (p *PlatformConfig) Validate() error {
	if p.FeeBasisPoints > curvemath.MaxFeeBasisPoint {
		return fmt.Errorf("%w: %d bps exceeds maximum %d", ErrInvalidFeeRate, p.FeeBasisPoints, curvemath.MaxFeeBasisPoint)
	}
	if p.InitialVirtualSolReserves == 0 || p.InitialVirtualTokenReserves == 0 {
		return ErrInvalidReserves
	}
	if p.GraduationThreshold == 0 {
		return fmt.Errorf("%w: graduation threshold must be positive", ErrInvalidReserves)
	}
	if p.MaxBuyAmount != 0 && p.MinBuyAmount > p.MaxBuyAmount {
		return fmt.Errorf("%w: min buy exceeds max buy", ErrInvalidAmount)
	}
	return nil
}

// UserStats accumulates per-trader activity across all curves.
type UserStats struct {
	User solana.PublicKey

	TokensBought uint64
	TokensSold   uint64
	SolSpent     uint64 // gross lamports committed to buys
	SolReceived  uint64 // net lamports paid out by sells, after the fee
	VolumeTraded uint64 // gross SOL notional, the same basis as PlatformConfig.TotalVolume
	FeesPaid     uint64

	FirstTradeAt int64
	LastTradeAt  int64
}

func (u *UserStats) recordBuy(tokenAmount, solAmount, fee uint64, now int64) error {
	var err error
	if u.TokensBought, err = curvemath.Add(u.TokensBought, tokenAmount); err != nil {
		return err
	}
	if u.SolSpent, err = curvemath.Add(u.SolSpent, solAmount); err != nil {
		return err
	}
	return u.recordCommon(solAmount, fee, now)
}

func (u *UserStats) recordSell(tokenAmount, solReceived, volume, fee uint64, now int64) error {
	var err error
	if u.TokensSold, err = curvemath.Add(u.TokensSold, tokenAmount); err != nil {
		return err
	}
	if u.SolReceived, err = curvemath.Add(u.SolReceived, solReceived); err != nil {
		return err
	}
	return u.recordCommon(volume, fee, now)
}

func (u *UserStats) recordCommon(volume, fee uint64, now int64) error {
	var err error
	if u.VolumeTraded, err = curvemath.Add(u.VolumeTraded, volume); err != nil {
		return err
	}
	if u.FeesPaid, err = curvemath.Add(u.FeesPaid, fee); err != nil {
		return err
	}
	if u.FirstTradeAt == 0 {
		u.FirstTradeAt = now
	}
	u.LastTradeAt = now
	return nil
}
