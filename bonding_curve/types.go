package bonding_curve

import (
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// BuyParams describes one buy request. SolIn is the gross lamport amount the
// trader commits; the platform fee is taken out of it before pricing.
type BuyParams struct {
	Trader       solana.PublicKey
	Mint         solana.PublicKey
	SolIn        uint64
	MinTokensOut uint64
}

// SellParams describes one sell request. MinSolOut bounds the net lamports
// the trader accepts after the fee.
type SellParams struct {
	Trader    solana.PublicKey
	Mint      solana.PublicKey
	TokensIn  uint64
	MinSolOut uint64
}

// TradeRecord is the immutable record of one executed trade. It is produced
// after the reserve update commits and never mutated afterwards.
type TradeRecord struct {
	ID        uuid.UUID
	Trader    solana.PublicKey
	Mint      solana.PublicKey
	Direction TradeDirection

	AmountIn  uint64 // gross amount the trader put in (lamports for buys, tokens for sells)
	AmountOut uint64 // net amount the trader received
	Fee       uint64 // lamports retained by the platform

	// Reserve snapshot after the trade.
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	RealSolReserves      uint64
	RealTokenReserves    uint64

	Graduated bool // true when this trade pushed the curve across the threshold
	Timestamp int64
}

// LaunchParams describes a token launch request.
type LaunchParams struct {
	Creator solana.PublicKey
	Mint    solana.PublicKey

	Name   string
	Symbol string
	URI    string

	// MetadataJSON optionally carries the off-chain metadata document; when
	// present it is validated before the launch is accepted.
	MetadataJSON string

	InitialSupply uint64
}

// LaunchRecord is emitted once per created launch.
type LaunchRecord struct {
	Mint          solana.PublicKey
	Creator       solana.PublicKey
	Name          string
	Symbol        string
	URI           string
	InitialSupply uint64
	Timestamp     int64
}

// GraduationRecord is emitted when a curve leaves the Active state.
type GraduationRecord struct {
	Mint             solana.PublicKey
	State            CompletionState
	FinalSolReserves uint64
	Timestamp        int64
}

// MigrationSummary is the final reserve snapshot handed to the downstream
// liquidity venue. Produced exactly once per curve.
type MigrationSummary struct {
	Mint                 solana.PublicKey
	RealSolReserves      uint64
	RealTokenReserves    uint64
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	TotalSupply          uint64
	MigratedAt           int64
}

// Quote is the read-only result of pricing a prospective trade.
type Quote struct {
	Direction TradeDirection

	AmountIn  uint64
	AmountOut uint64 // net of fee
	Fee       uint64

	// MinAmountOut applies the caller's slippage tolerance to AmountOut.
	MinAmountOut uint64
}
