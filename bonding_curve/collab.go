package bonding_curve

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Tx is the unit of atomicity the engine operates in. All reads observe a
// consistent snapshot; all mutations and queued asset movements apply only if
// the enclosing callback returns nil. Curve custody accounts are keyed by the
// curve's mint.
type Tx interface {
	// Config returns the mutable platform configuration snapshot for this
	// operation.
	Config() *PlatformConfig

	// Curve returns the mutable curve state. Nil during platform-only
	// operations.
	Curve() *CurveState

	// Stats returns the mutable trade statistics for a trader, creating a
	// zero record on first use.
	Stats(trader solana.PublicKey) *UserStats

	TokenBalance(mint, owner solana.PublicKey) uint64
	LamportBalance(owner solana.PublicKey) uint64

	// MintTo queues minting of token units into an account.
	MintTo(mint, owner solana.PublicKey, amount uint64)
	// TransferToken queues a token movement between custody accounts.
	TransferToken(mint, from, to solana.PublicKey, amount uint64)
	// TransferLamports queues a native-currency movement.
	TransferLamports(from, to solana.PublicKey, amount uint64)
}

// Ledger is the durable storage collaborator: atomic read-modify-write of
// curve and platform state keyed by mint, with all-or-nothing commit per
// operation. Operations on the same curve are serialized; different curves
// are independent.
type Ledger interface {
	Config(ctx context.Context) (PlatformConfig, error)
	InitConfig(ctx context.Context, cfg PlatformConfig) error
	UpdateConfig(ctx context.Context, fn func(Tx) error) error

	Curve(ctx context.Context, mint solana.PublicKey) (CurveState, error)
	CreateCurve(ctx context.Context, curve CurveState, fn func(Tx) error) error
	UpdateCurve(ctx context.Context, mint solana.PublicKey, fn func(Tx) error) error

	Stats(ctx context.Context, trader solana.PublicKey) (UserStats, error)
}

// EventSink durably records engine output for downstream indexing. It is
// best-effort: a sink failure must not roll back a committed trade.
type EventSink interface {
	RecordTrade(ctx context.Context, rec TradeRecord) error
	RecordLaunch(ctx context.Context, rec LaunchRecord) error
	RecordGraduation(ctx context.Context, rec GraduationRecord) error
}

// Clock supplies unix timestamps for trade and graduation records. It only
// needs to be monotonic enough that per-curve timestamps never decrease.
type Clock interface {
	Now() int64
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordTrade(context.Context, TradeRecord) error           { return nil }
func (NopSink) RecordLaunch(context.Context, LaunchRecord) error         { return nil }
func (NopSink) RecordGraduation(context.Context, GraduationRecord) error { return nil }

// MultiSink fans records out to several sinks, returning the first error
// after attempting all of them.
type MultiSink []EventSink

func (m MultiSink) RecordTrade(ctx context.Context, rec TradeRecord) error {
	return m.each(func(s EventSink) error { return s.RecordTrade(ctx, rec) })
}

func (m MultiSink) RecordLaunch(ctx context.Context, rec LaunchRecord) error {
	return m.each(func(s EventSink) error { return s.RecordLaunch(ctx, rec) })
}

func (m MultiSink) RecordGraduation(ctx context.Context, rec GraduationRecord) error {
	return m.each(func(s EventSink) error { return s.RecordGraduation(ctx, rec) })
}

func (m MultiSink) each(fn func(EventSink) error) error {
	var first error
	for _, s := range m {
		if err := fn(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}
