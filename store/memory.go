// Package store ships the reference collaborators of the curve engine: an
// in-memory ledger with per-curve single-writer transactions, a borsh codec
// for state snapshots and a SQLite trade journal.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"

	bc "github.com/launchlab/bondingcurve-go/bonding_curve"
	curvemath "github.com/launchlab/bondingcurve-go/bonding_curve/math"
)

type tokenKey struct {
	Mint  solana.PublicKey
	Owner solana.PublicKey
}

type curveEntry struct {
	mu    sync.Mutex // serializes read-compute-write per curve
	state bc.CurveState
}

// Memory is an in-memory Ledger. Operations against the same curve are
// serialized by a per-curve mutex; operations against different curves
// proceed independently. Asset movements queued during a transaction are
// validated and applied under the store lock at commit, so a trade either
// lands completely or not at all.
type Memory struct {
	mu       sync.RWMutex
	cfg      *bc.PlatformConfig
	curves   map[solana.PublicKey]*curveEntry
	stats    map[solana.PublicKey]*bc.UserStats
	lamports map[solana.PublicKey]uint64
	tokens   map[tokenKey]uint64
}

var _ bc.Ledger = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		curves:   make(map[solana.PublicKey]*curveEntry),
		stats:    make(map[solana.PublicKey]*bc.UserStats),
		lamports: make(map[solana.PublicKey]uint64),
		tokens:   make(map[tokenKey]uint64),
	}
}

// Fund credits lamports to an account. Test and embedding helper; the real
// deposit path belongs to the enclosing environment.
func (m *Memory) Fund(owner solana.PublicKey, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lamports[owner] += amount
}

// LamportBalance reports an account's native balance.
func (m *Memory) LamportBalance(owner solana.PublicKey) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lamports[owner]
}

// TokenBalance reports an account's balance for one mint.
func (m *Memory) TokenBalance(mint, owner solana.PublicKey) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens[tokenKey{Mint: mint, Owner: owner}]
}

func (m *Memory) Config(context.Context) (bc.PlatformConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cfg == nil {
		return bc.PlatformConfig{}, bc.ErrPlatformNotInitialized
	}
	return *m.cfg, nil
}

func (m *Memory) InitConfig(_ context.Context, cfg bc.PlatformConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg != nil {
		return bc.ErrPlatformInitialized
	}
	c := cfg
	m.cfg = &c
	return nil
}

func (m *Memory) UpdateConfig(_ context.Context, fn func(bc.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return bc.ErrPlatformNotInitialized
	}
	tx := m.newTx(nil)
	if err := fn(tx); err != nil {
		return err
	}
	return m.commitLocked(tx, nil)
}

func (m *Memory) Curve(_ context.Context, mint solana.PublicKey) (bc.CurveState, error) {
	m.mu.RLock()
	entry, ok := m.curves[mint]
	m.mu.RUnlock()
	if !ok {
		return bc.CurveState{}, bc.ErrLaunchNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state, nil
}

func (m *Memory) CreateCurve(_ context.Context, curve bc.CurveState, fn func(bc.Tx) error) error {
	if err := curve.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return bc.ErrPlatformNotInitialized
	}
	if _, ok := m.curves[curve.Mint]; ok {
		return bc.ErrLaunchExists
	}
	tx := m.newTx(&curve)
	if fn != nil {
		if err := fn(tx); err != nil {
			return err
		}
	}
	entry := &curveEntry{}
	if err := m.commitLocked(tx, &entry.state); err != nil {
		return err
	}
	m.curves[curve.Mint] = entry
	return nil
}

func (m *Memory) UpdateCurve(_ context.Context, mint solana.PublicKey, fn func(bc.Tx) error) error {
	m.mu.RLock()
	entry, ok := m.curves[mint]
	initialized := m.cfg != nil
	m.mu.RUnlock()
	if !initialized {
		return bc.ErrPlatformNotInitialized
	}
	if !ok {
		return bc.ErrLaunchNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	m.mu.RLock()
	state := entry.state
	tx := m.newTx(&state)
	m.mu.RUnlock()

	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commitLocked(tx, &entry.state)
}

func (m *Memory) Stats(_ context.Context, trader solana.PublicKey) (bc.UserStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.stats[trader]; ok {
		return *s, nil
	}
	return bc.UserStats{User: trader}, nil
}

type opKind uint8

const (
	opMint opKind = iota
	opTransferToken
	opTransferLamports
)

type assetOp struct {
	kind   opKind
	mint   solana.PublicKey
	from   solana.PublicKey
	to     solana.PublicKey
	amount uint64
}

// memTx collects mutations against copies; nothing touches the store until
// commit. base keeps the config as it was snapshotted so commit can tell
// which fields this transaction actually changed.
type memTx struct {
	m       *Memory
	base    bc.PlatformConfig
	cfg     bc.PlatformConfig
	curve   *bc.CurveState
	stats   map[solana.PublicKey]*bc.UserStats
	effects []assetOp
}

var _ bc.Tx = (*memTx)(nil)

// newTx snapshots the config and wraps the given curve copy. Callers hold at
// least the read lock.
func (m *Memory) newTx(curve *bc.CurveState) *memTx {
	return &memTx{
		m:     m,
		base:  *m.cfg,
		cfg:   *m.cfg,
		curve: curve,
		stats: make(map[solana.PublicKey]*bc.UserStats),
	}
}

func (t *memTx) Config() *bc.PlatformConfig { return &t.cfg }
func (t *memTx) Curve() *bc.CurveState      { return t.curve }

func (t *memTx) Stats(trader solana.PublicKey) *bc.UserStats {
	if s, ok := t.stats[trader]; ok {
		return s
	}
	s := &bc.UserStats{User: trader}
	t.m.mu.RLock()
	if existing, ok := t.m.stats[trader]; ok {
		*s = *existing
	}
	t.m.mu.RUnlock()
	t.stats[trader] = s
	return s
}

func (t *memTx) TokenBalance(mint, owner solana.PublicKey) uint64 {
	return t.m.TokenBalance(mint, owner)
}

func (t *memTx) LamportBalance(owner solana.PublicKey) uint64 {
	return t.m.LamportBalance(owner)
}

func (t *memTx) MintTo(mint, owner solana.PublicKey, amount uint64) {
	t.effects = append(t.effects, assetOp{kind: opMint, mint: mint, to: owner, amount: amount})
}

func (t *memTx) TransferToken(mint, from, to solana.PublicKey, amount uint64) {
	t.effects = append(t.effects, assetOp{kind: opTransferToken, mint: mint, from: from, to: to, amount: amount})
}

func (t *memTx) TransferLamports(from, to solana.PublicKey, amount uint64) {
	t.effects = append(t.effects, assetOp{kind: opTransferLamports, from: from, to: to, amount: amount})
}

// commitLocked validates the transaction and applies it. Called with m.mu
// held for writing. dst, when non-nil, receives the committed curve state.
func (m *Memory) commitLocked(tx *memTx, dst *bc.CurveState) error {
	if tx.curve != nil {
		if err := tx.curve.Validate(); err != nil {
			return err
		}
	}

	// Fold the transaction's config changes into the live config. The live
	// value may have moved since the snapshot: transactions on other curves
	// only hold their own curve mutex, so their counter increments land here
	// between this transaction's snapshot and its commit.
	cfg, err := mergeConfig(m.cfg, &tx.base, &tx.cfg)
	if err != nil {
		return err
	}

	// Stage balance changes so a failing effect leaves the store untouched.
	lamports := make(map[solana.PublicKey]uint64)
	tokens := make(map[tokenKey]uint64)
	lamportsAt := func(owner solana.PublicKey) uint64 {
		if v, ok := lamports[owner]; ok {
			return v
		}
		return m.lamports[owner]
	}
	tokensAt := func(k tokenKey) uint64 {
		if v, ok := tokens[k]; ok {
			return v
		}
		return m.tokens[k]
	}

	for _, op := range tx.effects {
		switch op.kind {
		case opMint:
			k := tokenKey{Mint: op.mint, Owner: op.to}
			next, err := curvemath.Add(tokensAt(k), op.amount)
			if err != nil {
				return fmt.Errorf("mint effect: %w", err)
			}
			tokens[k] = next
		case opTransferToken:
			fromKey := tokenKey{Mint: op.mint, Owner: op.from}
			toKey := tokenKey{Mint: op.mint, Owner: op.to}
			fromNext, err := curvemath.Sub(tokensAt(fromKey), op.amount)
			if err != nil {
				return bc.ErrInsufficientTokenBalance
			}
			tokens[fromKey] = fromNext
			toNext, err := curvemath.Add(tokensAt(toKey), op.amount)
			if err != nil {
				return fmt.Errorf("token transfer effect: %w", err)
			}
			tokens[toKey] = toNext
		case opTransferLamports:
			fromNext, err := curvemath.Sub(lamportsAt(op.from), op.amount)
			if err != nil {
				return bc.ErrInsufficientFunds
			}
			lamports[op.from] = fromNext
			toNext, err := curvemath.Add(lamportsAt(op.to), op.amount)
			if err != nil {
				return fmt.Errorf("lamport transfer effect: %w", err)
			}
			lamports[op.to] = toNext
		}
	}

	for owner, v := range lamports {
		m.lamports[owner] = v
	}
	for k, v := range tokens {
		m.tokens[k] = v
	}
	for trader, s := range tx.stats {
		cp := *s
		m.stats[trader] = &cp
	}
	m.cfg = cfg
	if tx.curve != nil && dst != nil {
		*dst = *tx.curve
	}
	return nil
}

// mergeConfig folds one transaction's config changes into the live config.
// Counters carry over as deltas so concurrent transactions on different
// curves never overwrite each other's increments; every other field carries
// over only when the transaction itself changed it, so a trade snapshot
// never reverts an admin update that landed in between.
func mergeConfig(live, base, next *bc.PlatformConfig) (*bc.PlatformConfig, error) {
	merged := *live
	var err error
	if merged.TotalLaunches, err = shiftCounter(merged.TotalLaunches, base.TotalLaunches, next.TotalLaunches); err != nil {
		return nil, err
	}
	if merged.TotalVolume, err = shiftCounter(merged.TotalVolume, base.TotalVolume, next.TotalVolume); err != nil {
		return nil, err
	}
	if merged.AccruedFees, err = shiftCounter(merged.AccruedFees, base.AccruedFees, next.AccruedFees); err != nil {
		return nil, err
	}

	if next.Authority != base.Authority {
		merged.Authority = next.Authority
	}
	if next.FeeRecipient != base.FeeRecipient {
		merged.FeeRecipient = next.FeeRecipient
	}
	if next.FeeBasisPoints != base.FeeBasisPoints {
		merged.FeeBasisPoints = next.FeeBasisPoints
	}
	if next.GraduationThreshold != base.GraduationThreshold {
		merged.GraduationThreshold = next.GraduationThreshold
	}
	if next.MinBuyAmount != base.MinBuyAmount {
		merged.MinBuyAmount = next.MinBuyAmount
	}
	if next.MaxBuyAmount != base.MaxBuyAmount {
		merged.MaxBuyAmount = next.MaxBuyAmount
	}
	if next.InitialVirtualTokenReserves != base.InitialVirtualTokenReserves {
		merged.InitialVirtualTokenReserves = next.InitialVirtualTokenReserves
	}
	if next.InitialVirtualSolReserves != base.InitialVirtualSolReserves {
		merged.InitialVirtualSolReserves = next.InitialVirtualSolReserves
	}
	if next.Paused != base.Paused {
		merged.Paused = next.Paused
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// shiftCounter replays the transaction's counter movement on top of the live
// value.
func shiftCounter(live, base, next uint64) (uint64, error) {
	if next >= base {
		return curvemath.Add(live, next-base)
	}
	return curvemath.Sub(live, base-next)
}
