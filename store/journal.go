package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	bc "github.com/launchlab/bondingcurve-go/bonding_curve"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	mint TEXT NOT NULL,
	trader TEXT NOT NULL,
	direction TEXT NOT NULL,
	amount_in INTEGER NOT NULL,
	amount_out INTEGER NOT NULL,
	fee INTEGER NOT NULL,
	graduated INTEGER NOT NULL DEFAULT 0,
	curve_snapshot BLOB NOT NULL,
	timestamp INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS lifecycle (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	mint TEXT NOT NULL,
	kind TEXT NOT NULL,
	detail TEXT NOT NULL,
	payload BLOB,
	timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_mint ON trades(mint, timestamp);
CREATE INDEX IF NOT EXISTS idx_trades_trader ON trades(trader, timestamp);
CREATE INDEX IF NOT EXISTS idx_lifecycle_mint ON lifecycle(mint, timestamp);
`

// Journal is a SQLite-backed EventSink: an append-only record of every
// executed trade and lifecycle transition, for downstream indexers. Writes are
// retried with exponential backoff because the sink is best-effort and must
// never surface a transient failure into the trade path.
type Journal struct {
	db       *sql.DB
	logger   *zap.Logger
	maxTries uint
}

var _ bc.EventSink = (*Journal)(nil)

// OpenJournal opens (and migrates) a journal database at path. Use ":memory:"
// for tests.
func OpenJournal(path string, logger *zap.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{db: db, logger: logger.Named("journal"), maxTries: 3}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

func (j *Journal) RecordTrade(ctx context.Context, rec bc.TradeRecord) error {
	snapshot, err := EncodeCurve(&bc.CurveState{
		Mint:                 rec.Mint,
		VirtualSolReserves:   rec.VirtualSolReserves,
		VirtualTokenReserves: rec.VirtualTokenReserves,
		RealSolReserves:      rec.RealSolReserves,
		RealTokenReserves:    rec.RealTokenReserves,
	})
	if err != nil {
		return err
	}
	graduated := 0
	if rec.Graduated {
		graduated = 1
	}
	return j.exec(ctx,
		`INSERT INTO trades (id, mint, trader, direction, amount_in, amount_out, fee, graduated, curve_snapshot, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Mint.String(), rec.Trader.String(), rec.Direction.String(),
		rec.AmountIn, rec.AmountOut, rec.Fee, graduated, snapshot, rec.Timestamp)
}

func (j *Journal) RecordLaunch(ctx context.Context, rec bc.LaunchRecord) error {
	payload, err := EncodeLaunch(&rec)
	if err != nil {
		return err
	}
	return j.exec(ctx,
		`INSERT INTO lifecycle (mint, kind, detail, payload, timestamp) VALUES (?, 'launch', ?, ?, ?)`,
		rec.Mint.String(), rec.Symbol, payload, rec.Timestamp)
}

func (j *Journal) RecordGraduation(ctx context.Context, rec bc.GraduationRecord) error {
	return j.exec(ctx,
		`INSERT INTO lifecycle (mint, kind, detail, payload, timestamp) VALUES (?, 'graduation', ?, NULL, ?)`,
		rec.Mint.String(), rec.State.String(), rec.Timestamp)
}

func (j *Journal) exec(ctx context.Context, query string, args ...any) error {
	op := func() (struct{}, error) {
		_, err := j.db.ExecContext(ctx, query, args...)
		return struct{}{}, err
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(j.maxTries))
	if err != nil {
		j.logger.Warn("journal write failed", zap.Error(err))
	}
	return err
}

// LaunchesByMint returns the launch records of one mint in chronological
// order.
func (j *Journal) LaunchesByMint(ctx context.Context, mint solana.PublicKey) ([]bc.LaunchRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT payload FROM lifecycle WHERE mint = ? AND kind = 'launch' ORDER BY timestamp, id`,
		mint.String())
	if err != nil {
		return nil, fmt.Errorf("query launches: %w", err)
	}
	defer rows.Close()

	var out []bc.LaunchRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan launch: %w", err)
		}
		rec, err := DecodeLaunch(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// TradesByMint returns the executed trades of one curve in chronological
// order.
func (j *Journal) TradesByMint(ctx context.Context, mint solana.PublicKey) ([]bc.TradeRecord, error) {
	return j.queryTrades(ctx,
		`SELECT id, mint, trader, direction, amount_in, amount_out, fee, graduated, curve_snapshot, timestamp
		 FROM trades WHERE mint = ? ORDER BY timestamp, id`, mint.String())
}

// TradesByTrader returns one trader's trades across all curves.
func (j *Journal) TradesByTrader(ctx context.Context, trader solana.PublicKey) ([]bc.TradeRecord, error) {
	return j.queryTrades(ctx,
		`SELECT id, mint, trader, direction, amount_in, amount_out, fee, graduated, curve_snapshot, timestamp
		 FROM trades WHERE trader = ? ORDER BY timestamp, id`, trader.String())
}

func (j *Journal) queryTrades(ctx context.Context, query string, arg any) ([]bc.TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []bc.TradeRecord
	for rows.Next() {
		var (
			rec                  bc.TradeRecord
			id, mint, trader, dir string
			graduated            int
			snapshot             []byte
		)
		if err := rows.Scan(&id, &mint, &trader, &dir, &rec.AmountIn, &rec.AmountOut, &rec.Fee, &graduated, &snapshot, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		if err := rec.ID.UnmarshalText([]byte(id)); err != nil {
			return nil, fmt.Errorf("parse trade id: %w", err)
		}
		if rec.Mint, err = solana.PublicKeyFromBase58(mint); err != nil {
			return nil, fmt.Errorf("parse mint: %w", err)
		}
		if rec.Trader, err = solana.PublicKeyFromBase58(trader); err != nil {
			return nil, fmt.Errorf("parse trader: %w", err)
		}
		if dir == "sell" {
			rec.Direction = bc.TradeDirectionSell
		}
		rec.Graduated = graduated != 0
		curve, err := DecodeCurve(snapshot)
		if err != nil {
			return nil, err
		}
		rec.VirtualSolReserves = curve.VirtualSolReserves
		rec.VirtualTokenReserves = curve.VirtualTokenReserves
		rec.RealSolReserves = curve.RealSolReserves
		rec.RealTokenReserves = curve.RealTokenReserves
		out = append(out, rec)
	}
	return out, rows.Err()
}
