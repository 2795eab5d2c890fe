package bonding_curve

import (
	"time"

	"go.uber.org/zap"
)

// engine carries the collaborators every service needs.
type engine struct {
	ledger Ledger
	sink   EventSink
	clock  Clock
	logger *zap.Logger
}

// Client groups the high-level services of the bonding-curve market maker.
type Client struct {
	Admin     *AdminService
	Launch    *LaunchService
	Trade     *TradeService
	Migration *MigrationService
	Quote     *QuoteService
}

// NewClient constructs a client around the given collaborators. A nil sink
// discards records; a nil clock uses wall time.
func NewClient(ledger Ledger, sink EventSink, clock Clock, logger *zap.Logger) *Client {
	if sink == nil {
		sink = NopSink{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &engine{ledger: ledger, sink: sink, clock: clock, logger: logger}
	return &Client{
		Admin:     &AdminService{engine: e, logger: logger.Named("admin")},
		Launch:    &LaunchService{engine: e, logger: logger.Named("launch")},
		Trade:     &TradeService{engine: e, logger: logger.Named("trade")},
		Migration: &MigrationService{engine: e, logger: logger.Named("migration")},
		Quote:     &QuoteService{engine: e},
	}
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().Unix() }
