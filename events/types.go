package events

import (
	"time"

	"github.com/gagliardetto/solana-go"

	bc "github.com/launchlab/bondingcurve-go/bonding_curve"
)

// EventType identifies a category of platform event.
type EventType string

const (
	TradeExecuted  EventType = "trade.executed"
	LaunchCreated  EventType = "launch.created"
	CurveGraduated EventType = "curve.graduated"
	CurveMigrated  EventType = "curve.migrated"
)

// Event is the base interface for all platform events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent carries the fields common to all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.EventTime }

// TradeExecutedEvent is published after a buy or sell commits.
type TradeExecutedEvent struct {
	BaseEvent
	Trade bc.TradeRecord
}

// LaunchCreatedEvent is published when a new curve is created.
type LaunchCreatedEvent struct {
	BaseEvent
	Launch bc.LaunchRecord
}

// CurveGraduatedEvent is published when a curve leaves the active state,
// either by crossing the graduation threshold or by migrating.
type CurveGraduatedEvent struct {
	BaseEvent
	Mint             solana.PublicKey
	State            bc.CompletionState
	FinalSolReserves uint64
}

func typeForState(state bc.CompletionState) EventType {
	if state == bc.CompletionStateMigrated {
		return CurveMigrated
	}
	return CurveGraduated
}
