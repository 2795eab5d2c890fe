package events

import (
	"context"
	"time"

	bc "github.com/launchlab/bondingcurve-go/bonding_curve"
)

// Sink adapts a Bus to the engine's EventSink interface. Records are
// published asynchronously so subscribers never slow down a trade.
type Sink struct {
	bus *Bus
}

var _ bc.EventSink = (*Sink)(nil)

func NewSink(bus *Bus) *Sink { return &Sink{bus: bus} }

func (s *Sink) RecordTrade(_ context.Context, rec bc.TradeRecord) error {
	return s.bus.Publish(TradeExecutedEvent{
		BaseEvent: BaseEvent{EventType: TradeExecuted, EventTime: time.Unix(rec.Timestamp, 0)},
		Trade:     rec,
	})
}

func (s *Sink) RecordLaunch(_ context.Context, rec bc.LaunchRecord) error {
	return s.bus.Publish(LaunchCreatedEvent{
		BaseEvent: BaseEvent{EventType: LaunchCreated, EventTime: time.Unix(rec.Timestamp, 0)},
		Launch:    rec,
	})
}

func (s *Sink) RecordGraduation(_ context.Context, rec bc.GraduationRecord) error {
	return s.bus.Publish(CurveGraduatedEvent{
		BaseEvent:        BaseEvent{EventType: typeForState(rec.State), EventTime: time.Unix(rec.Timestamp, 0)},
		Mint:             rec.Mint,
		State:            rec.State,
		FinalSolReserves: rec.FinalSolReserves,
	})
}
