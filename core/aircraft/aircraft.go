package aircraft

import (
	"fmt"
	"math"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
)

// Status is the externally observable state of an aircraft.
type Status int

const (
	StatusIdle Status = iota
	StatusTravelling
	StatusServicing
	StatusRefuelling
	StatusRefillingWater
	StatusHovering
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusTravelling:
		return "travelling"
	case StatusServicing:
		return "servicing"
	case StatusRefuelling:
		return "refuelling"
	case StatusRefillingWater:
		return "refilling water"
	case StatusHovering:
		return "hovering"
	default:
		return "unknown"
	}
}

// UpdateEvent is one record in an aircraft's append-only event log.
type UpdateEvent struct {
	Name              string
	AircraftID        int
	Position          geo.Location
	Time              float64
	DistanceTravelled float64
	DistanceHovered   float64
	Fuel              float64
	CurrentRange      float64
	Water             float64
	Status            Status
	Next              []string
}

// Aircraft is a single UAV or water bomber. The two variants share the state
// machine and queue mechanics and differ only in their attribute bundle and
// service event; exactly one of UAV and WB is non-nil, matching Kind.
type Aircraft struct {
	ID   int
	Kind Kind
	Name string
	UAV  *UAVAttributes
	WB   *WBAttributes

	Position  geo.Location
	Fuel      float64 // fraction of a full tank, in [0,1]
	Water     float64 // litres on board, water bombers only
	Time      float64 // simulated time of the last state change, minutes
	Status    Status
	IdleSince float64

	DistanceTravelled float64
	DistanceHovered   float64

	plan    []Event
	version uint64
	log     []UpdateEvent
}

// NewUAV builds a UAV from its attribute bundle and spawn state.
func NewUAV(id int, attrs *UAVAttributes, spawn geo.Location, initialFuel float64) *Aircraft {
	a := &Aircraft{
		ID:       id,
		Kind:     KindUAV,
		Name:     fmt.Sprintf("uav %d", id),
		UAV:      attrs,
		Position: spawn,
		Fuel:     initialFuel,
		Status:   StatusIdle,
	}
	a.record(nil)
	return a
}

// NewWaterBomber builds a water bomber of the bundle's kind. Water bombers
// spawn with a full water load.
func NewWaterBomber(id int, attrs *WBAttributes, spawn geo.Location, initialFuel float64) *Aircraft {
	a := &Aircraft{
		ID:       id,
		Kind:     KindWaterBomber,
		Name:     fmt.Sprintf("%s %d", attrs.Kind, id),
		WB:       attrs,
		Position: spawn,
		Fuel:     initialFuel,
		Water:    attrs.WaterCapacity,
		Status:   StatusIdle,
	}
	a.record(nil)
	return a
}

// Speed returns the flight speed in km per minute.
func (a *Aircraft) Speed() float64 {
	if a.Kind == KindUAV {
		return a.UAV.FlightSpeed / 60
	}
	return a.WB.FlightSpeed / 60
}

// FuelRefillTime returns the refuel duration in minutes.
func (a *Aircraft) FuelRefillTime() float64 {
	if a.Kind == KindUAV {
		return a.UAV.FuelRefillTime
	}
	return a.WB.FuelRefillTime
}

// PctFuelCutoff returns the minimum fuel fraction the aircraft must preserve
// to reach its next refuel base.
func (a *Aircraft) PctFuelCutoff() float64 {
	if a.Kind == KindUAV {
		return a.UAV.PctFuelCutoff
	}
	return a.WB.PctFuelCutoff
}

// ServiceTime returns the duration of the aircraft's service event
// (inspection or suppression) in minutes.
func (a *Aircraft) ServiceTime() float64 {
	if a.Kind == KindUAV {
		return a.UAV.InspectionTime
	}
	return a.WB.SuppressionTime
}

// rangeAtWater returns the full-tank range in km for the given water load.
func (a *Aircraft) rangeAtWater(water float64) float64 {
	if a.Kind == KindUAV {
		return a.UAV.Range
	}
	return a.WB.RangeEmpty + (a.WB.RangeUnderLoad-a.WB.RangeEmpty)*(water/a.WB.WaterCapacity)
}

// RangeAtFull returns the km one full tank of fuel buys at the current water
// load.
func (a *Aircraft) RangeAtFull() float64 { return a.rangeAtWater(a.Water) }

// RangeAtWater returns the full-tank range in km at the given water load.
func (a *Aircraft) RangeAtWater(water float64) float64 { return a.rangeAtWater(water) }

// CurrentRange returns how far the aircraft can still fly in km.
func (a *Aircraft) CurrentRange() float64 { return a.Fuel * a.RangeAtFull() }

// WBKind returns the water-bomber kind name, or "" for a UAV.
func (a *Aircraft) WBKind() string {
	if a.Kind == KindUAV {
		return ""
	}
	return a.WB.Kind
}

// Version returns the aircraft's current plan version. Queue entries carrying
// an older version are stale.
func (a *Aircraft) Version() uint64 { return a.version }

// Plan returns the aircraft's pending events. The returned slice must not be
// mutated; replanning goes through SetPlan.
func (a *Aircraft) Plan() []Event { return a.plan }

// Idle reports whether the aircraft has no pending events.
func (a *Aircraft) Idle() bool { return len(a.plan) == 0 }

// Log returns the append-only event log.
func (a *Aircraft) Log() []UpdateEvent { return a.log }

// Snapshot captures the dynamic state a plan simulation starts from.
type Snapshot struct {
	Position geo.Location
	Fuel     float64
	Water    float64
	Time     float64
}

// Snapshot returns the aircraft's current dynamic state, with time advanced
// to now if the aircraft has been sitting idle.
func (a *Aircraft) Snapshot(now float64) Snapshot {
	return Snapshot{
		Position: a.Position,
		Fuel:     a.Fuel,
		Water:    a.Water,
		Time:     math.Max(a.Time, now),
	}
}

// SetPlan replaces the aircraft's queue with the given events, computing
// their start and end times from the aircraft's state at now, and bumps the
// plan version so queue entries for the old plan are discarded at pop time.
// The caller is responsible for having checked feasibility.
func (a *Aircraft) SetPlan(events []Event, now float64) {
	snap := a.Snapshot(now)
	t := snap.Time
	pos := snap.Position
	for i := range events {
		events[i].Start = t
		travel := geo.Distance(pos, events[i].Position) / a.Speed()
		end := t + travel + a.serviceDuration(events[i])
		if events[i].Kind == EventHover && events[i].Until > end {
			end = events[i].Until
		}
		events[i].End = end
		t = end
		pos = events[i].Position
	}
	a.plan = events
	a.version++
}

// serviceDuration returns how long the aircraft spends at the event's
// location once arrived.
func (a *Aircraft) serviceDuration(e Event) float64 {
	switch e.Kind {
	case EventInspect, EventSuppress:
		return a.ServiceTime()
	case EventRefuelAt:
		return a.FuelRefillTime()
	case EventRefillWaterAt:
		return a.WB.WaterRefillTime
	default:
		return 0
	}
}

// NextEventEnd returns the completion time of the head event.
func (a *Aircraft) NextEventEnd() float64 { return a.plan[0].End }

// record appends a log entry for the aircraft's current state.
func (a *Aircraft) record(next []string) {
	a.log = append(a.log, UpdateEvent{
		Name:              a.Name,
		AircraftID:        a.ID,
		Position:          a.Position,
		Time:              a.Time,
		DistanceTravelled: a.DistanceTravelled,
		DistanceHovered:   a.DistanceHovered,
		Fuel:              a.Fuel,
		CurrentRange:      a.CurrentRange(),
		Water:             a.Water,
		Status:            a.Status,
		Next:              next,
	})
}
