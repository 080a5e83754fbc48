package aircraft

import (
	"fmt"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
)

// EventKind discriminates the events an aircraft can perform.
type EventKind int

const (
	EventGoTo EventKind = iota
	EventInspect
	EventSuppress
	EventRefuelAt
	EventRefillWaterAt
	EventHover
)

func (k EventKind) String() string {
	switch k {
	case EventGoTo:
		return "goto"
	case EventInspect:
		return "inspect"
	case EventSuppress:
		return "suppress"
	case EventRefuelAt:
		return "refuel"
	case EventRefillWaterAt:
		return "refill water"
	case EventHover:
		return "hover"
	default:
		return "unknown"
	}
}

// Event is one planned task in an aircraft's queue. Exactly one of Strike,
// Base and Tank is set depending on Kind; GoTo carries only a position and a
// reason, Hover carries the time to hover until. Start and End are computed
// when the event is placed in a queue and never mutated afterwards;
// replanning rebuilds the queue instead.
type Event struct {
	Kind     EventKind
	Position geo.Location
	Strike   *model.Strike
	Base     *model.Base
	Tank     *model.WaterTank
	Until    float64
	Reason   string

	Start float64
	End   float64
}

// GoTo returns a travel event to the given location.
func GoTo(loc geo.Location, reason string) Event {
	return Event{Kind: EventGoTo, Position: loc, Reason: reason}
}

// Inspect returns an inspection event for the given strike.
func Inspect(s *model.Strike) Event {
	return Event{Kind: EventInspect, Position: s.Position, Strike: s}
}

// Suppress returns a suppression event for the given strike.
func Suppress(s *model.Strike) Event {
	return Event{Kind: EventSuppress, Position: s.Position, Strike: s}
}

// RefuelAt returns a refuel event at the given base.
func RefuelAt(b *model.Base) Event {
	return Event{Kind: EventRefuelAt, Position: b.Position, Base: b}
}

// RefillWaterAt returns a water refill event at the given tank.
func RefillWaterAt(t *model.WaterTank) Event {
	return Event{Kind: EventRefillWaterAt, Position: t.Position, Tank: t}
}

// Hover returns a hover-in-place event lasting until the given time.
func Hover(loc geo.Location, until float64) Event {
	return Event{Kind: EventHover, Position: loc, Until: until}
}

// Describe returns a short human-readable label for event-update output.
func (e Event) Describe() string {
	switch e.Kind {
	case EventInspect:
		return fmt.Sprintf("inspect strike %d", e.Strike.ID)
	case EventSuppress:
		return fmt.Sprintf("suppress strike %d", e.Strike.ID)
	case EventRefuelAt:
		return fmt.Sprintf("refuel at base %d", e.Base.ID)
	case EventRefillWaterAt:
		return fmt.Sprintf("refill water at tank %d", e.Tank.ID)
	case EventHover:
		return fmt.Sprintf("hover until %.1f", e.Until)
	default:
		if e.Reason != "" {
			return fmt.Sprintf("goto (%.4f, %.4f) %s", e.Position.Lat, e.Position.Lon, e.Reason)
		}
		return fmt.Sprintf("goto (%.4f, %.4f)", e.Position.Lat, e.Position.Lon)
	}
}
