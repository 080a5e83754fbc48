package aircraft

import (
	"fmt"
	"math"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
)

const fuelEpsilon = 1e-9

// ExecuteResult reports what happened when an aircraft executed the head of
// its queue.
type ExecuteResult struct {
	Event      Event
	Inspected  *model.Strike
	Suppressed *model.Strike
	// TankEmpty is set when a water refill found the tank too low to arm
	// even one suppression. The aircraft has flown to the tank but drawn
	// nothing; the caller re-routes it.
	TankEmpty bool
	// ShortRefill is set when the refill drew water but could not complete
	// the top-up the plan assumed; the caller re-checks the rest of the
	// queue.
	ShortRefill bool
}

// ExecuteHead pops and performs the aircraft's next event: the aircraft moves
// to the event's location consuming fuel, performs the event for its service
// time, updates position, fuel and water, and appends one log record. The
// returned result carries any strike serviced by the event.
func (a *Aircraft) ExecuteHead() (ExecuteResult, error) {
	if len(a.plan) == 0 {
		return ExecuteResult{}, fmt.Errorf("%s: execute on empty queue", a.Name)
	}
	ev := a.plan[0]
	res := ExecuteResult{Event: ev}

	travel := geo.Distance(a.Position, ev.Position)
	if travel > 0 {
		a.Fuel -= travel / a.RangeAtFull()
		if a.Fuel < -fuelEpsilon {
			return res, fmt.Errorf("%s: fuel went negative (%.6f) travelling to %s", a.Name, a.Fuel, ev.Describe())
		}
		if a.Fuel < 0 {
			a.Fuel = 0
		}
		a.DistanceTravelled += travel
		a.Position = ev.Position
	}
	arrival := ev.Start + travel/a.Speed()

	switch ev.Kind {
	case EventGoTo:
		a.Time = arrival
		a.Status = StatusTravelling
	case EventInspect:
		a.Time = arrival + a.ServiceTime()
		a.Status = StatusServicing
		if err := ev.Strike.Inspect(a.ID, a.Time); err != nil {
			return res, err
		}
		res.Inspected = ev.Strike
	case EventSuppress:
		if a.Water < a.WB.WaterPerSuppression-fuelEpsilon {
			return res, fmt.Errorf("%s: suppressing strike %d with %.1fL on board", a.Name, ev.Strike.ID, a.Water)
		}
		a.Water -= a.WB.WaterPerSuppression
		a.Time = arrival + a.ServiceTime()
		a.Status = StatusServicing
		if err := ev.Strike.Suppress(a.ID, a.Time); err != nil {
			return res, err
		}
		res.Suppressed = ev.Strike
	case EventRefuelAt:
		a.Time = arrival + a.FuelRefillTime()
		a.Fuel = 1
		a.Status = StatusRefuelling
	case EventRefillWaterAt:
		needed := a.WB.WaterCapacity - a.Water
		if needed > 0 && !ev.Tank.Infinite() && a.Water+ev.Tank.Level < a.WB.WaterPerSuppression {
			a.Time = arrival
			a.Status = StatusRefillingWater
			res.TankEmpty = true
			a.popHead()
			return res, nil
		}
		drawn := ev.Tank.Debit(needed)
		if ev.Tank.Level < -fuelEpsilon {
			return res, fmt.Errorf("tank %d level went negative", ev.Tank.ID)
		}
		if drawn < needed-fuelEpsilon {
			res.ShortRefill = true
		}
		a.Water += drawn
		a.Time = arrival + a.WB.WaterRefillTime
		a.Status = StatusRefillingWater
	case EventHover:
		end := math.Max(arrival, ev.Until)
		a.DistanceHovered += (end - arrival) * a.Speed()
		a.Time = end
		a.Status = StatusHovering
	}

	a.popHead()
	return res, nil
}

func (a *Aircraft) popHead() {
	a.plan = a.plan[1:]
	next := make([]string, 0, len(a.plan))
	for _, e := range a.plan {
		next = append(next, e.Describe())
	}
	a.record(next)
	if len(a.plan) == 0 {
		a.Status = StatusIdle
		a.IdleSince = a.Time
	}
}
