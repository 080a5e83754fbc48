package aircraft

import (
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
)

// Simulate walks a candidate sequence of events from the given starting state
// without mutating the aircraft, and reports whether the sequence is
// feasible. A sequence is feasible when
//
//   - projected fuel on arrival at every event stays at or above the
//     aircraft's fuel cutoff, except on arrival at a refuel base where
//     reaching with any non-negative fuel is enough (the cutoff is the
//     reserve kept for exactly that leg), and
//   - every suppression has the required water on board, accounting for
//     intervening refills.
//
// It returns the completion time of each event and the final state. Tank
// levels are not consulted here: water availability races resolve when the
// refill executes.
func (a *Aircraft) Simulate(snap Snapshot, events []Event) (times []float64, final Snapshot, ok bool) {
	cutoff := a.PctFuelCutoff()
	pos, fuel, water, t := snap.Position, snap.Fuel, snap.Water, snap.Time
	times = make([]float64, len(events))

	for i, ev := range events {
		dist := geo.Distance(pos, ev.Position)
		fuel -= dist / a.rangeAtWater(water)
		floor := cutoff
		if ev.Kind == EventRefuelAt {
			floor = 0
		}
		if fuel < floor-fuelEpsilon {
			return nil, Snapshot{}, false
		}
		t += dist / a.Speed()
		pos = ev.Position

		switch ev.Kind {
		case EventInspect:
			t += a.ServiceTime()
		case EventSuppress:
			if water < a.WB.WaterPerSuppression-fuelEpsilon {
				return nil, Snapshot{}, false
			}
			water -= a.WB.WaterPerSuppression
			t += a.ServiceTime()
		case EventRefuelAt:
			fuel = 1
			t += a.FuelRefillTime()
		case EventRefillWaterAt:
			water = a.WB.WaterCapacity
			t += a.WB.WaterRefillTime
		case EventHover:
			if ev.Until > t {
				t = ev.Until
			}
		}
		times[i] = t
	}
	return times, Snapshot{Position: pos, Fuel: fuel, Water: water, Time: t}, true
}
