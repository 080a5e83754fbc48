package coordinator

import (
	"math"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/aircraft"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
)

// candidate is one feasible placement of a new strike: the aircraft, the full
// replacement plan, and the metrics the policies select on.
type candidate struct {
	aircraft *aircraft.Aircraft
	plan     []aircraft.Event
	// arrival and completion of the new strike's service event.
	arrival    float64
	completion float64
	// aggDelay sums the response-time increase inflicted on strikes already
	// scheduled on this aircraft.
	aggDelay float64
	// maxResponse is the worst resulting response time across this
	// aircraft's strikes, the new one included.
	maxResponse float64
	// cost is the mean-time objective: sum of weighted powered deltas.
	cost float64
	// exceedsCeiling marks candidates whose resulting worst response breaks
	// the soft target maximum.
	exceedsCeiling bool
}

// candidatesFor enumerates every feasible insertion of strike s into a's
// queue. With tailOnly set only appending at the tail is considered (the
// Simple policy). Support stops are tried from cheap to expensive: the bare
// service first, then with a just-in-time refuel, then (water bombers) with a
// tank visit, then tank and base combined.
func (c *Coordinator) candidatesFor(a *aircraft.Aircraft, s *model.Strike, now float64, tailOnly bool) []candidate {
	snap := a.Snapshot(now)
	current := a.Plan()

	// Response times already promised to strikes in the current plan.
	oldResp := make(map[int]float64)
	if len(current) > 0 {
		times, _, ok := a.Simulate(snap, current)
		if !ok {
			// The standing plan must stay feasible; never build on top of a
			// broken baseline.
			return nil
		}
		for i, ev := range current {
			if ev.Strike != nil {
				oldResp[ev.Strike.ID] = times[i] - c.responseStart(ev.Strike)
			}
		}
	}

	firstK := 0
	if tailOnly {
		firstK = len(current)
	}

	var out []candidate
	for k := firstK; k <= len(current); k++ {
		variants := c.variantsAt(a, s, snap, current, k)
		for _, variant := range variants {
			seq := make([]aircraft.Event, 0, len(current)+len(variant))
			seq = append(seq, current[:k]...)
			seq = append(seq, variant...)
			seq = append(seq, current[k:]...)
			if cand, ok := c.evaluate(a, s, snap, seq, oldResp); ok {
				out = append(out, cand)
			}
		}
	}
	return out
}

// variantsAt returns the stop sequences that could realise the new service at
// position k. More expensive variants are only generated when every cheaper
// class is infeasible at this position.
func (c *Coordinator) variantsAt(a *aircraft.Aircraft, s *model.Strike, snap aircraft.Snapshot, current []aircraft.Event, k int) [][]aircraft.Event {
	svc := c.service(s)
	bases := c.bases(a)

	feasible := func(variant []aircraft.Event) bool {
		seq := make([]aircraft.Event, 0, len(current)+len(variant))
		seq = append(seq, current[:k]...)
		seq = append(seq, variant...)
		seq = append(seq, current[k:]...)
		_, ok := c.simulateWithReturn(a, snap, seq)
		return ok
	}

	if feasible([]aircraft.Event{svc}) {
		return [][]aircraft.Event{{svc}}
	}

	var out [][]aircraft.Event
	for _, b := range bases {
		if v := []aircraft.Event{aircraft.RefuelAt(b), svc}; feasible(v) {
			out = append(out, v)
		}
	}
	if len(out) > 0 || c.tanks == nil {
		return out
	}

	// Water bombers short on water go via a tank, and via a base as well when
	// fuel will not stretch to tank and strike. Only tanks that can complete
	// the top-up at this point of the queue are considered.
	prefixWater := c.waterAfter(a, snap.Water, current[:k])
	for _, t := range c.tanks {
		if !tankUsable(t, a, prefixWater) {
			continue
		}
		if v := []aircraft.Event{aircraft.RefillWaterAt(t), svc}; feasible(v) {
			out = append(out, v)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, t := range c.tanks {
		if !tankUsable(t, a, prefixWater) {
			continue
		}
		for _, b := range bases {
			if v := []aircraft.Event{aircraft.RefillWaterAt(t), aircraft.RefuelAt(b), svc}; feasible(v) {
				out = append(out, v)
			}
			if v := []aircraft.Event{aircraft.RefuelAt(b), aircraft.RefillWaterAt(t), svc}; feasible(v) {
				out = append(out, v)
			}
		}
	}
	return out
}

// waterAfter walks a queue prefix and returns the water on board at its end.
func (c *Coordinator) waterAfter(a *aircraft.Aircraft, start float64, events []aircraft.Event) float64 {
	water := start
	for _, ev := range events {
		switch ev.Kind {
		case aircraft.EventSuppress:
			water -= a.WB.WaterPerSuppression
		case aircraft.EventRefillWaterAt:
			water = a.WB.WaterCapacity
		}
	}
	return water
}

// tankUsable reports whether the tank holds enough water to top the bomber
// up from the given load.
func tankUsable(t *model.WaterTank, a *aircraft.Aircraft, waterOnBoard float64) bool {
	return t.Infinite() || t.Level >= a.WB.WaterCapacity-waterOnBoard
}

// simulateWithReturn simulates seq plus the trip home: the plan must leave
// the aircraft able to reach its nearest admissible refuel base.
func (c *Coordinator) simulateWithReturn(a *aircraft.Aircraft, snap aircraft.Snapshot, seq []aircraft.Event) ([]float64, bool) {
	times, final, ok := a.Simulate(snap, seq)
	if !ok {
		return nil, false
	}
	if len(seq) > 0 && seq[len(seq)-1].Kind == aircraft.EventRefuelAt {
		return times, true
	}
	var base *model.Base
	if len(seq) > 0 {
		base = c.nearestBaseTo(a, seq[len(seq)-1])
	} else {
		base = c.nearestBase(a, final.Position)
	}
	if base == nil {
		return nil, false
	}
	if final.Fuel-geo.Distance(final.Position, base.Position)/a.RangeAtWater(final.Water) < 0 {
		return nil, false
	}
	return times, true
}

// evaluate computes the selection metrics for a full candidate plan.
func (c *Coordinator) evaluate(a *aircraft.Aircraft, s *model.Strike, snap aircraft.Snapshot, seq []aircraft.Event, oldResp map[int]float64) (candidate, bool) {
	times, ok := c.simulateWithReturn(a, snap, seq)
	if !ok {
		return candidate{}, false
	}

	cand := candidate{aircraft: a, plan: seq, maxResponse: math.Inf(-1)}
	for i, ev := range seq {
		if ev.Strike == nil {
			continue
		}
		resp := times[i] - c.responseStart(ev.Strike)
		if resp > cand.maxResponse {
			cand.maxResponse = resp
		}
		if ev.Strike.ID == s.ID {
			cand.completion = times[i]
			cand.arrival = times[i] - a.ServiceTime()
			cand.cost += c.Priority.apply(powClamped(resp, c.MeanTimePower), s.Weight())
			continue
		}
		delta := resp - oldResp[ev.Strike.ID]
		cand.aggDelay += delta
		cand.cost += c.Priority.apply(powClamped(delta, c.MeanTimePower), ev.Strike.Weight())
	}
	return cand, true
}

func powClamped(v, p float64) float64 {
	if v < 0 {
		v = 0
	}
	if p == 1 {
		return v
	}
	return math.Pow(v, p)
}
