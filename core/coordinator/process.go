package coordinator

import (
	"math"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/aircraft"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
)

// ProcessNewStrike assigns the strike to one aircraft of the fleet under the
// coordinator's policy, inserting any required refuel or tank visits. It
// returns false when no aircraft can feasibly reach the strike; the strike
// then stays unserviced and the fleet keeps its standing plans.
func (c *Coordinator) ProcessNewStrike(s *model.Strike, now float64) bool {
	tailOnly := c.Policy == PolicySimple

	var cands []candidate
	for _, a := range c.fleet {
		cands = append(cands, c.candidatesFor(a, s, now, tailOnly)...)
	}
	if len(cands) == 0 {
		c.log.Warnf("no aircraft can reach strike %d", s.ID)
		c.EnsureReserveAll(now)
		return false
	}

	c.classifyCeiling(cands)
	best := cands[0]
	for _, cand := range cands[1:] {
		if c.better(cand, best) {
			best = cand
		}
	}
	c.commit(best.aircraft, best.plan, now)
	c.log.Debugf("strike %d assigned to %s (arrival %.2f)", s.ID, best.aircraft.Name, best.arrival)

	if c.Policy == PolicyReprocessMaxTime {
		c.reprocessWorst(now)
	}
	c.EnsureReserveAll(now)
	return true
}

// classifyCeiling marks candidates whose worst resulting response time on
// the affected aircraft exceeds the soft target ceiling. Schedules the
// candidate does not touch are left out of the classification: the ceiling
// steers new work away from overloaded aircraft rather than giving up once
// any strike anywhere has blown it.
func (c *Coordinator) classifyCeiling(cands []candidate) {
	if math.IsInf(c.TargetMax, 1) {
		return
	}
	if c.Policy != PolicyMinimiseMeanTime && c.Policy != PolicyReprocessMaxTime {
		return
	}
	for i := range cands {
		cands[i].exceedsCeiling = cands[i].maxResponse > c.TargetMax
	}
}

// better reports whether a should be preferred over b. Candidates are
// generated in ascending aircraft id and insertion index order, so keeping b
// on ties resolves every tie towards the lowest id and earliest position.
func (c *Coordinator) better(a, b candidate) bool {
	switch c.Policy {
	case PolicySimple:
		return a.arrival < b.arrival
	case PolicyInsertion:
		if a.arrival != b.arrival {
			return a.arrival < b.arrival
		}
		return a.aggDelay < b.aggDelay
	default: // MinimiseMeanTime, ReprocessMaxTime
		if a.exceedsCeiling != b.exceedsCeiling {
			return !a.exceedsCeiling
		}
		return a.cost < b.cost
	}
}

// reprocessWorst removes the scheduled strike with the largest planned
// response time and re-inserts it under the MinimiseMeanTime rule. It runs at
// most once per new strike, and restores the original plan when the strike
// cannot be re-placed.
func (c *Coordinator) reprocessWorst(now float64) {
	var (
		owner     *aircraft.Aircraft
		strike    *model.Strike
		worstResp = math.Inf(-1)
	)
	for _, a := range c.fleet {
		plan := a.Plan()
		if len(plan) == 0 {
			continue
		}
		times, _, ok := a.Simulate(a.Snapshot(now), plan)
		if !ok {
			continue
		}
		for i, ev := range plan {
			if ev.Strike == nil {
				continue
			}
			if resp := times[i] - c.responseStart(ev.Strike); resp > worstResp {
				worstResp, owner, strike = resp, a, ev.Strike
			}
		}
	}
	if strike == nil {
		return
	}

	backup := append([]aircraft.Event(nil), owner.Plan()...)
	trimmed := make([]aircraft.Event, 0, len(backup))
	for _, ev := range backup {
		if ev.Strike != nil && ev.Strike.ID == strike.ID {
			continue
		}
		trimmed = append(trimmed, ev)
	}
	c.commit(owner, trimmed, now)

	var cands []candidate
	for _, a := range c.fleet {
		cands = append(cands, c.candidatesFor(a, strike, now, false)...)
	}
	if len(cands) == 0 {
		// Nowhere better for it: put the original plan back.
		c.commit(owner, backup, now)
		return
	}
	c.classifyCeiling(cands)
	best := cands[0]
	for _, cand := range cands[1:] {
		if c.better(cand, best) {
			best = cand
		}
	}
	c.commit(best.aircraft, best.plan, now)
	c.log.Debugf("reprocessed strike %d onto %s", strike.ID, best.aircraft.Name)
}
