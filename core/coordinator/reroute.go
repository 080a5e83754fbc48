package coordinator

import (
	"sort"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/aircraft"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
)

// RerouteDryTank re-plans a water bomber that flew to a tank and found it too
// low to arm the next suppression. The bomber is sent to the next-nearest
// tank that can complete its top-up; the refill's time slides forward and
// propagates to every downstream event in its queue. When no such tank
// exists, the pending suppression is abandoned with a warning; the rest of
// the queue is kept when it is still feasible and dropped otherwise.
func (c *Coordinator) RerouteDryTank(a *aircraft.Aircraft, now float64) {
	c.rerouteThroughTank(a, append([]aircraft.Event(nil), a.Plan()...), now)
}

// RecheckAfterRefill re-validates a bomber's queue after a refill drew less
// water than the plan assumed. When the remaining plan still carries enough
// water it is simply rescheduled; otherwise the bomber routes through
// another tank, as for a dry one.
func (c *Coordinator) RecheckAfterRefill(a *aircraft.Aircraft, now float64) {
	remaining := append([]aircraft.Event(nil), a.Plan()...)
	if len(remaining) == 0 {
		return
	}
	if _, ok := c.simulateWithReturn(a, a.Snapshot(now), remaining); ok {
		c.commit(a, remaining, now)
		return
	}
	c.log.Warnf("%s refill came up short of the planned load, replanning", a.Name)
	c.rerouteThroughTank(a, remaining, now)
}

func (c *Coordinator) rerouteThroughTank(a *aircraft.Aircraft, remaining []aircraft.Event, now float64) {
	snap := a.Snapshot(now)

	type tankDist struct {
		tank *model.WaterTank
		dist float64
	}
	var byDist []tankDist
	for _, t := range c.tanks {
		if tankUsable(t, a, a.Water) {
			byDist = append(byDist, tankDist{t, geo.Distance(a.Position, t.Position)})
		}
	}
	sort.SliceStable(byDist, func(i, j int) bool { return byDist[i].dist < byDist[j].dist })

	for _, td := range byDist {
		cand := append([]aircraft.Event{aircraft.RefillWaterAt(td.tank)}, remaining...)
		if _, ok := c.simulateWithReturn(a, snap, cand); ok {
			c.log.Warnf("%s re-routing to tank %d, planned tank could not refill it", a.Name, td.tank.ID)
			c.commit(a, cand, now)
			return
		}
	}

	// No reachable water anywhere: the next suppression cannot happen.
	for i, ev := range remaining {
		if ev.Kind == aircraft.EventSuppress {
			c.log.Warnf("strike %d unsuppressed: no tank can refill %s", ev.Strike.ID, a.Name)
			rest := append(remaining[:i:i], remaining[i+1:]...)
			if _, ok := c.simulateWithReturn(a, snap, rest); ok {
				c.commit(a, rest, now)
			} else {
				c.commit(a, nil, now)
			}
			c.EnsureReserve(a, now)
			return
		}
	}
	c.commit(a, remaining, now)
}
