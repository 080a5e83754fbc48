package coordinator

import (
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/aircraft"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
)

// AcceptPrecomputed evaluates, once per scenario, the closest admissible base
// to every strike for every aircraft kind in the fleet. The feasibility check
// of every candidate ends with a trip-home leg from the strike just serviced,
// so this lookup sits on the coordinator's hottest path.
func (c *Coordinator) AcceptPrecomputed(strikes []*model.Strike) {
	c.closestBase = make(map[string]map[int]*model.Base)
	for _, a := range c.fleet {
		kind := a.WBKind()
		if _, done := c.closestBase[kind]; done {
			continue
		}
		bases := c.bases(a)
		byStrike := make(map[int]*model.Base, len(strikes))
		for _, s := range strikes {
			byStrike[s.ID] = nearestOf(bases, s.Position)
		}
		c.closestBase[kind] = byStrike
	}
}

func nearestOf(bases []*model.Base, pos geo.Location) *model.Base {
	best := (*model.Base)(nil)
	bestDist := 0.0
	for _, b := range bases {
		d := geo.Distance(pos, b.Position)
		if best == nil || d < bestDist {
			best, bestDist = b, d
		}
	}
	return best
}

// nearestBaseTo returns the closest admissible base to the given event's end
// position, consulting the precomputed table when the event services a
// strike.
func (c *Coordinator) nearestBaseTo(a *aircraft.Aircraft, ev aircraft.Event) *model.Base {
	if ev.Strike != nil && c.closestBase != nil {
		if byStrike, ok := c.closestBase[a.WBKind()]; ok {
			if b, ok := byStrike[ev.Strike.ID]; ok {
				return b
			}
		}
	}
	return c.nearestBase(a, ev.Position)
}
