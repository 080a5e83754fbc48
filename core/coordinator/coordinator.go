package coordinator

import (
	"math"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/aircraft"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/logger"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/schedule"
)

// Coordinator assigns service tasks to one fleet under a selected policy.
// The same machinery serves both fleets: for UAVs the service event is an
// inspection and the response clock starts at the strike's spawn; for water
// bombers the service event is a suppression, the response clock starts at
// the inspection, and tank visits are inserted when water runs short.
//
// The coordinator holds the fleet as a slice in the order it was given and
// pushes fresh head events onto the global queue after every replan.
type Coordinator struct {
	Policy        Policy
	Priority      PriorityFunc
	MeanTimePower float64
	// TargetMax is the soft response-time ceiling in minutes; +Inf disables
	// it.
	TargetMax float64

	fleet []*aircraft.Aircraft
	bases func(*aircraft.Aircraft) []*model.Base
	tanks []*model.WaterTank

	service       func(*model.Strike) aircraft.Event
	responseStart func(*model.Strike) float64

	queue *schedule.Queue
	log   logger.Logger

	// closestBase caches, per aircraft kind, the nearest admissible base to
	// each strike. See AcceptPrecomputed.
	closestBase map[string]map[int]*model.Base
}

// NewUAVCoordinator builds the coordinator for the UAV fleet. Every UAV base
// admits every UAV.
func NewUAVCoordinator(fleet []*aircraft.Aircraft, bases []*model.Base, queue *schedule.Queue, log logger.Logger) *Coordinator {
	return &Coordinator{
		Policy:        PolicySimple,
		MeanTimePower: 1,
		TargetMax:     math.Inf(1),
		fleet:         fleet,
		bases:         func(*aircraft.Aircraft) []*model.Base { return bases },
		service:       aircraft.Inspect,
		responseStart: func(s *model.Strike) float64 { return s.SpawnTime },
		queue:         queue,
		log:           log,
	}
}

// NewWBCoordinator builds the coordinator for the water-bomber fleet. Base
// admission is per water-bomber kind and tanks are shared across the fleet.
func NewWBCoordinator(fleet []*aircraft.Aircraft, bases []*model.Base, tanks []*model.WaterTank, queue *schedule.Queue, log logger.Logger) *Coordinator {
	return &Coordinator{
		Policy:        PolicySimple,
		MeanTimePower: 1,
		TargetMax:     math.Inf(1),
		fleet:         fleet,
		bases: func(a *aircraft.Aircraft) []*model.Base {
			var admitted []*model.Base
			for _, b := range bases {
				if b.Admits(a.WBKind()) {
					admitted = append(admitted, b)
				}
			}
			return admitted
		},
		tanks:         tanks,
		service:       aircraft.Suppress,
		responseStart: func(s *model.Strike) float64 { return s.InspectionTime },
		queue:         queue,
		log:           log,
	}
}

// nearestBase returns the admissible base closest to pos, or nil when the
// aircraft has nowhere to refuel.
func (c *Coordinator) nearestBase(a *aircraft.Aircraft, pos geo.Location) *model.Base {
	bases := c.bases(a)
	best := (*model.Base)(nil)
	bestDist := math.Inf(1)
	for _, b := range bases {
		if d := geo.Distance(pos, b.Position); d < bestDist {
			best, bestDist = b, d
		}
	}
	return best
}

// commit installs the chosen plan on its aircraft and pushes the new head
// into the global queue under the bumped plan version.
func (c *Coordinator) commit(a *aircraft.Aircraft, plan []aircraft.Event, now float64) {
	a.SetPlan(plan, now)
	if !a.Idle() {
		c.queue.Push(a.NextEventEnd(), a.ID, a.Version())
	}
}

// EnsureReserve routes an idle aircraft to its nearest admissible base when
// sitting any longer would eat into the fuel reserve needed to reach one.
func (c *Coordinator) EnsureReserve(a *aircraft.Aircraft, now float64) {
	if !a.Idle() {
		return
	}
	base := c.nearestBase(a, a.Position)
	if base == nil {
		return
	}
	projected := a.Fuel - geo.Distance(a.Position, base.Position)/a.RangeAtFull()
	if projected >= a.PctFuelCutoff() || a.Fuel >= 1 {
		return
	}
	trip := []aircraft.Event{aircraft.RefuelAt(base)}
	if _, _, ok := a.Simulate(a.Snapshot(now), trip); !ok {
		c.log.Warnf("%s stranded: no refuel base in reach", a.Name)
		return
	}
	c.commit(a, trip, now)
}

// EnsureReserveAll applies EnsureReserve across the fleet.
func (c *Coordinator) EnsureReserveAll(now float64) {
	for _, a := range c.fleet {
		c.EnsureReserve(a, now)
	}
}
