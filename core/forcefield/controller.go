package forcefield

import (
	"math"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/aircraft"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/logger"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/schedule"
)

// Params are the force-field constants. Attraction pulls idle UAVs towards
// targets, repulsion pushes them apart from each other and away from the
// boundary.
type Params struct {
	DtSeconds               float64 `json:"dt"`
	UAVRepulsionConst       float64 `json:"uav_repulsion_const"`
	UAVRepulsionPower       float64 `json:"uav_repulsion_power"`
	BoundaryRepulsionConst  float64 `json:"boundary_repulsion_const"`
	BoundaryRepulsionPower  float64 `json:"boundary_repulsion_power"`
	TargetAttractionConst   float64 `json:"target_attraction_const"`
	TargetAttractionPower   float64 `json:"target_attraction_power"`
	CentreLat               float64 `json:"centre_lat"`
	CentreLon               float64 `json:"centre_lon"`
}

// Controller drives unassigned UAVs by an attractive/repulsive field within
// the boundary polygon. It is optional: a nil controller means idle UAVs stay
// where their last task left them.
type Controller struct {
	params   Params
	uavs     []*aircraft.Aircraft
	bases    []*model.Base
	targets  []model.Target
	polygon  *geo.Polygon
	forecast *Forecast
	queue    *schedule.Queue
	log      logger.Logger
}

// New builds the controller.
func New(params Params, uavs []*aircraft.Aircraft, bases []*model.Base, targets []model.Target, polygon *geo.Polygon, forecast *Forecast, queue *schedule.Queue, log logger.Logger) *Controller {
	return &Controller{
		params:   params,
		uavs:     uavs,
		bases:    bases,
		targets:  targets,
		polygon:  polygon,
		forecast: forecast,
		queue:    queue,
		log:      log,
	}
}

// Dt returns the controller period in simulated minutes.
func (c *Controller) Dt() float64 { return c.params.DtSeconds / 60 }

func (c *Controller) centre() geo.Location {
	return geo.Location{Lat: c.params.CentreLat, Lon: c.params.CentreLon}
}

// Step re-plans every idle UAV at time now. Each UAV is directed to fly for
// one period towards the point the field pushes it to, hovers when that point
// would leave the polygon, and recovers straight towards the centre when it
// finds itself outside.
func (c *Controller) Step(now float64) {
	dt := c.Dt()
	targets := c.activeTargets(now)

	// Forces are taken against the fleet as it stands at now, before any UAV
	// is replanned in this step.
	forces := make(map[int][2]float64, len(c.uavs))
	for _, uav := range c.uavs {
		if uav.Idle() && c.polygon.Contains(uav.Position) {
			east, north := c.force(uav, targets)
			forces[uav.ID] = [2]float64{east, north}
		}
	}

	for _, uav := range c.uavs {
		if !uav.Idle() {
			continue
		}
		if !c.polygon.Contains(uav.Position) {
			c.recover(uav, now, dt)
			continue
		}

		f := forces[uav.ID]
		dest := geo.Offset(uav.Position, f[0]*dt, f[1]*dt)
		if !c.polygon.Contains(dest) {
			c.hover(uav, now, dt)
			continue
		}
		c.flyTowards(uav, dest, now, dt, "force-field")
	}
}

// force sums the field contributions at the UAV's position, in km/min east
// and north components.
func (c *Controller) force(uav *aircraft.Aircraft, targets []model.Target) (east, north float64) {
	p := c.params
	for _, tg := range targets {
		r := geo.Distance(uav.Position, tg.Position)
		if r == 0 {
			continue
		}
		e, n := geo.PlanarDelta(uav.Position, tg.Position)
		mag := p.TargetAttractionConst * math.Pow(r, p.TargetAttractionPower)
		east += mag * e / r
		north += mag * n / r
	}
	for _, other := range c.uavs {
		if other.ID == uav.ID || !other.Idle() {
			continue
		}
		r := geo.Distance(uav.Position, other.Position)
		if r == 0 {
			continue
		}
		e, n := geo.PlanarDelta(uav.Position, other.Position)
		mag := p.UAVRepulsionConst * math.Pow(r, p.UAVRepulsionPower)
		east -= mag * e / r
		north -= mag * n / r
	}
	if boundary, r := c.polygon.ClosestBoundaryPoint(uav.Position); r > 0 {
		e, n := geo.PlanarDelta(uav.Position, boundary)
		mag := p.BoundaryRepulsionConst * math.Pow(r, p.BoundaryRepulsionPower)
		east -= mag * e / r
		north -= mag * n / r
	}
	return east, north
}

// activeTargets merges the configured targets with any forecast cells active
// at time now.
func (c *Controller) activeTargets(now float64) []model.Target {
	var active []model.Target
	for _, tg := range c.targets {
		if tg.Active(now) {
			active = append(active, tg)
		}
	}
	if c.forecast != nil {
		active = append(active, c.forecast.Targets(now)...)
	}
	return active
}

// recover routes a UAV that drifted outside the polygon straight back
// towards the centre.
func (c *Controller) recover(uav *aircraft.Aircraft, now, dt float64) {
	c.log.Debugf("%s outside boundary at t=%.1f, recovering towards centre", uav.Name, now)
	c.flyTowards(uav, c.centre(), now, dt, "boundary recovery")
}

// flyTowards plans a one-period hop towards dest, clamped to what the UAV
// can cover in dt, provided the hop still leaves a refuel base in reach.
func (c *Controller) flyTowards(uav *aircraft.Aircraft, dest geo.Location, now, dt float64, reason string) {
	dist := geo.Distance(uav.Position, dest)
	if dist == 0 {
		c.hover(uav, now, dt)
		return
	}
	reach := uav.Speed() * dt
	if reach < dist {
		dest = geo.Intermediate(uav.Position, dest, reach/dist)
	}

	idx := geo.Nearest(baseLocations(c.bases), dest)
	if idx < 0 {
		return
	}
	seq := []aircraft.Event{aircraft.GoTo(dest, reason), aircraft.RefuelAt(c.bases[idx])}
	if _, _, ok := uav.Simulate(uav.Snapshot(now), seq); !ok {
		// Not enough fuel to wander: stay put and let the fleet coordinator
		// send it home.
		return
	}
	uav.SetPlan([]aircraft.Event{aircraft.GoTo(dest, reason)}, now)
	c.queue.Push(uav.NextEventEnd(), uav.ID, uav.Version())
}

// hover keeps the UAV in place for one period without burning fuel.
func (c *Controller) hover(uav *aircraft.Aircraft, now, dt float64) {
	uav.SetPlan([]aircraft.Event{aircraft.Hover(uav.Position, now+dt)}, now)
	c.queue.Push(uav.NextEventEnd(), uav.ID, uav.Version())
}

func baseLocations(bases []*model.Base) []geo.Location {
	locs := make([]geo.Location, len(bases))
	for i, b := range bases {
		locs[i] = b.Position
	}
	return locs
}
