package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/aircraft"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/coordinator"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/forcefield"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/logger"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/schedule"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/internal/eventbus"
)

// Simulator advances one scenario from the first strike to quiescence. It is
// single-threaded and cooperative: simulated time only moves when the next
// dated event is taken from the global queue, and coordinator replanning at
// time t always completes before anything later than t runs.
type Simulator struct {
	clock *schedule.Clock
	queue *schedule.Queue

	uavs    []*aircraft.Aircraft
	bombers []*aircraft.Aircraft
	fleet   map[int]*aircraft.Aircraft

	strikes []*model.Strike
	tanks   []*model.WaterTank

	uavCoord   *coordinator.Coordinator
	wbCoord    *coordinator.Coordinator
	unassigned *forcefield.Controller

	log    logger.Logger
	notify *eventbus.Bus[Notification]

	uninspected  int
	unsuppressed int
}

// New assembles a simulator over entities the caller has already built and
// wired to the shared queue. Strikes must carry resolved ignition outcomes;
// see ResolveIgnitions.
func New(clock *schedule.Clock, queue *schedule.Queue, uavs, bombers []*aircraft.Aircraft, strikes []*model.Strike, tanks []*model.WaterTank, uavCoord, wbCoord *coordinator.Coordinator, unassigned *forcefield.Controller, log logger.Logger) (*Simulator, error) {
	fleet := make(map[int]*aircraft.Aircraft, len(uavs)+len(bombers))
	for _, a := range append(append([]*aircraft.Aircraft(nil), uavs...), bombers...) {
		if _, dup := fleet[a.ID]; dup {
			return nil, fmt.Errorf("duplicate aircraft id %d", a.ID)
		}
		fleet[a.ID] = a
	}
	sorted := append([]*model.Strike(nil), strikes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SpawnTime < sorted[j].SpawnTime })
	return &Simulator{
		clock:      clock,
		queue:      queue,
		uavs:       uavs,
		bombers:    bombers,
		fleet:      fleet,
		strikes:    sorted,
		tanks:      tanks,
		uavCoord:   uavCoord,
		wbCoord:    wbCoord,
		unassigned: unassigned,
		log:        log,
	}, nil
}

// ResolveIgnitions fixes the ignition outcome of every strike that did not
// carry one in the input, drawing a Bernoulli from the strike's override
// probability or defaultProb. Strikes are visited in id order so a given seed
// always reproduces the same outcomes.
func ResolveIgnitions(strikes []*model.Strike, defaultProb float64, rng *rand.Rand) {
	sorted := append([]*model.Strike(nil), strikes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, s := range sorted {
		if s.HasOutcome {
			continue
		}
		p := defaultProb
		if s.HasProbability {
			p = s.IgnitionProbability
		}
		s.Ignited = rng.Float64() < p
	}
}

// Run advances the scenario until the strike stream is exhausted and every
// aircraft is idle. Cancelling the context halts cleanly at the next event
// boundary.
func (s *Simulator) Run(ctx context.Context) error {
	s.uavCoord.AcceptPrecomputed(s.strikes)
	s.wbCoord.AcceptPrecomputed(s.strikes)
	s.uavCoord.EnsureReserveAll(0)
	s.wbCoord.EnsureReserveAll(0)

	next := 0
	tick := math.Inf(1)
	if s.unassigned != nil && len(s.strikes) > 0 {
		tick = s.strikes[0].SpawnTime
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Warnf("simulation interrupted at t=%.2f min", s.clock.Now())
			return ctx.Err()
		default:
		}

		queueTime := math.Inf(1)
		if entry, ok := s.queue.PeekMin(); ok {
			queueTime = entry.Time
		}
		spawnTime := math.Inf(1)
		if next < len(s.strikes) {
			spawnTime = s.strikes[next].SpawnTime
		} else {
			tick = math.Inf(1)
		}

		switch {
		case math.IsInf(queueTime, 1) && math.IsInf(spawnTime, 1) && math.IsInf(tick, 1):
			return nil
		case queueTime <= spawnTime && queueTime <= tick:
			if err := s.step(); err != nil {
				return err
			}
		case spawnTime <= tick:
			if err := s.clock.Advance(spawnTime); err != nil {
				return err
			}
			strike := s.strikes[next]
			next++
			s.notify.Publish(Notification{Kind: StrikeSpawned, Strike: strike, Time: spawnTime})
			if !s.uavCoord.ProcessNewStrike(strike, spawnTime) {
				s.uninspected++
				s.notify.Publish(Notification{Kind: StrikeUninspected, Strike: strike, Time: spawnTime})
			}
		default:
			if err := s.clock.Advance(tick); err != nil {
				return err
			}
			s.unassigned.Step(tick)
			tick += s.unassigned.Dt()
		}
	}
}

// step pops and executes the next aircraft event, discarding entries
// superseded by a replan.
func (s *Simulator) step() error {
	entry, ok := s.queue.PopMin()
	if !ok {
		return fmt.Errorf("step on empty queue")
	}
	a := s.fleet[entry.AircraftID]
	if a == nil {
		return fmt.Errorf("queue entry for unknown aircraft %d", entry.AircraftID)
	}
	if entry.Version != a.Version() {
		return nil
	}
	if err := s.clock.Advance(entry.Time); err != nil {
		return err
	}

	res, err := a.ExecuteHead()
	if err != nil {
		return fmt.Errorf("invariant violation: %w", err)
	}

	switch {
	case res.TankEmpty:
		s.wbCoord.RerouteDryTank(a, s.clock.Now())
		if a.Idle() {
			s.wbCoord.EnsureReserve(a, s.clock.Now())
		}
	case res.ShortRefill:
		s.wbCoord.RecheckAfterRefill(a, s.clock.Now())
		if a.Idle() {
			s.wbCoord.EnsureReserve(a, s.clock.Now())
		}
	case !a.Idle():
		s.queue.Push(a.NextEventEnd(), a.ID, a.Version())
	default:
		s.coordinatorFor(a).EnsureReserve(a, s.clock.Now())
	}

	if res.Inspected != nil {
		s.notify.Publish(Notification{Kind: StrikeInspected, Strike: res.Inspected, Time: s.clock.Now()})
		if res.Inspected.Ignited && !s.wbCoord.ProcessNewStrike(res.Inspected, s.clock.Now()) {
			s.unsuppressed++
			s.notify.Publish(Notification{Kind: StrikeUnsuppressed, Strike: res.Inspected, Time: s.clock.Now()})
		}
	}
	if res.Suppressed != nil {
		s.notify.Publish(Notification{Kind: StrikeSuppressed, Strike: res.Suppressed, Time: s.clock.Now()})
	}
	return nil
}

func (s *Simulator) coordinatorFor(a *aircraft.Aircraft) *coordinator.Coordinator {
	if a.Kind == aircraft.KindUAV {
		return s.uavCoord
	}
	return s.wbCoord
}

// Strikes returns the scenario's strikes in spawn order.
func (s *Simulator) Strikes() []*model.Strike { return s.strikes }

// UAVs returns the UAV fleet.
func (s *Simulator) UAVs() []*aircraft.Aircraft { return s.uavs }

// WaterBombers returns the water-bomber fleet.
func (s *Simulator) WaterBombers() []*aircraft.Aircraft { return s.bombers }

// Tanks returns the scenario's water tanks.
func (s *Simulator) Tanks() []*model.WaterTank { return s.tanks }

// Uninspected returns how many strikes no UAV could reach.
func (s *Simulator) Uninspected() int { return s.uninspected }

// Unsuppressed returns how many ignitions no water bomber could reach.
func (s *Simulator) Unsuppressed() int { return s.unsuppressed }
