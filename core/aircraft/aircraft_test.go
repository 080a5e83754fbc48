package aircraft

import (
	"math"
	"testing"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
)

func testUAVAttrs() *UAVAttributes {
	return &UAVAttributes{
		FlightSpeed:    60, // 1 km/min
		FuelRefillTime: 10,
		Range:          120,
		InspectionTime: 2,
		PctFuelCutoff:  0,
	}
}

func testWBAttrs() *WBAttributes {
	return &WBAttributes{
		Kind:                "helicopter",
		FlightSpeed:         120,
		SuppressionTime:     3,
		WaterRefillTime:     5,
		FuelRefillTime:      20,
		WaterPerSuppression: 100,
		RangeEmpty:          600,
		RangeUnderLoad:      400,
		WaterCapacity:       300,
		PctFuelCutoff:       0.1,
	}
}

func TestUAVFuelConsumptionLinear(t *testing.T) {
	a := NewUAV(0, testUAVAttrs(), geo.Location{Lat: 0, Lon: 0}, 1)
	strike := &model.Strike{ID: 0, Position: geo.Location{Lat: 0, Lon: 0.3}}
	a.SetPlan([]Event{Inspect(strike)}, 0)
	if _, err := a.ExecuteHead(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	dist := geo.Distance(geo.Location{Lat: 0, Lon: 0}, strike.Position)
	wantFuel := 1 - dist/120
	if math.Abs(a.Fuel-wantFuel) > 1e-9 {
		t.Fatalf("fuel: got %v, want %v", a.Fuel, wantFuel)
	}
	if math.Abs(a.DistanceTravelled-dist) > 1e-9 {
		t.Fatalf("distance travelled: got %v, want %v", a.DistanceTravelled, dist)
	}
}

func TestWBRangeInterpolatesWithLoad(t *testing.T) {
	a := NewWaterBomber(1, testWBAttrs(), geo.Location{}, 1)
	if got := a.RangeAtFull(); math.Abs(got-400) > 1e-9 {
		t.Fatalf("full load range: got %v", got)
	}
	a.Water = 0
	if got := a.RangeAtFull(); math.Abs(got-600) > 1e-9 {
		t.Fatalf("empty range: got %v", got)
	}
	a.Water = 150
	if got := a.RangeAtFull(); math.Abs(got-500) > 1e-9 {
		t.Fatalf("half load range: got %v", got)
	}
}

func TestSetPlanComputesContiguousTimes(t *testing.T) {
	a := NewUAV(0, testUAVAttrs(), geo.Location{Lat: 0, Lon: 0}, 1)
	s1 := &model.Strike{ID: 0, Position: geo.Location{Lat: 0, Lon: 0.1}}
	s2 := &model.Strike{ID: 1, Position: geo.Location{Lat: 0, Lon: 0.2}}
	a.SetPlan([]Event{Inspect(s1), Inspect(s2)}, 5)

	plan := a.Plan()
	if plan[0].Start != 5 {
		t.Fatalf("first event starts at plan time, got %v", plan[0].Start)
	}
	d1 := geo.Distance(geo.Location{Lat: 0, Lon: 0}, s1.Position)
	wantEnd := 5 + d1 + 2 // 1 km/min plus inspection time
	if math.Abs(plan[0].End-wantEnd) > 1e-9 {
		t.Fatalf("first end: got %v, want %v", plan[0].End, wantEnd)
	}
	if plan[1].Start != plan[0].End {
		t.Fatalf("events must be contiguous")
	}
	if plan[1].End <= plan[1].Start {
		t.Fatalf("second event must take time")
	}
}

func TestSetPlanBumpsVersion(t *testing.T) {
	a := NewUAV(0, testUAVAttrs(), geo.Location{}, 1)
	v := a.Version()
	a.SetPlan([]Event{GoTo(geo.Location{Lat: 0, Lon: 0.1}, "patrol")}, 0)
	if a.Version() != v+1 {
		t.Fatalf("version not bumped")
	}
}

func TestExecuteInspectRecordsStrike(t *testing.T) {
	a := NewUAV(3, testUAVAttrs(), geo.Location{Lat: 0, Lon: 0}, 1)
	strike := &model.Strike{ID: 9, Position: geo.Location{Lat: 0, Lon: 0.1}, SpawnTime: 0}
	a.SetPlan([]Event{Inspect(strike)}, 0)

	res, err := a.ExecuteHead()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Inspected != strike {
		t.Fatalf("expected inspected strike in result")
	}
	if !strike.Inspected {
		t.Fatalf("strike not marked inspected")
	}
	wantTime := geo.Distance(geo.Location{Lat: 0, Lon: 0}, strike.Position) + 2
	if math.Abs(strike.InspectionTime-wantTime) > 1e-9 {
		t.Fatalf("inspection time: got %v, want %v", strike.InspectionTime, wantTime)
	}
	if !a.Idle() {
		t.Fatalf("aircraft should be idle after its only event")
	}
}

func TestExecuteRefuelRestoresFuel(t *testing.T) {
	a := NewUAV(0, testUAVAttrs(), geo.Location{Lat: 0, Lon: 0}, 0.4)
	base := &model.Base{ID: 0, Position: geo.Location{Lat: 0, Lon: 0}, AllowAll: true}
	a.SetPlan([]Event{RefuelAt(base)}, 0)
	if _, err := a.ExecuteHead(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if a.Fuel != 1 {
		t.Fatalf("fuel after refill: got %v", a.Fuel)
	}
	if a.Time != 10 {
		t.Fatalf("refill takes fuel_refill_time, got %v", a.Time)
	}
}

func TestExecuteHoverIsFuelFree(t *testing.T) {
	a := NewUAV(0, testUAVAttrs(), geo.Location{Lat: 0, Lon: 0}, 0.5)
	a.SetPlan([]Event{Hover(a.Position, 30)}, 0)
	if _, err := a.ExecuteHead(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if a.Fuel != 0.5 {
		t.Fatalf("hover must not burn fuel, got %v", a.Fuel)
	}
	if a.Time != 30 {
		t.Fatalf("hover lasts until its deadline, got %v", a.Time)
	}
	if a.DistanceHovered != 30 {
		t.Fatalf("distance hovered: got %v, want 30", a.DistanceHovered)
	}
}

func TestExecuteSuppressDebitsWater(t *testing.T) {
	a := NewWaterBomber(0, testWBAttrs(), geo.Location{Lat: 0, Lon: 0}, 1)
	strike := &model.Strike{ID: 0, Position: geo.Location{Lat: 0, Lon: 0.01}, Ignited: true}
	if err := strike.Inspect(99, 0); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	a.SetPlan([]Event{Suppress(strike)}, 0)
	res, err := a.ExecuteHead()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Suppressed != strike || !strike.Suppressed {
		t.Fatalf("strike not suppressed")
	}
	if a.Water != 200 {
		t.Fatalf("water: got %v, want 200", a.Water)
	}
}

func TestExecuteRefillDebitsTank(t *testing.T) {
	a := NewWaterBomber(0, testWBAttrs(), geo.Location{Lat: 0, Lon: 0}, 1)
	a.Water = 50
	tank := &model.WaterTank{ID: 0, Position: geo.Location{Lat: 0, Lon: 0.01}, Capacity: 1000, Level: 1000}
	a.SetPlan([]Event{RefillWaterAt(tank)}, 0)
	if _, err := a.ExecuteHead(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if a.Water != 300 {
		t.Fatalf("water after refill: got %v", a.Water)
	}
	if tank.Level != 750 {
		t.Fatalf("tank level: got %v, want 750", tank.Level)
	}
}

func TestExecuteRefillDryTankReportsReroute(t *testing.T) {
	a := NewWaterBomber(0, testWBAttrs(), geo.Location{Lat: 0, Lon: 0}, 1)
	a.Water = 0
	tank := &model.WaterTank{ID: 0, Position: geo.Location{Lat: 0, Lon: 0.01}, Capacity: 300, Level: 0}
	a.SetPlan([]Event{RefillWaterAt(tank)}, 0)
	res, err := a.ExecuteHead()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.TankEmpty {
		t.Fatalf("expected TankEmpty")
	}
	if a.Water != 0 {
		t.Fatalf("no water should have been drawn")
	}
	if a.Position != tank.Position {
		t.Fatalf("the bomber still flew to the tank")
	}
}

func TestExecuteRefillLowTankReportsReroute(t *testing.T) {
	// The tank is not dry, but holds too little to arm even one suppression.
	a := NewWaterBomber(0, testWBAttrs(), geo.Location{Lat: 0, Lon: 0}, 1)
	a.Water = 0
	tank := &model.WaterTank{ID: 0, Position: geo.Location{Lat: 0, Lon: 0.01}, Capacity: 300, Level: 50}
	a.SetPlan([]Event{RefillWaterAt(tank)}, 0)
	res, err := a.ExecuteHead()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.TankEmpty {
		t.Fatalf("a tank below water_per_suppression must trigger a reroute")
	}
	if a.Water != 0 || tank.Level != 50 {
		t.Fatalf("nothing may be drawn from a skipped tank: water %v, level %v", a.Water, tank.Level)
	}
}

func TestExecuteRefillPartialDrawReportsShort(t *testing.T) {
	// Enough for a suppression, not enough for the planned full top-up.
	a := NewWaterBomber(0, testWBAttrs(), geo.Location{Lat: 0, Lon: 0}, 1)
	a.Water = 0
	tank := &model.WaterTank{ID: 0, Position: geo.Location{Lat: 0, Lon: 0.01}, Capacity: 300, Level: 150}
	a.SetPlan([]Event{RefillWaterAt(tank)}, 0)
	res, err := a.ExecuteHead()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.TankEmpty {
		t.Fatalf("a tank covering the next suppression must still be used")
	}
	if !res.ShortRefill {
		t.Fatalf("a partial draw must be reported for a queue re-check")
	}
	if a.Water != 150 || tank.Level != 0 {
		t.Fatalf("partial draw: water %v, level %v", a.Water, tank.Level)
	}
}

func TestExecuteNegativeFuelIsInvariantViolation(t *testing.T) {
	a := NewUAV(0, testUAVAttrs(), geo.Location{Lat: 0, Lon: 0}, 0.01)
	strike := &model.Strike{ID: 0, Position: geo.Location{Lat: 0, Lon: 1}}
	a.SetPlan([]Event{Inspect(strike)}, 0)
	if _, err := a.ExecuteHead(); err == nil {
		t.Fatalf("expected fuel invariant error")
	}
}

func TestSimulateFeasibility(t *testing.T) {
	attrs := testUAVAttrs()
	attrs.PctFuelCutoff = 0.2
	a := NewUAV(0, attrs, geo.Location{Lat: 0, Lon: 0}, 1)
	near := &model.Strike{ID: 0, Position: geo.Location{Lat: 0, Lon: 0.2}} // ~22 km
	far := &model.Strike{ID: 1, Position: geo.Location{Lat: 0, Lon: 1}}   // ~111 km

	if _, _, ok := a.Simulate(a.Snapshot(0), []Event{Inspect(near)}); !ok {
		t.Fatalf("near strike should be feasible")
	}
	// 111 km leaves less than the 20% cutoff of a 120 km tank.
	if _, _, ok := a.Simulate(a.Snapshot(0), []Event{Inspect(far)}); ok {
		t.Fatalf("far strike should violate the fuel cutoff")
	}
	base := &model.Base{ID: 0, Position: geo.Location{Lat: 0, Lon: 1}, AllowAll: true}
	// Reaching a refuel base may eat into the reserve.
	if _, _, ok := a.Simulate(a.Snapshot(0), []Event{RefuelAt(base)}); !ok {
		t.Fatalf("flying to a base on the reserve should be allowed")
	}
}

func TestSimulateTracksWater(t *testing.T) {
	a := NewWaterBomber(0, testWBAttrs(), geo.Location{Lat: 0, Lon: 0}, 1)
	s1 := &model.Strike{ID: 0, Position: geo.Location{Lat: 0, Lon: 0.01}}
	s2 := &model.Strike{ID: 1, Position: geo.Location{Lat: 0, Lon: 0.02}}
	s3 := &model.Strike{ID: 2, Position: geo.Location{Lat: 0, Lon: 0.03}}
	s4 := &model.Strike{ID: 3, Position: geo.Location{Lat: 0, Lon: 0.04}}
	// Capacity 300, 100 per suppression: three are fine, four are not.
	if _, _, ok := a.Simulate(a.Snapshot(0), []Event{Suppress(s1), Suppress(s2), Suppress(s3)}); !ok {
		t.Fatalf("three suppressions should fit the water load")
	}
	if _, _, ok := a.Simulate(a.Snapshot(0), []Event{Suppress(s1), Suppress(s2), Suppress(s3), Suppress(s4)}); ok {
		t.Fatalf("fourth suppression must fail without a refill")
	}
	tank := &model.WaterTank{ID: 0, Position: geo.Location{Lat: 0, Lon: 0.035}, Capacity: 10000, Level: 10000}
	if _, _, ok := a.Simulate(a.Snapshot(0), []Event{Suppress(s1), Suppress(s2), Suppress(s3), RefillWaterAt(tank), Suppress(s4)}); !ok {
		t.Fatalf("a refill in between should make it feasible")
	}
}

func TestLogIsAppendOnlyAndOrdered(t *testing.T) {
	a := NewUAV(0, testUAVAttrs(), geo.Location{Lat: 0, Lon: 0}, 1)
	s := &model.Strike{ID: 0, Position: geo.Location{Lat: 0, Lon: 0.1}}
	base := &model.Base{ID: 0, Position: geo.Location{Lat: 0, Lon: 0}, AllowAll: true}
	a.SetPlan([]Event{Inspect(s), RefuelAt(base)}, 0)
	for !a.Idle() {
		if _, err := a.ExecuteHead(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	}
	log := a.Log()
	if len(log) != 3 { // spawn record plus one per event
		t.Fatalf("log length: got %d", len(log))
	}
	for i := 1; i < len(log); i++ {
		if log[i].Time < log[i-1].Time {
			t.Fatalf("log times must be non-decreasing")
		}
	}
}
