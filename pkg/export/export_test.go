package export

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/aircraft"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/pkg/stats"
)

func TestWriteSimulationOutputRendersNA(t *testing.T) {
	inspected := &model.Strike{ID: 0, Position: geo.Location{Lat: -37, Lon: 145}, SpawnTime: 0}
	if err := inspected.Inspect(1, 12.5); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	untouched := &model.Strike{ID: 1, Position: geo.Location{Lat: -37, Lon: 146}, SpawnTime: 3}

	var buf bytes.Buffer
	if err := WriteSimulationOutput(&buf, []*model.Strike{untouched, inspected}); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "id,lat,lon,spawn_time,inspection_time,suppression_time" {
		t.Fatalf("header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0,") || !strings.Contains(lines[1], "12.5") || !strings.HasSuffix(lines[1], "N/A") {
		t.Fatalf("inspected row: %s", lines[1])
	}
	if !strings.Contains(lines[2], "N/A,N/A") {
		t.Fatalf("untouched row must render N/A twice: %s", lines[2])
	}
}

func TestWriteEventUpdatesChronological(t *testing.T) {
	attrs := &aircraft.UAVAttributes{FlightSpeed: 60, FuelRefillTime: 1, Range: 1000, InspectionTime: 1}
	a := aircraft.NewUAV(0, attrs, geo.Location{Lat: 0, Lon: 0}, 1)
	b := aircraft.NewUAV(1, attrs, geo.Location{Lat: 0, Lon: 1}, 1)

	// b services a strike first, a later; the merged table interleaves them.
	sb := &model.Strike{ID: 0, Position: geo.Location{Lat: 0, Lon: 1.01}}
	sa := &model.Strike{ID: 1, Position: geo.Location{Lat: 0, Lon: 0.5}}
	b.SetPlan([]aircraft.Event{aircraft.Inspect(sb)}, 0)
	if _, err := b.ExecuteHead(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	a.SetPlan([]aircraft.Event{aircraft.Inspect(sa)}, 0)
	if _, err := a.ExecuteHead(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteEventUpdates(&buf, []*aircraft.Aircraft{a, b}, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// Header, two spawn records at t=0, then b's inspection (~2.1), then a's
	// (~56.6).
	if len(lines) != 5 {
		t.Fatalf("row count: %d", len(lines))
	}
	if !strings.HasPrefix(lines[3], "uav 1,") {
		t.Fatalf("b's earlier event must sort first: %s", lines[3])
	}
	if !strings.HasPrefix(lines[4], "uav 0,") {
		t.Fatalf("a's later event must sort last: %s", lines[4])
	}
}

func TestWriteEventUpdatesWaterColumn(t *testing.T) {
	attrs := &aircraft.WBAttributes{
		Kind: "helicopter", FlightSpeed: 60, SuppressionTime: 1, WaterRefillTime: 1,
		FuelRefillTime: 1, WaterPerSuppression: 100, RangeEmpty: 500, RangeUnderLoad: 400,
		WaterCapacity: 300,
	}
	wb := aircraft.NewWaterBomber(0, attrs, geo.Location{}, 1)
	var buf bytes.Buffer
	if err := WriteEventUpdates(&buf, []*aircraft.Aircraft{wb}, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.HasSuffix(lines[0], "water_capacity_L") {
		t.Fatalf("header must carry the water column: %s", lines[0])
	}
	if !strings.HasSuffix(lines[1], ",300") {
		t.Fatalf("spawn row must show the water load: %s", lines[1])
	}
}

func TestBuildPlotDataExcludesInfiniteTanks(t *testing.T) {
	s := &model.Strike{ID: 0, Position: geo.Location{}, SpawnTime: 0}
	if err := s.Inspect(0, 30); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	tanks := []*model.WaterTank{
		{ID: 0, Capacity: math.Inf(1), Level: math.Inf(1)},
		{ID: 1, Capacity: 100, Level: 40},
	}
	data := BuildPlotData([]*model.Strike{s}, nil, tanks)
	if len(data.TankLevels) != 1 || data.TankLevels[0].ID != 1 {
		t.Fatalf("infinite tanks must be excluded: %+v", data.TankLevels)
	}
	if data.TankLevels[0].Initial != 100 || data.TankLevels[0].Final != 40 {
		t.Fatalf("levels: %+v", data.TankLevels[0])
	}
	if len(data.InspectionTimesHours.Counts) == 0 {
		t.Fatalf("inspection histogram missing")
	}
}

func TestWriteSummaryFilePlaceholders(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSummaryFile(&buf, []ScenarioSummary{
		{Name: "base", Inspections: stats.Summarise([]float64{1, 2, 3})},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "base,Inspections,2,3") {
		t.Fatalf("inspection row: %s", out)
	}
	if !strings.Contains(out, "No strikes were suppressed") {
		t.Fatalf("suppression placeholder missing: %s", out)
	}
}

func TestFilenamesPrefix(t *testing.T) {
	files := Filenames("alpha")
	if files.SimulationOutput != "alpha_simulation_output.csv" {
		t.Fatalf("prefixed: %s", files.SimulationOutput)
	}
	bare := Filenames("")
	if bare.UAVEventUpdates != "uav_event_updates.csv" {
		t.Fatalf("unprefixed: %s", bare.UAVEventUpdates)
	}
}

func TestGUIIndexRoundTrips(t *testing.T) {
	index := GUIIndex{RunID: "id", SummaryFile: "summary_file.csv", Scenarios: []GUIScenario{{Name: "a"}}}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, index); err != nil {
		t.Fatalf("write: %v", err)
	}
	var back GUIIndex
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.RunID != "id" || len(back.Scenarios) != 1 || back.Scenarios[0].Name != "a" {
		t.Fatalf("round trip: %+v", back)
	}
}
