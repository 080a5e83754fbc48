// Package export writes the per-scenario result files: the strike outcome
// table, the merged aircraft event-update tables, plot data, the sweep
// summary and the gui.json index.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/aircraft"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/pkg/stats"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSimulationOutput writes one row per strike with its inspection and
// suppression outcome. Missing times render as N/A.
func WriteSimulationOutput(w io.Writer, strikes []*model.Strike) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "lat", "lon", "spawn_time", "inspection_time", "suppression_time"}); err != nil {
		return err
	}
	sorted := append([]*model.Strike(nil), strikes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, s := range sorted {
		inspection := "N/A"
		if s.Inspected {
			inspection = formatFloat(s.InspectionTime)
		}
		suppression := "N/A"
		if s.Suppressed {
			suppression = formatFloat(s.SuppressionTime)
		}
		rec := []string{
			strconv.Itoa(s.ID),
			formatFloat(s.Position.Lat),
			formatFloat(s.Position.Lon),
			formatFloat(s.SpawnTime),
			inspection,
			suppression,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEventUpdates writes one row per aircraft event transition, merged
// across the fleet in global chronological order. Water-bomber tables carry
// the extra water_capacity_L column.
func WriteEventUpdates(w io.Writer, fleet []*aircraft.Aircraft, withWater bool) error {
	header := []string{
		"aircraft_id", "lat", "lon", "time_min",
		"distance_travelled_km", "distance_hovered_km",
		"fuel_pct", "current_range_km", "status", "next_updates",
	}
	if withWater {
		header = append(header, "water_capacity_L")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	type entry struct {
		update aircraft.UpdateEvent
		owner  int
		seq    int
	}
	var entries []entry
	for _, a := range fleet {
		for i, update := range a.Log() {
			entries = append(entries, entry{update: update, owner: a.ID, seq: i})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].update.Time != entries[j].update.Time {
			return entries[i].update.Time < entries[j].update.Time
		}
		if entries[i].owner != entries[j].owner {
			return entries[i].owner < entries[j].owner
		}
		return entries[i].seq < entries[j].seq
	})

	for _, e := range entries {
		u := e.update
		next := ""
		for i, desc := range u.Next {
			if i > 0 {
				next += "; "
			}
			next += desc
		}
		rec := []string{
			u.Name,
			formatFloat(u.Position.Lat),
			formatFloat(u.Position.Lon),
			formatFloat(u.Time),
			formatFloat(u.DistanceTravelled),
			formatFloat(u.DistanceHovered),
			formatFloat(u.Fuel * 100),
			formatFloat(u.CurrentRange),
			u.Status.String(),
			next,
		}
		if withWater {
			rec = append(rec, formatFloat(u.Water))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// TankLevels pairs a finite tank's level before and after the scenario.
type TankLevels struct {
	ID      int     `json:"id"`
	Initial float64 `json:"initial"`
	Final   float64 `json:"final"`
}

// PlotData is the binned data behind the four result histograms. The visual
// front-end renders it; the simulation only reports it.
type PlotData struct {
	InspectionTimesHours  stats.Histogram `json:"inspection_times_hours"`
	SuppressionTimesHours stats.Histogram `json:"suppression_times_hours"`
	StrikesPerBomber      map[string]int  `json:"strikes_per_bomber"`
	TankLevels            []TankLevels    `json:"tank_levels"`
}

// DefaultBins is how many bins the latency histograms use.
const DefaultBins = 20

// BuildPlotData collects the four histograms from a finished scenario.
// Infinite-capacity tanks are excluded from the tank-level comparison.
func BuildPlotData(strikes []*model.Strike, bombers []*aircraft.Aircraft, tanks []*model.WaterTank) PlotData {
	var inspections, suppressions []float64
	for _, s := range strikes {
		if s.Inspected {
			inspections = append(inspections, (s.InspectionTime-s.SpawnTime)/60)
		}
		if s.Suppressed {
			suppressions = append(suppressions, (s.SuppressionTime-s.InspectionTime)/60)
		}
	}
	perBomber := make(map[string]int, len(bombers))
	for _, b := range bombers {
		perBomber[b.Name] = 0
	}
	for _, s := range strikes {
		if !s.Suppressed {
			continue
		}
		for _, b := range bombers {
			if b.ID == s.SuppressedBy {
				perBomber[b.Name]++
			}
		}
	}
	var levels []TankLevels
	for _, t := range tanks {
		if t.Infinite() {
			continue
		}
		levels = append(levels, TankLevels{ID: t.ID, Initial: t.Capacity, Final: t.Level})
	}
	return PlotData{
		InspectionTimesHours:  stats.Bin(inspections, DefaultBins),
		SuppressionTimesHours: stats.Bin(suppressions, DefaultBins),
		StrikesPerBomber:      perBomber,
		TankLevels:            levels,
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ScenarioSummary is one scenario's row pair in the sweep summary file.
type ScenarioSummary struct {
	Name         string
	Inspections  stats.Summary
	Suppressions stats.Summary
}

// WriteSummaryFile writes the cross-scenario summary: per scenario, one
// inspection row and one suppression row of mean/max/percentile response
// times in hours.
func WriteSummaryFile(w io.Writer, scenarios []ScenarioSummary) error {
	cw := csv.NewWriter(w)
	header := []string{
		"Scenario Name", "",
		"Mean time (hr)", "Max time (hr)",
		"99th percentile (hr)", "90th percentile (hr)", "50th percentile (hr)",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := func(name, label string, s stats.Summary, none string) []string {
		if s.Count == 0 {
			return []string{name, label, none}
		}
		return []string{
			name, label,
			formatFloat(s.Mean), formatFloat(s.Max),
			formatFloat(s.P99), formatFloat(s.P90), formatFloat(s.P50),
		}
	}
	for _, sc := range scenarios {
		if err := cw.Write(row(sc.Name, "Inspections", sc.Inspections, "No strikes were inspected")); err != nil {
			return err
		}
		if err := cw.Write(row("", "Suppressions", sc.Suppressions, "No strikes were suppressed")); err != nil {
			return err
		}
		if err := cw.Write([]string{}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// GUIScenario indexes one scenario's output files for the viewer.
type GUIScenario struct {
	Name             string `json:"name"`
	SimulationOutput string `json:"simulation_output"`
	UAVEventUpdates  string `json:"uav_event_updates"`
	WBEventUpdates   string `json:"wb_event_updates"`
	InspectionTimes  string `json:"inspection_times"`
}

// GUIIndex is the gui.json payload: a stable run identifier plus pointers to
// every produced file, enabling replay in the visual front-end.
type GUIIndex struct {
	RunID       string        `json:"run_id"`
	SummaryFile string        `json:"summary_file"`
	InputCopy   string        `json:"simulation_input"`
	Scenarios   []GUIScenario `json:"scenarios"`
}

// Filenames derives a scenario's output file names from its prefix.
func Filenames(prefix string) GUIScenario {
	if prefix != "" {
		prefix += "_"
	}
	return GUIScenario{
		SimulationOutput: prefix + "simulation_output.csv",
		UAVEventUpdates:  prefix + "uav_event_updates.csv",
		WBEventUpdates:   prefix + "wb_event_updates.csv",
		InspectionTimes:  prefix + "inspection_times.json",
	}
}
