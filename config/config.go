package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/aircraft"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/coordinator"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/forcefield"
)

// Config is one scenario's worth of simulation parameters. Numeric fields
// tolerate string values ("inf", scenario-sweep cells) through weakly typed
// decoding.
type Config struct {
	WaterBomberBasesFilename string `json:"water_bomber_bases_filename"`
	UAVBasesFilename         string `json:"uav_bases_filename"`
	WaterTanksFilename       string `json:"water_tanks_filename"`
	LightningFilename        string `json:"lightning_filename"`
	OutputFolderName         string `json:"output_folder_name"`

	UAVCoordinator string `json:"uav_coordinator"`
	WBCoordinator  string `json:"wb_coordinator"`

	UAVMeanTimePower float64 `json:"uav_mean_time_power"`
	WBMeanTimePower  float64 `json:"wb_mean_time_power"`

	// Target maxima are in hours and may be "inf".
	TargetMaximumInspectionTime  float64 `json:"target_maximum_inspection_time"`
	TargetMaximumSuppressionTime float64 `json:"target_maximum_suppression_time"`

	IgnitionProbability float64 `json:"ignition_probability"`
	RandomSeed          int64   `json:"random_seed"`

	UAVs         UAVConfig           `json:"uavs"`
	WaterBombers map[string]WBConfig `json:"water_bombers"`

	UnassignedUAVs *UnassignedConfig `json:"unassigned_uavs"`

	ScenarioParametersFilename string `json:"scenario_parameters_filename"`
	ScenarioName               string `json:"scenario_name"`
}

// UAVConfig describes the UAV fleet.
type UAVConfig struct {
	SpawnLocFile           string  `json:"spawn_loc_file"`
	FlightSpeed            float64 `json:"flight_speed"`
	FuelRefillTime         float64 `json:"fuel_refill_time"`
	Range                  float64 `json:"range"`
	InspectionTime         float64 `json:"inspection_time"`
	PctFuelCutoff          float64 `json:"pct_fuel_cutoff"`
	PrioritisationFunction string  `json:"prioritisation_function"`
}

// Attributes returns the aircraft attribute bundle.
func (c UAVConfig) Attributes() *aircraft.UAVAttributes {
	return &aircraft.UAVAttributes{
		FlightSpeed:    c.FlightSpeed,
		FuelRefillTime: c.FuelRefillTime,
		Range:          c.Range,
		InspectionTime: c.InspectionTime,
		PctFuelCutoff:  c.PctFuelCutoff,
	}
}

// WBConfig describes one water-bomber kind.
type WBConfig struct {
	SpawnLocFile        string  `json:"spawn_loc_file"`
	FlightSpeed         float64 `json:"flight_speed"`
	SuppressionTime     float64 `json:"suppression_time"`
	WaterRefillTime     float64 `json:"water_refill_time"`
	FuelRefillTime      float64 `json:"fuel_refill_time"`
	WaterPerSuppression float64 `json:"water_per_suppression"`
	RangeEmpty          float64 `json:"range_empty"`
	RangeUnderLoad      float64 `json:"range_under_load"`
	WaterCapacity       float64 `json:"water_capacity"`
	PctFuelCutoff       float64 `json:"pct_fuel_cutoff"`
}

// Attributes returns the aircraft attribute bundle for the named kind.
func (c WBConfig) Attributes(kind string) *aircraft.WBAttributes {
	return &aircraft.WBAttributes{
		Kind:                kind,
		FlightSpeed:         c.FlightSpeed,
		SuppressionTime:     c.SuppressionTime,
		WaterRefillTime:     c.WaterRefillTime,
		FuelRefillTime:      c.FuelRefillTime,
		WaterPerSuppression: c.WaterPerSuppression,
		RangeEmpty:          c.RangeEmpty,
		RangeUnderLoad:      c.RangeUnderLoad,
		WaterCapacity:       c.WaterCapacity,
		PctFuelCutoff:       c.PctFuelCutoff,
	}
}

// UnassignedConfig configures the idle-UAV force controller.
type UnassignedConfig struct {
	TargetsFilename         string  `json:"targets_filename"`
	BoundaryPolygonFilename string  `json:"boundary_polygon_filename"`
	DtSeconds               float64 `json:"dt"`
	UAVRepulsionConst       float64 `json:"uav_repulsion_const"`
	UAVRepulsionPower       float64 `json:"uav_repulsion_power"`
	BoundaryRepulsionConst  float64 `json:"boundary_repulsion_const"`
	BoundaryRepulsionPower  float64 `json:"boundary_repulsion_power"`
	TargetAttractionConst   float64 `json:"target_attraction_const"`
	TargetAttractionPower   float64 `json:"target_attraction_power"`
	CentreLat               float64 `json:"centre_lat"`
	CentreLon               float64 `json:"centre_lon"`

	Forecasting *forcefield.ForecastParams `json:"forecasting"`
}

// Params returns the force-field constants.
func (c UnassignedConfig) Params() forcefield.Params {
	return forcefield.Params{
		DtSeconds:              c.DtSeconds,
		UAVRepulsionConst:      c.UAVRepulsionConst,
		UAVRepulsionPower:      c.UAVRepulsionPower,
		BoundaryRepulsionConst: c.BoundaryRepulsionConst,
		BoundaryRepulsionPower: c.BoundaryRepulsionPower,
		TargetAttractionConst:  c.TargetAttractionConst,
		TargetAttractionPower:  c.TargetAttractionPower,
		CentreLat:              c.CentreLat,
		CentreLon:              c.CentreLon,
	}
}

// Scenario is one decoded, validated run configuration plus the directory
// its relative file paths resolve against.
type Scenario struct {
	Index  int
	Name   string
	Config Config
	Dir    string
}

// Filepath resolves a configured filename against the parameters file's
// directory.
func (s Scenario) Filepath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// Load reads the parameters file (JSON or YAML, with BDS_ environment
// overrides) and expands it into one or more scenarios. Without a
// scenario_parameters_filename there is exactly one scenario; with one, every
// row of the sweep table produces a scenario with its "?" placeholders
// filled in.
func Load(path string) ([]Scenario, error) {
	k := koanf.New(".")
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported parameters format: %s", path)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("BDS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "bds_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	raws, err := expandScenarios(k.Raw(), dir)
	if err != nil {
		return nil, err
	}

	scenarios := make([]Scenario, 0, len(raws))
	for i, raw := range raws {
		var cfg Config
		if err := decode(raw.values, &cfg); err != nil {
			return nil, fmt.Errorf("scenario %d: %w", i, err)
		}
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %d: %w", i, err)
		}
		name := raw.name
		if name == "" {
			name = cfg.ScenarioName
		}
		scenarios = append(scenarios, Scenario{Index: i, Name: name, Config: cfg, Dir: dir})
	}
	return scenarios, nil
}

// decode fills cfg from a raw nested map. Weak typing lets sweep cells and
// "inf" strings land in numeric fields.
func decode(values map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}

// SetDefaults applies the documented defaults.
func (c *Config) SetDefaults() {
	if c.UAVMeanTimePower == 0 {
		c.UAVMeanTimePower = 1
	}
	if c.WBMeanTimePower == 0 {
		c.WBMeanTimePower = 1
	}
	if c.TargetMaximumInspectionTime == 0 {
		c.TargetMaximumInspectionTime = math.Inf(1)
	}
	if c.TargetMaximumSuppressionTime == 0 {
		c.TargetMaximumSuppressionTime = math.Inf(1)
	}
}

// Validate rejects configurations the simulation cannot start from.
func (c *Config) Validate() error {
	required := map[string]string{
		"water_bomber_bases_filename": c.WaterBomberBasesFilename,
		"uav_bases_filename":          c.UAVBasesFilename,
		"water_tanks_filename":        c.WaterTanksFilename,
		"lightning_filename":          c.LightningFilename,
		"uavs.spawn_loc_file":         c.UAVs.SpawnLocFile,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("missing required parameter %q", key)
		}
	}
	if _, err := coordinator.ParsePolicy(c.UAVCoordinator); err != nil {
		return fmt.Errorf("uav_coordinator: %w", err)
	}
	if _, err := coordinator.ParsePolicy(c.WBCoordinator); err != nil {
		return fmt.Errorf("wb_coordinator: %w", err)
	}
	if _, err := coordinator.ParsePriorityFunc(c.UAVs.PrioritisationFunction); err != nil {
		return err
	}
	if c.UAVMeanTimePower <= 0 || c.WBMeanTimePower <= 0 {
		return fmt.Errorf("mean time powers must be positive")
	}
	if c.IgnitionProbability < 0 || c.IgnitionProbability > 1 {
		return fmt.Errorf("ignition_probability must be in [0,1], got %v", c.IgnitionProbability)
	}
	if err := c.UAVs.Attributes().Validate(); err != nil {
		return err
	}
	for kind, wb := range c.WaterBombers {
		if wb.SpawnLocFile == "" {
			return fmt.Errorf("water_bombers.%s.spawn_loc_file is required", kind)
		}
		if err := wb.Attributes(kind).Validate(); err != nil {
			return err
		}
	}
	if u := c.UnassignedUAVs; u != nil {
		if u.BoundaryPolygonFilename == "" {
			return fmt.Errorf("unassigned_uavs.boundary_polygon_filename is required")
		}
		if u.DtSeconds <= 0 {
			return fmt.Errorf("unassigned_uavs.dt must be positive, got %v", u.DtSeconds)
		}
	}
	return nil
}

// TargetMaxInspectionMinutes converts the inspection ceiling to minutes.
func (c *Config) TargetMaxInspectionMinutes() float64 { return c.TargetMaximumInspectionTime * 60 }

// TargetMaxSuppressionMinutes converts the suppression ceiling to minutes.
func (c *Config) TargetMaxSuppressionMinutes() float64 { return c.TargetMaximumSuppressionTime * 60 }
