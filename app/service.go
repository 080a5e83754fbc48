// Package app assembles and runs simulation scenarios from a parameters
// file: it loads the tabular inputs, builds the fleets, coordinators and
// optional force-field controller per scenario, runs them sequentially over
// isolated state, and writes every output file.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/config"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/aircraft"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/coordinator"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/forcefield"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/logger"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/schedule"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/simulation"
	infralogger "github.com/ANUBushfireInitiative/bushfire-drone-simulation/infra/logger"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/pkg/export"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/pkg/stats"
)

// ConfirmFunc asks the user a yes/no question. It is injectable so
// non-interactive runs and tests can decide without a terminal.
type ConfirmFunc func(message string) bool

// Service runs every scenario of one parameters file.
type Service struct {
	paramsPath string
	scenarios  []config.Scenario
	outputDir  string
	confirm    ConfirmFunc
	log        logger.Logger
}

// New loads and validates the parameters file. confirm may be nil, in which
// case a non-empty output folder aborts the run.
func New(paramsPath string, confirm ConfirmFunc) (*Service, error) {
	scenarios, err := config.Load(paramsPath)
	if err != nil {
		return nil, err
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("%s: no scenarios", paramsPath)
	}
	out := scenarios[0].Config.OutputFolderName
	if out == "" {
		out = "output"
	}
	return &Service{
		paramsPath: paramsPath,
		scenarios:  scenarios,
		outputDir:  scenarios[0].Filepath(out),
		confirm:    confirm,
		log:        infralogger.New("app"),
	}, nil
}

// OutputDir returns the resolved output folder.
func (s *Service) OutputDir() string { return s.outputDir }

// Run prepares the output folder, executes every scenario in order and
// writes the summary, gui.json and input copies.
func (s *Service) Run(ctx context.Context) error {
	if err := s.prepareOutputDir(); err != nil {
		return err
	}

	index := export.GUIIndex{
		RunID:       runID(s.paramsPath, s.scenarios),
		SummaryFile: "summary_file.csv",
		InputCopy:   "simulation_input",
	}
	var summaries []export.ScenarioSummary

	for _, sc := range s.scenarios {
		s.log.Infof("running scenario %d (%s)", sc.Index, scenarioName(sc))
		result, err := s.runScenario(ctx, sc)
		if err != nil {
			return fmt.Errorf("scenario %d: %w", sc.Index, err)
		}
		summaries = append(summaries, result.summary)
		files := export.Filenames(scenarioPrefix(sc))
		files.Name = scenarioName(sc)
		index.Scenarios = append(index.Scenarios, files)
	}

	if err := s.writeFile("summary_file.csv", func(w *os.File) error {
		return export.WriteSummaryFile(w, summaries)
	}); err != nil {
		return err
	}
	if err := s.writeFile("gui.json", func(w *os.File) error {
		return export.WriteJSON(w, index)
	}); err != nil {
		return err
	}
	return s.copyInputs()
}

type scenarioResult struct {
	summary export.ScenarioSummary
}

// runScenario builds a fully isolated world for one scenario, runs it and
// writes the scenario's output files.
func (s *Service) runScenario(ctx context.Context, sc config.Scenario) (scenarioResult, error) {
	cfg := sc.Config
	world, err := buildWorld(sc)
	if err != nil {
		return scenarioResult{}, err
	}

	rng := rand.New(rand.NewSource(cfg.RandomSeed))
	simulation.ResolveIgnitions(world.strikes, cfg.IgnitionProbability, rng)

	sim, err := simulation.New(
		world.clock, world.queue,
		world.uavs, world.bombers,
		world.strikes, world.tanks,
		world.uavCoord, world.wbCoord, world.unassigned,
		infralogger.New("simulation"),
	)
	if err != nil {
		return scenarioResult{}, err
	}

	var inspected, suppressed int
	sim.Notifications().Subscribe(func(n simulation.Notification) {
		switch n.Kind {
		case simulation.StrikeInspected:
			inspected++
		case simulation.StrikeSuppressed:
			suppressed++
		}
	})

	if err := sim.Run(ctx); err != nil {
		return scenarioResult{}, err
	}
	s.log.Infof("scenario %d: %d inspected, %d suppressed, %d uninspected, %d unsuppressed",
		sc.Index, inspected, suppressed, sim.Uninspected(), sim.Unsuppressed())

	if err := s.writeScenarioOutputs(sc, sim); err != nil {
		return scenarioResult{}, err
	}

	var inspections, suppressions []float64
	for _, strike := range world.strikes {
		if strike.Inspected {
			inspections = append(inspections, (strike.InspectionTime-strike.SpawnTime)/60)
		}
		if strike.Suppressed {
			suppressions = append(suppressions, (strike.SuppressionTime-strike.InspectionTime)/60)
		}
	}
	return scenarioResult{summary: export.ScenarioSummary{
		Name:         scenarioName(sc),
		Inspections:  stats.Summarise(inspections),
		Suppressions: stats.Summarise(suppressions),
	}}, nil
}

// world is one scenario's isolated state.
type world struct {
	clock      *schedule.Clock
	queue      *schedule.Queue
	uavs       []*aircraft.Aircraft
	bombers    []*aircraft.Aircraft
	strikes    []*model.Strike
	tanks      []*model.WaterTank
	uavCoord   *coordinator.Coordinator
	wbCoord    *coordinator.Coordinator
	unassigned *forcefield.Controller
}

func buildWorld(sc config.Scenario) (*world, error) {
	cfg := sc.Config

	uavBases, err := readUAVBases(sc)
	if err != nil {
		return nil, err
	}
	wbBases, err := readWBBases(sc)
	if err != nil {
		return nil, err
	}
	tanks, err := readTanks(sc)
	if err != nil {
		return nil, err
	}
	strikes, err := readLightning(sc)
	if err != nil {
		return nil, err
	}

	nextID := 0
	uavAttrs := cfg.UAVs.Attributes()
	uavSpawns, err := readSpawns(sc, cfg.UAVs.SpawnLocFile)
	if err != nil {
		return nil, err
	}
	if err := spawnsAtBases(uavSpawns, uavBases, cfg.UAVs.SpawnLocFile); err != nil {
		return nil, err
	}
	var uavs []*aircraft.Aircraft
	for _, spawn := range uavSpawns {
		uavs = append(uavs, aircraft.NewUAV(nextID, uavAttrs, spawn.Position, spawn.InitialFuel))
		nextID++
	}

	var bombers []*aircraft.Aircraft
	kinds := make([]string, 0, len(cfg.WaterBombers))
	for kind := range cfg.WaterBombers {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		wbCfg := cfg.WaterBombers[kind]
		attrs := wbCfg.Attributes(kind)
		spawns, err := readSpawns(sc, wbCfg.SpawnLocFile)
		if err != nil {
			return nil, err
		}
		if err := spawnsAtBases(spawns, basesAdmitting(wbBases, kind), wbCfg.SpawnLocFile); err != nil {
			return nil, err
		}
		for _, spawn := range spawns {
			bombers = append(bombers, aircraft.NewWaterBomber(nextID, attrs, spawn.Position, spawn.InitialFuel))
			nextID++
		}
	}

	clock := &schedule.Clock{}
	queue := schedule.NewQueue()

	uavCoord := coordinator.NewUAVCoordinator(uavs, uavBases, queue, infralogger.New("uav-coordinator"))
	uavCoord.Policy, _ = coordinator.ParsePolicy(cfg.UAVCoordinator)
	uavCoord.Priority, _ = coordinator.ParsePriorityFunc(cfg.UAVs.PrioritisationFunction)
	uavCoord.MeanTimePower = cfg.UAVMeanTimePower
	uavCoord.TargetMax = cfg.TargetMaxInspectionMinutes()

	wbCoord := coordinator.NewWBCoordinator(bombers, wbBases, tanks, queue, infralogger.New("wb-coordinator"))
	wbCoord.Policy, _ = coordinator.ParsePolicy(cfg.WBCoordinator)
	wbCoord.MeanTimePower = cfg.WBMeanTimePower
	wbCoord.TargetMax = cfg.TargetMaxSuppressionMinutes()

	var controller *forcefield.Controller
	if u := cfg.UnassignedUAVs; u != nil {
		polygon, err := readPolygon(sc, u.BoundaryPolygonFilename)
		if err != nil {
			return nil, err
		}
		var targets []model.Target
		if u.TargetsFilename != "" {
			if targets, err = readTargets(sc, u.TargetsFilename); err != nil {
				return nil, err
			}
		}
		var forecast *forcefield.Forecast
		if u.Forecasting != nil {
			centre := geo.Location{Lat: u.CentreLat, Lon: u.CentreLon}
			forecast = forcefield.NewForecast(*u.Forecasting, centre, strikes)
		}
		controller = forcefield.New(u.Params(), uavs, uavBases, targets, polygon, forecast, queue, infralogger.New("forcefield"))
	}

	return &world{
		clock:      clock,
		queue:      queue,
		uavs:       uavs,
		bombers:    bombers,
		strikes:    strikes,
		tanks:      tanks,
		uavCoord:   uavCoord,
		wbCoord:    wbCoord,
		unassigned: controller,
	}, nil
}

func (s *Service) writeScenarioOutputs(sc config.Scenario, sim *simulation.Simulator) error {
	files := export.Filenames(scenarioPrefix(sc))
	if err := s.writeFile(files.SimulationOutput, func(w *os.File) error {
		return export.WriteSimulationOutput(w, sim.Strikes())
	}); err != nil {
		return err
	}
	if err := s.writeFile(files.UAVEventUpdates, func(w *os.File) error {
		return export.WriteEventUpdates(w, sim.UAVs(), false)
	}); err != nil {
		return err
	}
	if err := s.writeFile(files.WBEventUpdates, func(w *os.File) error {
		return export.WriteEventUpdates(w, sim.WaterBombers(), true)
	}); err != nil {
		return err
	}
	return s.writeFile(files.InspectionTimes, func(w *os.File) error {
		return export.WriteJSON(w, export.BuildPlotData(sim.Strikes(), sim.WaterBombers(), sim.Tanks()))
	})
}

func (s *Service) writeFile(name string, write func(*os.File) error) error {
	f, err := os.Create(filepath.Join(s.outputDir, name))
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// prepareOutputDir creates the output folder, asking before clearing a
// non-empty one.
func (s *Service) prepareOutputDir() error {
	entries, err := os.ReadDir(s.outputDir)
	if err == nil && len(entries) > 0 {
		if s.confirm == nil || !s.confirm(fmt.Sprintf("Output folder %s is not empty, overwrite its contents?", s.outputDir)) {
			return fmt.Errorf("output folder %s is not empty", s.outputDir)
		}
		if err := os.RemoveAll(s.outputDir); err != nil {
			return err
		}
	}
	return os.MkdirAll(s.outputDir, 0o755)
}

// copyInputs copies the parameters file and every referenced tabular input
// into simulation_input/, flattened to base names with paths left unchanged
// inside the files.
func (s *Service) copyInputs() error {
	dir := filepath.Join(s.outputDir, "simulation_input")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	seen := map[string]bool{}
	var sources []string
	add := func(path string) {
		if path != "" && !seen[path] {
			seen[path] = true
			sources = append(sources, path)
		}
	}
	add(s.paramsPath)
	for _, sc := range s.scenarios {
		cfg := sc.Config
		add(sc.Filepath(cfg.WaterBomberBasesFilename))
		add(sc.Filepath(cfg.UAVBasesFilename))
		add(sc.Filepath(cfg.WaterTanksFilename))
		add(sc.Filepath(cfg.LightningFilename))
		add(sc.Filepath(cfg.UAVs.SpawnLocFile))
		for _, wb := range cfg.WaterBombers {
			add(sc.Filepath(wb.SpawnLocFile))
		}
		if u := cfg.UnassignedUAVs; u != nil {
			add(sc.Filepath(u.BoundaryPolygonFilename))
			if u.TargetsFilename != "" {
				add(sc.Filepath(u.TargetsFilename))
			}
		}
		if cfg.ScenarioParametersFilename != "" {
			add(sc.Filepath(cfg.ScenarioParametersFilename))
		}
	}
	for _, src := range sources {
		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, filepath.Base(src)), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// runID derives a stable identifier from the run's defining inputs, so
// replays with the same configuration produce byte-identical outputs.
func runID(paramsPath string, scenarios []config.Scenario) string {
	material := []byte(filepath.Base(paramsPath))
	for _, sc := range scenarios {
		material = append(material, []byte(scenarioName(sc))...)
		material = append(material, byte(sc.Config.RandomSeed))
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, material).String()
}

func scenarioName(sc config.Scenario) string {
	if sc.Name != "" {
		return sc.Name
	}
	return fmt.Sprintf("scenario_%d", sc.Index)
}

func scenarioPrefix(sc config.Scenario) string {
	if sc.Name != "" {
		return sc.Name
	}
	return ""
}
