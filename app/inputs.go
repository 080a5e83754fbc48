package app

import (
	"fmt"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/config"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/internal/csvio"
)

// spawnBaseTolKM is how far a spawn may sit from a base while still counting
// as "at" it, absorbing coordinate round-off in the input files.
const spawnBaseTolKM = 0.1

// spawnsAtBases checks the "starting at base" column against the configured
// bases: a spawn claiming to start at a base must actually sit on an
// admissible one. Violations are schema errors and stop the run.
func spawnsAtBases(spawns []csvio.SpawnState, bases []*model.Base, file string) error {
	for i, sp := range spawns {
		if !sp.StartingAtBase {
			continue
		}
		found := false
		for _, b := range bases {
			if geo.Distance(sp.Position, b.Position) <= spawnBaseTolKM {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s: row %d starts at base but no base is at (%.4f, %.4f)",
				file, i+1, sp.Position.Lat, sp.Position.Lon)
		}
	}
	return nil
}

// basesAdmitting filters bases to those an aircraft kind may refuel at.
func basesAdmitting(bases []*model.Base, kind string) []*model.Base {
	var admitted []*model.Base
	for _, b := range bases {
		if b.Admits(kind) {
			admitted = append(admitted, b)
		}
	}
	return admitted
}

func readUAVBases(sc config.Scenario) ([]*model.Base, error) {
	return csvio.ReadUAVBases(sc.Filepath(sc.Config.UAVBasesFilename))
}

func readWBBases(sc config.Scenario) ([]*model.Base, error) {
	return csvio.ReadWBBases(sc.Filepath(sc.Config.WaterBomberBasesFilename))
}

func readTanks(sc config.Scenario) ([]*model.WaterTank, error) {
	return csvio.ReadWaterTanks(sc.Filepath(sc.Config.WaterTanksFilename))
}

func readLightning(sc config.Scenario) ([]*model.Strike, error) {
	return csvio.ReadLightning(sc.Filepath(sc.Config.LightningFilename))
}

func readSpawns(sc config.Scenario, name string) ([]csvio.SpawnState, error) {
	return csvio.ReadSpawns(sc.Filepath(name))
}

func readTargets(sc config.Scenario, name string) ([]model.Target, error) {
	return csvio.ReadTargets(sc.Filepath(name))
}

func readPolygon(sc config.Scenario, name string) (*geo.Polygon, error) {
	return csvio.ReadPolygon(sc.Filepath(name))
}
