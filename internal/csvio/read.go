package csvio

import (
	"fmt"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
)

// ReadUAVBases loads UAV bases; every UAV base admits every UAV.
func ReadUAVBases(path string) ([]*model.Base, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	bases := make([]*model.Base, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		loc, err := readLocation(f, i)
		if err != nil {
			return nil, err
		}
		bases = append(bases, &model.Base{ID: i, Position: loc, AllowAll: true})
	}
	return bases, nil
}

// ReadWBBases loads water-bomber bases. A bomber kind may refuel at a base
// when the "all" column or the column named after the kind holds a truthy
// value on that base's row.
func ReadWBBases(path string) ([]*model.Base, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	var kindColumns []string
	for _, name := range f.Columns() {
		if name != "latitude" && name != "longitude" && name != "all" {
			kindColumns = append(kindColumns, name)
		}
	}
	bases := make([]*model.Base, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		loc, err := readLocation(f, i)
		if err != nil {
			return nil, err
		}
		base := &model.Base{ID: i, Position: loc, Kinds: make(map[string]bool)}
		if f.HasColumn("all") {
			if base.AllowAll, err = f.Bool("all", i); err != nil {
				return nil, err
			}
		}
		for _, kind := range kindColumns {
			admitted, err := f.Bool(kind, i)
			if err != nil {
				return nil, err
			}
			if admitted {
				base.Kinds[kind] = true
			}
		}
		bases = append(bases, base)
	}
	return bases, nil
}

// ReadWaterTanks loads tanks; capacity may be "inf".
func ReadWaterTanks(path string) ([]*model.WaterTank, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	tanks := make([]*model.WaterTank, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		loc, err := readLocation(f, i)
		if err != nil {
			return nil, err
		}
		capacity, err := f.Float("capacity", i)
		if err != nil {
			return nil, err
		}
		tanks = append(tanks, &model.WaterTank{ID: i, Position: loc, Capacity: capacity, Level: capacity})
	}
	return tanks, nil
}

// ReadLightning loads the strike stream. The optional risk_rating and ignited
// columns attach a prioritisation weight and a fixed ignition outcome.
func ReadLightning(path string) ([]*model.Strike, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	hasRisk := f.HasColumn("risk_rating")
	hasIgnited := f.HasColumn("ignited")
	strikes := make([]*model.Strike, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		loc, err := readLocation(f, i)
		if err != nil {
			return nil, err
		}
		spawn, err := f.Time("time", i)
		if err != nil {
			return nil, err
		}
		s := &model.Strike{ID: i, Position: loc, SpawnTime: spawn}
		if hasRisk {
			cell, err := f.Cell("risk_rating", i)
			if err != nil {
				return nil, err
			}
			if cell != "" {
				if s.RiskRating, err = f.Float("risk_rating", i); err != nil {
					return nil, err
				}
				if s.RiskRating < 0 || s.RiskRating > 1 {
					return nil, fmt.Errorf("%s: risk_rating on row %d outside [0,1]", path, i+1)
				}
				s.HasRisk = true
			}
		}
		if hasIgnited {
			if s.Ignited, err = f.Bool("ignited", i); err != nil {
				return nil, err
			}
			s.HasOutcome = true
		}
		strikes = append(strikes, s)
	}
	return strikes, nil
}

// SpawnState is one aircraft spawn row.
type SpawnState struct {
	Position       geo.Location
	StartingAtBase bool
	InitialFuel    float64
}

// ReadSpawns loads aircraft spawn locations and initial state.
func ReadSpawns(path string) ([]SpawnState, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	spawns := make([]SpawnState, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		loc, err := readLocation(f, i)
		if err != nil {
			return nil, err
		}
		atBase, err := f.Bool("starting at base", i)
		if err != nil {
			return nil, err
		}
		fuel, err := f.Float("initial fuel", i)
		if err != nil {
			return nil, err
		}
		if fuel < 0 || fuel > 1 {
			return nil, fmt.Errorf("%s: initial fuel on row %d outside [0,1]", path, i+1)
		}
		spawns = append(spawns, SpawnState{Position: loc, StartingAtBase: atBase, InitialFuel: fuel})
	}
	return spawns, nil
}

// ReadTargets loads attraction targets; finish_time may be "inf".
func ReadTargets(path string) ([]model.Target, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	targets := make([]model.Target, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		loc, err := readLocation(f, i)
		if err != nil {
			return nil, err
		}
		start, err := f.Time("start_time", i)
		if err != nil {
			return nil, err
		}
		finish, err := f.Time("finish_time", i)
		if err != nil {
			return nil, err
		}
		targets = append(targets, model.Target{Position: loc, StartTime: start, FinishTime: finish})
	}
	return targets, nil
}

// ReadPolygon loads a boundary polygon, one vertex per row, implicitly
// closed.
func ReadPolygon(path string) (*geo.Polygon, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	vertices := make([]geo.Location, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		loc, err := readLocation(f, i)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, loc)
	}
	poly, err := geo.NewPolygon(vertices)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return poly, nil
}

func readLocation(f *File, row int) (geo.Location, error) {
	lat, err := f.Float("latitude", row)
	if err != nil {
		return geo.Location{}, err
	}
	lon, err := f.Float("longitude", row)
	if err != nil {
		return geo.Location{}, err
	}
	return geo.Location{Lat: lat, Lon: lon}, nil
}
