package forcefield

import (
	"math"
	"sort"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/geo"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
)

// ForecastParams configure strike-history forecasting. Cells of side Radius
// km that saw at least MinInTarget strikes in the trailing LookAhead window
// become attraction targets.
type ForecastParams struct {
	RadiusKM    float64 `json:"radius"`
	MinInTarget int     `json:"min_in_target"`
	// LookAheadMinutes is the width of the trailing history window.
	LookAheadMinutes float64 `json:"look_ahead"`
}

// Forecast derives extra attraction targets from the strike history.
type Forecast struct {
	params  ForecastParams
	origin  geo.Location
	strikes []*model.Strike
}

// NewForecast builds a forecast over the scenario's strike arena. The origin
// anchors the grid; the polygon centre is the natural choice.
func NewForecast(params ForecastParams, origin geo.Location, strikes []*model.Strike) *Forecast {
	return &Forecast{params: params, origin: origin, strikes: strikes}
}

type cellKey struct{ x, y int }

// Targets returns one target per grid cell that accumulated at least
// MinInTarget strikes in the window ending at now. Cells are returned in a
// fixed order so controller steps stay deterministic.
func (f *Forecast) Targets(now float64) []model.Target {
	if f.params.RadiusKM <= 0 || f.params.MinInTarget <= 0 {
		return nil
	}
	from := now - f.params.LookAheadMinutes

	counts := make(map[cellKey]int)
	sums := make(map[cellKey][2]float64)
	for _, s := range f.strikes {
		if s.SpawnTime < from || s.SpawnTime > now {
			continue
		}
		east, north := geo.PlanarDelta(f.origin, s.Position)
		key := cellKey{x: int(math.Floor(east / f.params.RadiusKM)), y: int(math.Floor(north / f.params.RadiusKM))}
		counts[key]++
		sum := sums[key]
		sums[key] = [2]float64{sum[0] + east, sum[1] + north}
	}

	var keys []cellKey
	for key, n := range counts {
		if n >= f.params.MinInTarget {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].x != keys[j].x {
			return keys[i].x < keys[j].x
		}
		return keys[i].y < keys[j].y
	})

	targets := make([]model.Target, 0, len(keys))
	for _, key := range keys {
		n := float64(counts[key])
		sum := sums[key]
		// Attract towards the centroid of the cell's strikes rather than the
		// cell corner.
		pos := geo.Offset(f.origin, sum[0]/n, sum[1]/n)
		targets = append(targets, model.Target{Position: pos, StartTime: now, FinishTime: now})
	}
	return targets
}
