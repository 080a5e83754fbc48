package config

import (
	"fmt"
	"path/filepath"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/internal/csvio"
)

// rawScenario is an undecoded scenario: the parameter tree with sweep cells
// substituted, plus the name from the sweep table's first column.
type rawScenario struct {
	name   string
	values map[string]any
}

// expandScenarios applies the scenario sweep. Every parameter set to "?" in
// the base tree is replaced, per sweep row, from the column named by the
// slash-joined key path.
func expandScenarios(raw map[string]any, dir string) ([]rawScenario, error) {
	fname, _ := raw["scenario_parameters_filename"].(string)
	if fname == "" {
		return []rawScenario{{values: raw}}, nil
	}

	table, err := csvio.Open(filepath.Join(dir, fname))
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("%s: scenario table has no rows", fname)
	}
	columns := table.Columns()
	if len(columns) == 0 {
		return nil, fmt.Errorf("%s: scenario table has no columns", fname)
	}
	nameColumn := columns[0]

	var holes [][]string
	collectHoles(raw, nil, &holes)

	scenarios := make([]rawScenario, 0, table.Len())
	for row := 0; row < table.Len(); row++ {
		values := deepCopy(raw)
		for _, path := range holes {
			cell, err := table.Cell(joinPath(path), row)
			if err != nil {
				return nil, err
			}
			setPath(values, path, cell)
		}
		name, err := table.Cell(nameColumn, row)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, rawScenario{name: name, values: values})
	}
	return scenarios, nil
}

func joinPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "/" + p
	}
	return out
}

// collectHoles gathers the key paths of every "?" leaf.
func collectHoles(node any, path []string, holes *[][]string) {
	switch v := node.(type) {
	case string:
		if v == "?" {
			*holes = append(*holes, append([]string(nil), path...))
		}
	case map[string]any:
		for key, child := range v {
			collectHoles(child, append(path, key), holes)
		}
	}
}

func setPath(values map[string]any, path []string, value any) {
	for _, key := range path[:len(path)-1] {
		values = values[key].(map[string]any)
	}
	values[path[len(path)-1]] = value
}

func deepCopy(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for key, value := range src {
		if child, ok := value.(map[string]any); ok {
			dst[key] = deepCopy(child)
			continue
		}
		dst[key] = value
	}
	return dst
}
