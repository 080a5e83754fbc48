package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/pkg/export"
)

const testParams = `{
  "water_bomber_bases_filename": "wb_bases.csv",
  "uav_bases_filename": "uav_bases.csv",
  "water_tanks_filename": "tanks.csv",
  "lightning_filename": "lightning.csv",
  "output_folder_name": "out",
  "uav_coordinator": "Insertion",
  "wb_coordinator": "Insertion",
  "ignition_probability": 0.5,
  "random_seed": 7,
  "uavs": {
    "spawn_loc_file": "uav_spawns.csv",
    "flight_speed": 120,
    "fuel_refill_time": 10,
    "range": 650,
    "inspection_time": 1,
    "pct_fuel_cutoff": 0.1
  },
  "water_bombers": {
    "helicopter": {
      "spawn_loc_file": "heli_spawns.csv",
      "flight_speed": 235,
      "suppression_time": 1,
      "water_refill_time": 5,
      "fuel_refill_time": 30,
      "water_per_suppression": 2500,
      "range_empty": 650,
      "range_under_load": 450,
      "water_capacity": 7500,
      "pct_fuel_cutoff": 0.1
    }
  }
}`

var fixtures = map[string]string{
	"uav_bases.csv":   "latitude,longitude\n0,0\n",
	"wb_bases.csv":    "latitude,longitude,all\n0,0,1\n",
	"tanks.csv":       "latitude,longitude,capacity\n0,0.1,inf\n",
	"lightning.csv":   "latitude,longitude,time,ignited\n0,0.02,0,1\n0,0.04,1,0\n",
	"uav_spawns.csv":  "latitude,longitude,starting at base,initial fuel\n0,0,1,1.0\n",
	"heli_spawns.csv": "latitude,longitude,starting at base,initial fuel\n0,0,1,1.0\n",
}

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parameters.json"), []byte(testParams), 0o644))
	for name, content := range fixtures {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestServiceRunProducesAllOutputs(t *testing.T) {
	dir := writeFixtures(t)
	svc, err := New(filepath.Join(dir, "parameters.json"), nil)
	require.NoError(t, err)
	require.NoError(t, svc.Run(context.Background()))

	out := svc.OutputDir()
	for _, name := range []string{
		"simulation_output.csv",
		"uav_event_updates.csv",
		"wb_event_updates.csv",
		"inspection_times.json",
		"summary_file.csv",
		"gui.json",
		filepath.Join("simulation_input", "parameters.json"),
		filepath.Join("simulation_input", "lightning.csv"),
	} {
		_, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err, "missing output %s", name)
	}

	data, err := os.ReadFile(filepath.Join(out, "simulation_output.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.NotContains(t, lines[1], "N/A,N/A", "ignited strike must be inspected and suppressed")
	require.True(t, strings.HasSuffix(lines[2], "N/A"), "unignited strike must not be suppressed")

	var index export.GUIIndex
	require.NoError(t, jsonUnmarshalFile(filepath.Join(out, "gui.json"), &index))
	require.NotEmpty(t, index.RunID)
	require.Len(t, index.Scenarios, 1)
}

func TestServiceRefusesDirtyOutputWithoutConfirmation(t *testing.T) {
	dir := writeFixtures(t)
	svc, err := New(filepath.Join(dir, "parameters.json"), nil)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(svc.OutputDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(svc.OutputDir(), "stale.txt"), []byte("x"), 0o644))

	require.Error(t, svc.Run(context.Background()))
}

func TestServiceRejectsSpawnClaimingAbsentBase(t *testing.T) {
	dir := writeFixtures(t)
	// The bomber claims to start at a base ~111 km from the only one.
	bad := filepath.Join(dir, "heli_spawns.csv")
	require.NoError(t, os.WriteFile(bad,
		[]byte("latitude,longitude,starting at base,initial fuel\n0,1,1,1.0\n"), 0o644))

	svc, err := New(filepath.Join(dir, "parameters.json"), nil)
	require.NoError(t, err)
	err = svc.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "starts at base")
}

func TestServiceReplayIsByteIdentical(t *testing.T) {
	dir := writeFixtures(t)
	confirm := func(string) bool { return true }

	run := func() map[string][]byte {
		svc, err := New(filepath.Join(dir, "parameters.json"), confirm)
		require.NoError(t, err)
		require.NoError(t, svc.Run(context.Background()))
		outputs := map[string][]byte{}
		for _, name := range []string{"simulation_output.csv", "uav_event_updates.csv", "wb_event_updates.csv", "gui.json"} {
			data, err := os.ReadFile(filepath.Join(svc.OutputDir(), name))
			require.NoError(t, err)
			outputs[name] = data
		}
		return outputs
	}

	first := run()
	second := run()
	for name, data := range first {
		if !bytes.Equal(data, second[name]) {
			t.Fatalf("%s differs between replays", name)
		}
	}
}

func jsonUnmarshalFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
