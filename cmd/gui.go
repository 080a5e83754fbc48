package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/config"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/pkg/export"
)

var guiCmd = &cobra.Command{
	Use:   "gui [parameters_path]",
	Short: "Validate and print the gui.json index of a finished run",
	Long: `Checks that the last run of the given parameters file produced a
complete gui.json and prints its location for the external viewer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGUI,
}

func init() {
	rootCmd.AddCommand(guiCmd)
}

func runGUI(cmd *cobra.Command, args []string) error {
	paramsPath := "parameters.json"
	if len(args) == 1 {
		paramsPath = args[0]
	}
	scenarios, err := config.Load(paramsPath)
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("%s: no scenarios", paramsPath)
	}
	out := scenarios[0].Config.OutputFolderName
	if out == "" {
		out = "output"
	}
	indexPath := filepath.Join(scenarios[0].Filepath(out), "gui.json")

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return fmt.Errorf("no finished run found: %w", err)
	}
	var index export.GUIIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("%s: %w", indexPath, err)
	}
	for _, sc := range index.Scenarios {
		for _, name := range []string{sc.SimulationOutput, sc.UAVEventUpdates, sc.WBEventUpdates, sc.InspectionTimes} {
			if _, err := os.Stat(filepath.Join(filepath.Dir(indexPath), name)); err != nil {
				return fmt.Errorf("gui.json references missing file %s", name)
			}
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", indexPath)
	return nil
}
