package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/app"
)

var assumeYes bool

var runCmd = &cobra.Command{
	Use:   "run-simulation [parameters_path]",
	Short: "Run the simulation described by a parameters file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "overwrite a non-empty output folder without asking")
	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paramsPath := "parameters.json"
	if len(args) == 1 {
		paramsPath = args[0]
	}

	svc, err := app.New(paramsPath, confirmOverwrite)
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}

// confirmOverwrite prompts on the terminal; with --yes or no terminal the
// answer is yes / no respectively.
func confirmOverwrite(message string) bool {
	if assumeYes {
		return true
	}
	ok := false
	if err := survey.AskOne(&survey.Confirm{Message: message}, &ok); err != nil {
		return false
	}
	return ok
}
