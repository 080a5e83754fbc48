package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bushfire-drone-simulation",
	Short: "Dispatch simulation for lightning inspection UAVs and water bombers",
	Long: `Simulates the dispatch of inspection UAVs and water-bomber aircraft
responding to a stream of geolocated lightning strikes, producing per-strike
inspection and suppression latencies, per-aircraft event traces and
water-reservoir residuals for the configured dispatch policies.`,
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
