package main

import (
	"os"

	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
