package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/uarchlab/cachelib/ittage"
)

var ittageTraceCmd = &cobra.Command{
	Use:   "ittage-trace",
	Short: "Run a synthetic indirect branch trace through an ITTAGE predictor",
	Run: func(cmd *cobra.Command, _ []string) {
		runITTAGETrace(cmd)
	},
}

func init() {
	rootCmd.AddCommand(ittageTraceCmd)

	ittageTraceCmd.Flags().Int("tables", 6, "tagged tables")
	ittageTraceCmd.Flags().Int("log-size", 9, "log2 entries per tagged table")
	ittageTraceCmd.Flags().Int("branches",
		envOrInt("CACHELIB_BRANCHES", 100000), "indirect branches to simulate")
	ittageTraceCmd.Flags().Int("call-sites", 32, "distinct indirect branches")
	ittageTraceCmd.Flags().Int("targets-per-site", 4,
		"targets each branch rotates through")
	ittageTraceCmd.Flags().Int64("seed", 1, "trace randomizer seed")
}

// runITTAGETrace replays indirect branches whose targets rotate in a fixed
// order per call site, a pattern only history-indexed tables can capture.
func runITTAGETrace(cmd *cobra.Command) {
	tables, _ := cmd.Flags().GetInt("tables")
	logSize, _ := cmd.Flags().GetInt("log-size")
	branches, _ := cmd.Flags().GetInt("branches")
	callSites, _ := cmd.Flags().GetInt("call-sites")
	targetsPerSite, _ := cmd.Flags().GetInt("targets-per-site")
	seed, _ := cmd.Flags().GetInt64("seed")

	predictor := ittage.MakeBuilder().
		WithNumTables(tables).
		WithLogSize(logSize).
		WithSeed(seed).
		Build("ITTAGE")

	rng := rand.New(rand.NewSource(seed))
	rotation := make([]int, callSites)
	correct := 0

	for i := 0; i < branches; i++ {
		site := rng.Intn(callSites)
		pc := uint64(0x1000 + site*4)
		target := uint64(0x40000 + site*0x100 + rotation[site]*4)
		rotation[site] = (rotation[site] + 1) % targetsPerSite

		predicted, found := predictor.Predict(0, pc)
		if found && predicted == target {
			correct++
		}

		predictor.Update(0, pc, target)
	}

	fmt.Printf("branches %d correct %d accuracy %.4f\n",
		branches, correct, float64(correct)/float64(branches))
	predictor.DumpTo(os.Stdout)
}
