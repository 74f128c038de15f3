package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/uarchlab/cachelib/storeset"
)

var storeSetTraceCmd = &cobra.Command{
	Use:   "storeset-trace",
	Short: "Run a synthetic memory stream through a store-set predictor",
	Run: func(cmd *cobra.Command, _ []string) {
		runStoreSetTrace(cmd)
	},
}

func init() {
	rootCmd.AddCommand(storeSetTraceCmd)

	storeSetTraceCmd.Flags().Int("ssit-entries", 1024,
		"store-set ID table entries")
	storeSetTraceCmd.Flags().Int("lfst-size", 1024,
		"store sets tracked at once")
	storeSetTraceCmd.Flags().Int("mem-ops",
		envOrInt("CACHELIB_MEM_OPS", 100000), "memory operations to simulate")
	storeSetTraceCmd.Flags().Int("conflict-pairs", 64,
		"load/store PC pairs that conflict")
	storeSetTraceCmd.Flags().Int64("seed", 1, "trace randomizer seed")
}

// runStoreSetTrace replays a stream in which some load/store PC pairs touch
// the same address. Without prediction every such pair violates; once the
// predictor groups a pair, the load waits and the violation is avoided.
func runStoreSetTrace(cmd *cobra.Command) {
	ssitEntries, _ := cmd.Flags().GetInt("ssit-entries")
	lfstSize, _ := cmd.Flags().GetInt("lfst-size")
	memOps, _ := cmd.Flags().GetInt("mem-ops")
	conflictPairs, _ := cmd.Flags().GetInt("conflict-pairs")
	seed, _ := cmd.Flags().GetInt64("seed")

	predictor := storeset.MakeBuilder().
		WithSSITEntries(ssitEntries).
		WithLFSTSize(lfstSize).
		Build("StoreSet")

	rng := rand.New(rand.NewSource(seed))

	var (
		seqNum     storeset.InstSeqNum
		violations int
		waits      int
	)

	for i := 0; i < memOps/2; i++ {
		pair := rng.Intn(conflictPairs)
		storePC := uint64(0x1000 + pair*8)
		loadPC := uint64(0x5000 + pair*8)

		seqNum++
		storeSeq := seqNum
		predictor.InsertStore(storePC, storeSeq, 0)

		seqNum++
		predictor.InsertLoad(loadPC, seqNum)

		if predictor.CheckInst(loadPC) == storeSeq {
			// The load waits for the store, so ordering holds.
			waits++
		} else {
			violations++
			predictor.Violation(storePC, loadPC)
		}

		predictor.Issued(storePC, storeSeq, true)
	}

	fmt.Printf("mem ops %d violations %d avoided %d\n",
		memOps, violations, waits)
	predictor.DumpTo(os.Stdout)
}
