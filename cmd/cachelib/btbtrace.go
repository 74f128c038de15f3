package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/uarchlab/cachelib/btb"
	"github.com/uarchlab/cachelib/datarecording"
	"github.com/uarchlab/cachelib/inspect"
)

var btbTraceCmd = &cobra.Command{
	Use:   "btb-trace",
	Short: "Run a synthetic branch trace through a branch target buffer",
	Run: func(cmd *cobra.Command, _ []string) {
		runBTBTrace(cmd)
	},
}

func init() {
	rootCmd.AddCommand(btbTraceCmd)

	btbTraceCmd.Flags().Int("entries", 2048, "total BTB entries")
	btbTraceCmd.Flags().Int("assoc", 4, "BTB associativity")
	btbTraceCmd.Flags().Int("threads", 1, "hardware threads sharing the BTB")
	btbTraceCmd.Flags().Int("branches",
		envOrInt("CACHELIB_BRANCHES", 100000), "branches to simulate")
	btbTraceCmd.Flags().Int("working-set", 4096, "distinct branch PCs")
	btbTraceCmd.Flags().Int64("seed", 1, "trace randomizer seed")
	btbTraceCmd.Flags().String("db", envOr("CACHELIB_DB", ""),
		"record updates into this SQLite database")
	btbTraceCmd.Flags().Int("monitor-port",
		envOrInt("CACHELIB_MONITOR_PORT", 0),
		"serve the BTB state on this port after the trace")
}

func runBTBTrace(cmd *cobra.Command) {
	entries, _ := cmd.Flags().GetInt("entries")
	assoc, _ := cmd.Flags().GetInt("assoc")
	threads, _ := cmd.Flags().GetInt("threads")
	branches, _ := cmd.Flags().GetInt("branches")
	workingSet, _ := cmd.Flags().GetInt("working-set")
	seed, _ := cmd.Flags().GetInt64("seed")
	dbPath, _ := cmd.Flags().GetString("db")
	monitorPort, _ := cmd.Flags().GetInt("monitor-port")

	builder := btb.MakeBuilder().
		WithNumEntries(entries).
		WithAssociativity(assoc).
		WithNumThreads(threads)

	var recorder datarecording.Recorder
	if dbPath != "" {
		recorder = datarecording.NewRecorder(dbPath)
		builder = builder.WithTraceRecorder(recorder)
	}

	buffer := builder.Build("BTB")

	rng := rand.New(rand.NewSource(seed))
	hits := 0

	for i := 0; i < branches; i++ {
		tid := rng.Intn(threads)
		pc := uint64(rng.Intn(workingSet)) * 4
		target := pc ^ 0x40000
		brType := btb.BranchType(rng.Intn(5))

		_, hit := buffer.Lookup(tid, pc, brType)
		if hit {
			hits++
			buffer.UpdateConfidence(tid, pc, true)
		} else {
			buffer.Update(tid, pc, target, brType, nil)
		}
	}

	fmt.Printf("branches %d hits %d hit rate %.4f\n",
		branches, hits, float64(hits)/float64(branches))
	buffer.DumpTo(os.Stdout)

	if recorder != nil {
		recorder.Flush()
	}

	if monitorPort > 0 {
		serveStructures(monitorPort, buffer)
	}

	atexit.Exit(0)
}

// serveStructures blocks forever serving the structures for inspection.
func serveStructures(port int, structures ...inspect.Structure) {
	monitor := inspect.NewMonitor().WithPortNumber(port)
	for _, s := range structures {
		monitor.RegisterStructure(s)
	}

	monitor.StartServer(false)

	select {}
}
