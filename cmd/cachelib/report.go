package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uarchlab/cachelib/datarecording"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print recorded BTB update traces from a SQLite database",
	Run: func(cmd *cobra.Command, _ []string) {
		runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("db", envOr("CACHELIB_DB", ""),
		"SQLite database file to read")
	reportCmd.Flags().String("table", "BTB_updates", "table to print")
	reportCmd.Flags().Int("limit", 20, "rows to print, 0 for all")
	reportCmd.Flags().Int("offset", 0, "rows to skip")

	_ = reportCmd.MarkFlagRequired("db")
}

// btbUpdateRow mirrors the rows the btb-trace command records.
type btbUpdateRow struct {
	PC     uint64
	TID    int
	Target uint64
	Type   string
}

func runReport(cmd *cobra.Command) {
	dbFile, _ := cmd.Flags().GetString("db")
	table, _ := cmd.Flags().GetString("table")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	reader := datarecording.NewReader(dbFile)
	defer reader.Close()

	reader.MapTable(table, btbUpdateRow{})

	rows, total, err := reader.Query(context.Background(), table,
		datarecording.QueryParams{
			Limit:   limit,
			Offset:  offset,
			OrderBy: "PC",
		})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query %s: %s\n", table, err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d rows\n", table, total)

	for _, row := range rows {
		r := row.(*btbUpdateRow)
		fmt.Printf("  pc %#x tid %d target %#x type %s\n",
			r.PC, r.TID, r.Target, r.Type)
	}
}
