package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachelib",
	Short: "cachelib drives and inspects set-associative hardware structure models.",
	Long: `cachelib drives and inspects set-associative hardware structure models. ` +
		`It can run synthetic traces through a branch target buffer (btb-trace), ` +
		`a store-set predictor (storeset-trace), and an indirect target predictor ` +
		`(ittage-trace), and report on recorded trace databases (report).`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// A .env file can override the built-in flag defaults.
	_ = godotenv.Load()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}

	return fallback
}
