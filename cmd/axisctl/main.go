package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "axisctl",
		Short: "Replay exit rules and inspect signal axes offline",
		Long: `axisctl runs the signal-axis evaluator without the API server.

Available subcommands:
  evaluate    Replay a fixture of occurrences under an exit config
  classify    Map a win rate and average return to a pattern category
  snapshot    Rebuild the learning snapshot table from the warehouse`,
		SilenceUsage: true,
	}
	root.AddCommand(newEvaluateCmd(), newClassifyCmd(), newSnapshotCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
