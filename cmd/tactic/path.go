package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tactic"
	"github.com/aretw0/tactic/internal/cli"
)

var pathCmd = &cobra.Command{
	Use:   "path [scenario]",
	Short: "Run a one-shot search on the scenario graph",
	Long:  `Searches from --from to --to and prints the node path, its cost and the number of steps taken.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		sched, _, err := cli.LoadScheduler(scenarioPath(cmd, args), tactic.WithLogger(logger))
		if err != nil {
			return err
		}

		var req tactic.PathRequest
		req.From, _ = cmd.Flags().GetInt("from")
		req.To, _ = cmd.Flags().GetInt("to")
		req.Algorithm, _ = cmd.Flags().GetString("algorithm")
		req.Heuristic, _ = cmd.Flags().GetString("heuristic")
		req.MaxSteps, _ = cmd.Flags().GetInt("max-steps")

		res, err := sched.FindPath(cmd.Context(), req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Fprintf(out, "algorithm: %s\n", res.Algorithm)
		fmt.Fprintf(out, "outcome:   %s\n", res.Outcome)
		if res.Found() {
			fmt.Fprintf(out, "path:      %v\n", res.Nodes)
			fmt.Fprintf(out, "cost:      %g\n", res.Cost)
		}
		fmt.Fprintf(out, "steps:     %d\n", res.Steps)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)

	pathCmd.Flags().Int("from", 0, "Source node index")
	pathCmd.Flags().Int("to", 0, "Target node index")
	pathCmd.Flags().StringP("algorithm", "a", "astar", "astar or dijkstra")
	pathCmd.Flags().String("heuristic", "euclid", "euclid, manhattan or zero (A* only)")
	pathCmd.Flags().Int("max-steps", 0, "Stop after this many expansions (0 for no limit)")
	pathCmd.Flags().Bool("json", false, "Print the full result as JSON")
}
