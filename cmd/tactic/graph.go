package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tactic"
	"github.com/aretw0/tactic/internal/cli"
	"github.com/aretw0/tactic/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [scenario]",
	Short: "Export the navigation graph visualization",
	Long: `Outputs a Mermaid diagram (graph LR) of the scenario's navigation graph with
agents on their start nodes. With --from and --to the search result is overlaid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		sched, _, err := cli.LoadScheduler(scenarioPath(cmd, args), tactic.WithLogger(logger))
		if err != nil {
			return err
		}

		g := sched.Graph()
		overlay := &graph.Overlay{Agents: graph.AgentNodes(g, sched.Snapshots())}
		if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
			var req tactic.PathRequest
			req.From, _ = cmd.Flags().GetInt("from")
			req.To, _ = cmd.Flags().GetInt("to")
			req.Algorithm, _ = cmd.Flags().GetString("algorithm")
			res, err := sched.FindPath(cmd.Context(), req)
			if err != nil {
				return err
			}
			overlay.Path = res.Nodes
			overlay.Visited = res.Visited
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().Int("from", 0, "Overlay a search from this node")
	graphCmd.Flags().Int("to", 0, "Overlay a search to this node")
	graphCmd.Flags().StringP("algorithm", "a", "astar", "astar or dijkstra")
}
