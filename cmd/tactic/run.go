package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tactic/internal/cli"
	"github.com/aretw0/tactic/internal/presentation/tui"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "Run a scenario headless for a number of ticks",
	Long: `Advances the scenario tick by tick, optionally printing goal, arbitration
and search events, and prints a report of every agent at the end.

With --watch the scenario is reloaded and restarted whenever the file changes.
With --redis agent snapshots are saved to Redis after every tick.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		ticks, _ := cmd.Flags().GetInt("ticks")
		watch, _ := cmd.Flags().GetBool("watch")
		events, _ := cmd.Flags().GetBool("events")
		quiet, _ := cmd.Flags().GetBool("quiet")
		redisAddr, _ := cmd.Flags().GetString("redis")
		redisPassword, _ := cmd.Flags().GetString("redis-password")
		redisDB, _ := cmd.Flags().GetInt("redis-db")
		redisTTL, _ := cmd.Flags().GetDuration("redis-ttl")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.Execute(sigCtx, cli.RunOptions{
			ScenarioPath: scenarioPath(cmd, args),
			Ticks:        ticks,
			Watch:        watch,
			Events:       events,
			Quiet:        quiet,
			Redis: cli.RedisOptions{
				Addr:     redisAddr,
				Password: redisPassword,
				DB:       redisDB,
				TTL:      redisTTL,
			},
			Logger: logger,
			Out:    cmd.OutOrStdout(),
			Styled: tui.IsTerminal(os.Stdout),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("ticks", "n", cli.DefaultTicks, "Number of ticks to simulate")
	runCmd.Flags().BoolP("watch", "w", false, "Reload and restart when the scenario file changes")
	runCmd.Flags().BoolP("events", "e", false, "Print goal, arbitration and search events")
	runCmd.Flags().BoolP("quiet", "q", false, "Skip the banner and the report")
	runCmd.Flags().String("redis", "", "Redis address for snapshots and locks (host:port)")
	runCmd.Flags().String("redis-password", "", "Redis password")
	runCmd.Flags().Int("redis-db", 0, "Redis database")
	runCmd.Flags().Duration("redis-ttl", 0, "Expire stored snapshots after this long (0 keeps them)")
}
