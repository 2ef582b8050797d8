package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tactic/internal/validator"
	"github.com/aretw0/tactic/pkg/registry"
	"github.com/aretw0/tactic/pkg/scenario"
)

var validateCmd = &cobra.Command{
	Use:   "validate [scenario]",
	Short: "Check the scenario for consistency",
	Long: `Reports every dangling edge, bad cost, unknown behavior, misplaced agent and
unknown evaluator at once, and warns about nodes no agent can reach.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := scenarioPath(cmd, args)
		if path == "" {
			return fmt.Errorf("no scenario given: use --scenario")
		}
		sc, err := scenario.Load(path)
		if err != nil {
			return err
		}

		report := validator.Validate(sc, registry.Default())
		out := cmd.OutOrStdout()
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if err := report.Err(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(out, "Scenario is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
