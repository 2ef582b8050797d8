package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tactic/internal/cli"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored agent snapshots",
	Long: `List, inspect, and remove the agent snapshots that run and serve save
after every tick. Without --redis the store lives in process memory and is empty.`,
}

var snapshotLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List agents with a stored snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := snapshotBackend(cmd)
		if err != nil {
			return err
		}
		defer be.Close()

		ids, err := be.Sessions.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list snapshots: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No snapshots found.")
			return nil
		}
		fmt.Fprintln(out, "Stored Snapshots:")
		for _, id := range ids {
			fmt.Fprintln(out, "- "+id)
		}
		return nil
	},
}

var snapshotInspectCmd = &cobra.Command{
	Use:   "inspect <agent-id>",
	Short: "Print the stored snapshot of an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := snapshotBackend(cmd)
		if err != nil {
			return err
		}
		defer be.Close()

		snap, err := be.Sessions.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load snapshot %q: %w", args[0], err)
		}
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var snapshotRmCmd = &cobra.Command{
	Use:   "rm <agent-id>...",
	Short: "Remove stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return errors.New("name at least one agent or use --all")
		}

		be, err := snapshotBackend(cmd)
		if err != nil {
			return err
		}
		defer be.Close()

		ids := args
		if all {
			ids, err = be.Sessions.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		var errs []error
		for _, id := range ids {
			if err := be.Sessions.Delete(cmd.Context(), id); err != nil {
				errs = append(errs, fmt.Errorf("remove %q: %w", id, err))
				continue
			}
			fmt.Fprintf(out, "Removed snapshot '%s'\n", id)
		}
		return errors.Join(errs...)
	},
}

func snapshotBackend(cmd *cobra.Command) (*cli.Backend, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	addr, _ := cmd.Flags().GetString("redis")
	password, _ := cmd.Flags().GetString("redis-password")
	db, _ := cmd.Flags().GetInt("redis-db")
	return cli.NewBackend(cli.RedisOptions{Addr: addr, Password: password, DB: db}, logger), nil
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotLsCmd)
	snapshotCmd.AddCommand(snapshotInspectCmd)
	snapshotCmd.AddCommand(snapshotRmCmd)

	snapshotCmd.PersistentFlags().String("redis", "", "Redis address holding the snapshots (host:port)")
	snapshotCmd.PersistentFlags().String("redis-password", "", "Redis password")
	snapshotCmd.PersistentFlags().Int("redis-db", 0, "Redis database")
	snapshotRmCmd.Flags().Bool("all", false, "Remove every stored snapshot")
}
