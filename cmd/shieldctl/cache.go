package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/listingshield/internal/cacheadmin"
)

func newCacheCmd(open openStoreFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the compliance verdict cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print cache statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			stats := cacheadmin.NewManager(st).GetCacheStats(cmd.Context())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			cacheadmin.NewManager(st).CleanupExpiredCache(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "cleanup requested")
			return nil
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the cache without --yes")
			}

			st, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if !cacheadmin.NewManager(st).ClearAllCache(cmd.Context()) {
				return fmt.Errorf("clear cache failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every entry")

	cmd.AddCommand(statsCmd, cleanupCmd, clearCmd)
	return cmd
}
