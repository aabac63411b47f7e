package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stoik/emailapi/internal/fixtures"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the Emails table",
	Long:  "Ensures the Emails table exists in the configured database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "Running migrations...")
		if err := st.Sync(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "✓ Emails table ready")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the Emails table to fixture data",
	Long:  "Creates the Emails table if needed, empties it and inserts generated fixture emails",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		count, err := cmd.Flags().GetInt("count")
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		created, err := fixtures.Seed(ctx, st, count)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded %d emails\n", len(created))
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("count", fixtures.DefaultCount, "Number of fixture emails to insert")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
