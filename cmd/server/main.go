package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"camshare/internal/app"
	"camshare/internal/catalog"
	"camshare/internal/config"
	"camshare/internal/repository/sqlite"
)

var envFile string
var jsonOutput bool
var olderThan time.Duration

// rootCmd runs the server when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "camshare",
	Short: "Owner-controlled camera sharing server",
	Long: `Serves the camera sharing API: owners decide which cameras the authority
may view, the authority can escalate with a one-time code, and shared feeds
can be scanned by a vision model.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := app.NewApp(config.Load(envFile))
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return application.Run(ctx)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Print the camera catalog the server would start with",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load(envFile)
		cat, err := catalog.Load(cfg.SeedFile)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cat)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSHARED\tPRIVACY\tAUTO-APPROVE")
		for _, c := range cat.Cameras {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%t\n", c.ID, c.Name, c.Status, c.IsShared, c.PrivacySetting, c.AutoApprove)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d incident(s)\n", len(cat.Incidents))
		return nil
	},
}

// pruneCmd trims the activity log of a file-backed database.
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete activity entries older than --older-than",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load(envFile)
		if cfg.DBPath == config.InMemoryDB {
			return fmt.Errorf("DB_PATH is in-memory; nothing to prune")
		}

		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		removed, err := sqlite.NewActivityRepository(db).DeleteBefore(time.Now().Add(-olderThan))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d activity entries from %s\n", removed, cfg.DBPath)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file to load before reading the environment")
	seedCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the catalog as JSON")
	pruneCmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age of the oldest entry to keep")
	rootCmd.AddCommand(seedCmd, pruneCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
