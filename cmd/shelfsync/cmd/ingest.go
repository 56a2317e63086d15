package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quickmart/shelfsync"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the full ingestion against the remote catalog API",
	Long: `Ingest downloads the feeds when source URLs are configured, runs the
reconciliation pipeline, activates and deletes the configured merchants
and dispatches the reconciled items to the remote catalog API.`,
	PreRunE: bindFlags,
	RunE:    runIngest,
}

func init() {
	addRunFlags(ingestCmd)
	ingestCmd.Flags().String("merchant-update", "", "merchant to activate before ingestion (name substring)")
	ingestCmd.Flags().String("merchant-delete", "", "merchant to delete before ingestion (name substring)")
	rootCmd.AddCommand(ingestCmd)
}

// addRunFlags declares the flags every pipeline-running command shares.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", "", "remote catalog API base URL")
	cmd.Flags().String("creds-file", "", "encoded credentials file")
	cmd.Flags().String("feed-dir", shelfsync.DefaultFeedDir, "directory feeds are stored in")
	cmd.Flags().String("products-url", "", "products feed source URL")
	cmd.Flags().String("prices-url", "", "prices/stock feed source URL")
	cmd.Flags().StringSlice("branches", shelfsync.DefaultBranches, "branch allow-list, in merge order")
	cmd.Flags().StringSlice("units", shelfsync.DefaultUnits, "package unit vocabulary")
	cmd.Flags().Int("top-n", 100, "items selected per branch")
	cmd.Flags().Int("workers", 10, "dispatch pool size")
	cmd.Flags().String("merchant", "", "merchant items are ingested under (name substring)")
}

// bindFlags binds the executing command's flags to viper so config file
// and SHELFSYNC_* environment values fill in unset flags. Binding happens
// at pre-run because sibling commands share key names.
func bindFlags(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlags(cmd.Flags())
}

// runOptions assembles the facade options shared by ingest and export.
func runOptions() []shelfsync.Option {
	opts := []shelfsync.Option{
		shelfsync.WithFeedDir(viper.GetString("feed-dir")),
		shelfsync.WithBranches(viper.GetStringSlice("branches")...),
		shelfsync.WithPackageUnits(viper.GetStringSlice("units")...),
		shelfsync.WithTopN(viper.GetInt("top-n")),
		shelfsync.WithWorkers(viper.GetInt("workers")),
		shelfsync.WithMerchant(viper.GetString("merchant")),
	}
	if base := viper.GetString("base-url"); base != "" {
		opts = append(opts, shelfsync.WithBaseURL(base))
	}
	if creds := viper.GetString("creds-file"); creds != "" {
		opts = append(opts, shelfsync.WithCredentialsFile(creds))
	}
	if p, s := viper.GetString("products-url"), viper.GetString("prices-url"); p != "" && s != "" {
		opts = append(opts, shelfsync.WithFeedURLs(p, s))
	}
	return opts
}

func runIngest(cmd *cobra.Command, _ []string) error {
	opts := runOptions()
	if update := viper.GetString("merchant-update"); update != "" {
		opts = append(opts, shelfsync.WithMerchantUpdate(update))
	}
	if del := viper.GetString("merchant-delete"); del != "" {
		opts = append(opts, shelfsync.WithMerchantDelete(del))
	}

	s, err := shelfsync.New(opts...)
	if err != nil {
		return err
	}
	report, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("run %s: %d items dispatched, %d failed, %d rejected\n",
		report.RunID, report.Dispatch.Succeeded(), report.Dispatch.Failed(),
		len(report.Result.Rejected))
	if report.Dispatch.Failed() > 0 {
		return fmt.Errorf("%d items failed to ingest", report.Dispatch.Failed())
	}
	return nil
}
