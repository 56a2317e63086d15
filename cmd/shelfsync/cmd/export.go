package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/quickmart/shelfsync"
	"github.com/quickmart/shelfsync/pkg/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the pipeline without network dispatch and export the result",
	Long: `Export runs the full reconciliation over the local feed files and
writes the reconciled item list instead of dispatching it, for
inspection before a real ingestion.`,
	PreRunE: bindFlags,
	RunE:    runExport,
}

func init() {
	addRunFlags(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "output format (yaml or json)")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	opts := append(runOptions(), shelfsync.WithDryRun(export.Format(exportFormat)))

	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		opts = append(opts, shelfsync.WithExportWriter(f))
	}

	s, err := shelfsync.New(opts...)
	if err != nil {
		return err
	}
	report, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}

	cmd.PrintErrf("run %s: %d items reconciled, %d rejected\n",
		report.RunID, len(report.Result.Items), len(report.Result.Rejected))
	return nil
}
