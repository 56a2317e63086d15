package cmd

import (
	"net/http"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quickmart/shelfsync/internal/fetch"
	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
)

var fetchCmd = &cobra.Command{
	Use:     "fetch",
	Short:   "Download the feed files without running the pipeline",
	PreRunE: bindFlags,
	RunE:    runFetch,
}

func init() {
	fetchCmd.Flags().String("feed-dir", "assets", "directory feeds are stored in")
	fetchCmd.Flags().String("products-url", "", "products feed source URL")
	fetchCmd.Flags().String("prices-url", "", "prices/stock feed source URL")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	dir := viper.GetString("feed-dir")
	products := viper.GetString("products-url")
	prices := viper.GetString("prices-url")
	if products == "" || prices == "" {
		return pkgerrors.NewConfigError("fetch", "both feed source URLs are required", nil)
	}

	f := fetch.New(http.DefaultClient)
	return f.FetchAll(cmd.Context(), []fetch.Spec{
		{URL: products, Dest: filepath.Join(dir, path.Base(products))},
		{URL: prices, Dest: filepath.Join(dir, path.Base(prices))},
	})
}
