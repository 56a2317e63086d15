package shelfsync

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quickmart/shelfsync/pkg/export"
	"github.com/quickmart/shelfsync/pkg/pipeline"
)

// Option is a function that configures a Shelfsync instance.
type Option func(*config) error

// config holds the assembled run configuration. Zero values fall back to
// the defaults declared in shelfsync.go.
type config struct {
	baseURL       string
	credsPath     string
	feedDir       string
	productsURL   string
	pricesURL     string
	branches      []string
	units         []string
	topN          int
	workers       int
	merchant      string
	updateTarget  string
	deleteTarget  string
	dryRun        bool
	exportFormat  export.Format
	exportTo      io.Writer
	httpClient    *http.Client
	logger        *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		feedDir:      DefaultFeedDir,
		branches:     append([]string(nil), DefaultBranches...),
		units:        append([]string(nil), DefaultUnits...),
		topN:         pipeline.DefaultTopN,
		workers:      0,
		exportFormat: export.FormatYAML,
		httpClient:   http.DefaultClient,
	}
}

// WithBaseURL sets the remote catalog API base URL. Required unless the
// run is dry.
func WithBaseURL(url string) Option {
	return func(c *config) error {
		c.baseURL = url
		return nil
	}
}

// WithCredentialsFile points at the encoded credentials file used for the
// token exchange.
func WithCredentialsFile(path string) Option {
	return func(c *config) error {
		c.credsPath = path
		return nil
	}
}

// WithFeedDir sets the directory feeds are downloaded to and loaded from.
func WithFeedDir(dir string) Option {
	return func(c *config) error {
		c.feedDir = dir
		return nil
	}
}

// WithFeedURLs sets the source URLs for the products and prices/stock
// feeds. When unset, files already in the feed directory are used as-is.
func WithFeedURLs(products, prices string) Option {
	return func(c *config) error {
		c.productsURL = products
		c.pricesURL = prices
		return nil
	}
}

// WithBranches replaces the branch allow-list. Order matters: merged items
// carry branch facts in this order.
func WithBranches(branches ...string) Option {
	return func(c *config) error {
		c.branches = branches
		return nil
	}
}

// WithPackageUnits replaces the package unit vocabulary.
func WithPackageUnits(units ...string) Option {
	return func(c *config) error {
		c.units = units
		return nil
	}
}

// WithTopN bounds the per-branch selection.
func WithTopN(n int) Option {
	return func(c *config) error {
		c.topN = n
		return nil
	}
}

// WithWorkers sets the dispatch pool size.
func WithWorkers(n int) Option {
	return func(c *config) error {
		c.workers = n
		return nil
	}
}

// WithMerchant names the merchant items are ingested under; matched by
// substring against the remote merchant list.
func WithMerchant(name string) Option {
	return func(c *config) error {
		c.merchant = name
		return nil
	}
}

// WithMerchantUpdate names the merchant to activate before ingestion.
func WithMerchantUpdate(name string) Option {
	return func(c *config) error {
		c.updateTarget = name
		return nil
	}
}

// WithMerchantDelete names the merchant to delete before ingestion.
func WithMerchantDelete(name string) Option {
	return func(c *config) error {
		c.deleteTarget = name
		return nil
	}
}

// WithDryRun skips every remote call and exports the reconciled items
// instead of dispatching them.
func WithDryRun(format export.Format) Option {
	return func(c *config) error {
		c.dryRun = true
		if format != "" {
			c.exportFormat = format
		}
		return nil
	}
}

// WithExportWriter redirects dry-run export output; defaults to stdout.
func WithExportWriter(w io.Writer) Option {
	return func(c *config) error {
		c.exportTo = w
		return nil
	}
}

// WithHTTPClient overrides the HTTP client used for the remote API and
// feed downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) error {
		c.httpClient = client
		return nil
	}
}

// WithLogger overrides the run logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
