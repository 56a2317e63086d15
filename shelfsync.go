// Package shelfsync reconciles branch catalog/price feeds and ingests the
// result into a remote catalog API. The facade wires the feed loader, the
// table pipeline, the cross-branch reconciler and the dispatch pool into a
// single Run; the cmd/shelfsync CLI is a thin layer over it.
package shelfsync

import (
	"fmt"

	"github.com/quickmart/shelfsync/internal/fetch"
	"github.com/quickmart/shelfsync/internal/remote"
	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
	"github.com/quickmart/shelfsync/pkg/table"
)

// Defaults mirror the feed publisher's conventions.
var (
	// DefaultBranches is the branch allow-list applied when none is
	// configured.
	DefaultBranches = []string{"MM", "RHSM"}

	// DefaultUnits is the package unit vocabulary applied when none is
	// configured.
	DefaultUnits = []string{"GR", "ML", "KG", "GRS"}
)

// Feed directory and file names, matching how the publisher names its
// exports.
const (
	DefaultFeedDir   = "assets"
	ProductsFileName = "PRODUCTS.csv"
	PricesFileName   = "PRICES-STOCK.csv"
)

// Shelfsync runs the full ingestion: ensure feeds, reconcile, mutate
// merchants, dispatch.
type Shelfsync struct {
	config  *config
	ops     table.Ops
	fetcher *fetch.Fetcher
	remote  *remote.Client
}

// New creates a Shelfsync instance with the given options.
func New(opts ...Option) (*Shelfsync, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	if !cfg.dryRun {
		if cfg.baseURL == "" {
			return nil, pkgerrors.NewConfigError("shelfsync", "base URL is required unless running dry", nil)
		}
		if cfg.credsPath == "" {
			return nil, pkgerrors.NewConfigError("shelfsync", "credentials file is required unless running dry", nil)
		}
		if cfg.merchant == "" {
			return nil, pkgerrors.NewConfigError("shelfsync", "ingest merchant is required unless running dry", nil)
		}
	}
	if len(cfg.branches) == 0 {
		return nil, pkgerrors.NewConfigError("shelfsync", "branch allow-list must not be empty", nil)
	}

	s := &Shelfsync{
		config:  cfg,
		ops:     table.NewEngine(),
		fetcher: fetch.New(cfg.httpClient),
	}
	if cfg.baseURL != "" {
		s.remote = remote.New(cfg.baseURL, cfg.httpClient)
	}
	return s, nil
}
