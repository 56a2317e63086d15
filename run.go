package shelfsync

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/quickmart/shelfsync/internal/creds"
	"github.com/quickmart/shelfsync/internal/fetch"
	"github.com/quickmart/shelfsync/pkg/dispatch"
	"github.com/quickmart/shelfsync/pkg/export"
	"github.com/quickmart/shelfsync/pkg/feed"
	"github.com/quickmart/shelfsync/pkg/logging"
	"github.com/quickmart/shelfsync/pkg/pipeline"
	"github.com/quickmart/shelfsync/pkg/table"
)

// Report is the outcome of a full run.
type Report struct {
	// RunID identifies the run across every log line it emitted.
	RunID string

	// Result carries the reconciled items and per-item rejections.
	Result *pipeline.Result

	// Dispatch is the per-item submission report; nil on a dry run.
	Dispatch *dispatch.Report
}

// Run executes the full ingestion: ensure feeds are on disk, load them,
// run the reconciliation pipeline, mutate the configured merchants and
// dispatch the reconciled items. On a dry run no remote call is made and
// the items are exported instead.
func (s *Shelfsync) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	if s.config.logger != nil {
		ctx = logging.WithLogger(ctx, s.config.logger)
	}
	ctx = logging.WithRunID(ctx, runID)
	log := logging.FromContext(ctx)

	products, prices, err := s.loadFeeds(ctx)
	if err != nil {
		return nil, err
	}

	merchantID, err := s.resolveMerchant(ctx)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(s.ops, pipeline.Config{
		MerchantID: merchantID,
		Branches:   s.config.branches,
		Units:      s.config.units,
		TopN:       s.config.topN,
	})
	if err != nil {
		return nil, err
	}
	result, err := p.Run(ctx, products, prices)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: runID, Result: result}

	if s.config.dryRun {
		out := s.config.exportTo
		if out == nil {
			out = os.Stdout
		}
		log.Info().Int("items", len(result.Items)).Msg("Dry run, exporting reconciled items")
		return report, export.Write(out, s.config.exportFormat, result.Items)
	}

	if err := s.mutateMerchants(ctx); err != nil {
		return nil, err
	}

	log.Info().Int("items", len(result.Items)).Int("workers", s.workers()).Msg("Dispatching reconciled items")
	report.Dispatch = dispatch.New(s.remote, s.workers()).Dispatch(ctx, result.Items)
	return report, nil
}

// loadFeeds downloads the feeds when source URLs are configured, then
// loads both tables from the feed directory.
func (s *Shelfsync) loadFeeds(ctx context.Context) (products, prices *table.Table, err error) {
	productsPath := filepath.Join(s.config.feedDir, ProductsFileName)
	pricesPath := filepath.Join(s.config.feedDir, PricesFileName)

	if s.config.productsURL != "" && s.config.pricesURL != "" {
		productsPath = filepath.Join(s.config.feedDir, path.Base(s.config.productsURL))
		pricesPath = filepath.Join(s.config.feedDir, path.Base(s.config.pricesURL))
		specs := []fetch.Spec{
			{URL: s.config.productsURL, Dest: productsPath},
			{URL: s.config.pricesURL, Dest: pricesPath},
		}
		logging.Ctx(ctx).Info().Str("dir", s.config.feedDir).Msg("Ensuring feed files are on disk")
		if err := s.fetcher.FetchAll(ctx, specs); err != nil {
			return nil, nil, err
		}
	}

	products, err = feed.Load(productsPath, "products")
	if err != nil {
		return nil, nil, err
	}
	prices, err = feed.Load(pricesPath, "prices_stock")
	if err != nil {
		return nil, nil, err
	}
	return products, prices, nil
}

// resolveMerchant authenticates against the remote API and resolves the
// ingest merchant's id. A dry run stamps the configured name instead.
func (s *Shelfsync) resolveMerchant(ctx context.Context) (string, error) {
	if s.config.dryRun {
		if s.config.merchant != "" {
			return s.config.merchant, nil
		}
		return "dry-run", nil
	}

	cr, err := creds.Load(s.config.credsPath)
	if err != nil {
		return "", err
	}
	if err := s.remote.Authenticate(ctx, cr); err != nil {
		return "", err
	}
	id, err := s.remote.MerchantID(ctx, s.config.merchant)
	if err != nil {
		return "", err
	}
	logging.Ctx(ctx).Info().Str("merchant", s.config.merchant).Str("merchant_id", id).Msg("Resolved ingest merchant")
	return id, nil
}

// mutateMerchants applies the configured pre-ingestion merchant changes:
// the update target is activated, the delete target removed.
func (s *Shelfsync) mutateMerchants(ctx context.Context) error {
	log := logging.FromContext(ctx)
	if s.config.updateTarget != "" {
		if err := s.remote.UpdateMerchant(ctx, s.config.updateTarget, "is_active", true); err != nil {
			return err
		}
		log.Info().Str("merchant", s.config.updateTarget).Msg("Activated merchant")
	}
	if s.config.deleteTarget != "" {
		if err := s.remote.DeleteMerchant(ctx, s.config.deleteTarget); err != nil {
			return err
		}
		log.Info().Str("merchant", s.config.deleteTarget).Msg("Deleted merchant")
	}
	return nil
}

func (s *Shelfsync) workers() int {
	if s.config.workers > 0 {
		return s.config.workers
	}
	return dispatch.DefaultWorkers
}
