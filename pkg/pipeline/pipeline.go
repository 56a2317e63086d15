// Package pipeline implements the feed reconciliation stages: branch and
// stock filtering, the merge+dedup join, category compaction, package
// extraction, per-branch top-N selection and item validation. Stages are
// pure transformations over the table engine; each consumes the previous
// stage's output and none mutates its input.
package pipeline

import (
	"context"
	"strconv"

	"github.com/quickmart/shelfsync/pkg/catalog"
	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
	"github.com/quickmart/shelfsync/pkg/feed"
	"github.com/quickmart/shelfsync/pkg/logging"
	"github.com/quickmart/shelfsync/pkg/reconcile"
	"github.com/quickmart/shelfsync/pkg/table"
)

// DefaultTopN is how many items survive per branch after ranking by price.
const DefaultTopN = 100

// Config carries the pipeline's tunables.
type Config struct {
	// MerchantID is stamped on every emitted item.
	MerchantID string

	// Branches is the allow-list of branch identifiers, in the order
	// their facts should appear on merged items.
	Branches []string

	// Units is the package unit vocabulary (e.g. GR, ML, KG, GRS).
	Units []string

	// TopN bounds the per-branch selection; 0 means DefaultTopN.
	TopN int
}

// Pipeline runs the reconciliation stages over loaded feed tables.
type Pipeline struct {
	ops       table.Ops
	extractor *Extractor
	cfg       Config
}

// New creates a pipeline over the given table engine.
func New(ops table.Ops, cfg Config) (*Pipeline, error) {
	if len(cfg.Branches) == 0 {
		return nil, pkgerrors.NewConfigError("pipeline", "branch allow-list must not be empty", nil)
	}
	extractor, err := NewExtractor(cfg.Units)
	if err != nil {
		return nil, err
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	return &Pipeline{ops: ops, extractor: extractor, cfg: cfg}, nil
}

// FilterBranches restricts the prices table to the configured allow-list.
func (p *Pipeline) FilterBranches(t *table.Table) (*table.Table, error) {
	return p.ops.FilterIn(t, feed.ColBranch, p.cfg.Branches)
}

// FilterInStock keeps only rows with positive stock.
func (p *Pipeline) FilterInStock(t *table.Table) (*table.Table, error) {
	return p.ops.FilterPositive(t, feed.ColStock)
}

// MergeAndDedup joins the products and prices tables on SKU and keeps, per
// (branch, SKU) group, the maximum-price observation. Ties all survive.
func (p *Pipeline) MergeAndDedup(products, prices *table.Table) (*table.Table, error) {
	merged, err := p.ops.MergeOn(products, prices, feed.ColSKU)
	if err != nil {
		return nil, err
	}
	return p.ops.GroupMax(merged, []string{feed.ColBranch, feed.ColSKU}, feed.ColPrice)
}

// CompactCategories joins the categorical columns into one lower-cased
// pipe-delimited CATEGORY_STREAM value and drops the sources.
func (p *Pipeline) CompactCategories(t *table.Table) (*table.Table, error) {
	t, err := p.ops.ConcatColumns(t, "|", feed.Categories, true, feed.ColCategoryStream)
	if err != nil {
		return nil, err
	}
	return p.ops.DropColumns(t, feed.Categories)
}

// ExtractPackages strips markup from item descriptions in place and
// derives the PACKAGE column from the cleaned text.
func (p *Pipeline) ExtractPackages(t *table.Table) (*table.Table, error) {
	t, err := p.ops.Apply(t, feed.ColDescription, StripTags)
	if err != nil {
		return nil, err
	}
	return p.ops.Derive(t, feed.ColDescription, feed.ColPackage, p.extractor.Extract)
}

// SplitBranches partitions the merged table by branch, in allow-list
// order. Branches with no surviving rows map to an empty table.
func (p *Pipeline) SplitBranches(t *table.Table) (map[string]*table.Table, error) {
	return p.ops.SplitBy(t, feed.ColBranch)
}

// TopN ranks a branch table by price descending and takes the first N
// rows. Order among equal prices is whatever the stable sort preserves
// from the input.
func (p *Pipeline) TopN(t *table.Table) (*table.Table, error) {
	sorted, err := p.ops.SortByDesc(t, feed.ColPrice)
	if err != nil {
		return nil, err
	}
	return p.ops.Head(sorted, p.cfg.TopN), nil
}

// BuildItems converts each surviving row into a validated catalog item,
// keyed by SKU. Rows failing validation are rejected individually and
// returned as errors; they never reach the network.
func (p *Pipeline) BuildItems(ctx context.Context, t *table.Table) (catalog.Mapping, []error) {
	log := logging.FromContext(ctx)
	items := make(catalog.Mapping, t.Len())
	var rejected []error

	for i := 0; i < t.Len(); i++ {
		item, err := p.rowItem(t, i)
		if err != nil {
			log.Warn().Err(err).Msg("Rejected item")
			rejected = append(rejected, err)
			continue
		}
		items[item.SKU] = item
	}
	return items, rejected
}

// rowItem builds and validates the catalog item for row i.
func (p *Pipeline) rowItem(t *table.Table, i int) (*catalog.Item, error) {
	cell := func(col string) string {
		v, err := t.Value(i, col)
		if err != nil {
			return ""
		}
		return v
	}

	sku := cell(feed.ColSKU)
	price, err := strconv.ParseFloat(cell(feed.ColPrice), 64)
	if err != nil {
		return nil, pkgerrors.NewValidationError(sku, "branch_products", "price is not a number: "+cell(feed.ColPrice))
	}
	stock, err := strconv.Atoi(cell(feed.ColStock))
	if err != nil {
		return nil, pkgerrors.NewValidationError(sku, "branch_products", "stock is not an integer: "+cell(feed.ColStock))
	}

	item := &catalog.Item{
		MerchantID:  p.cfg.MerchantID,
		SKU:         sku,
		Barcodes:    []string{cell(feed.ColBarcode)},
		Brand:       cell(feed.ColBrand),
		Name:        cell(feed.ColName),
		Description: cell(feed.ColDescription),
		Package:     cell(feed.ColPackage),
		ImageURL:    cell(feed.ColImage),
		Category:    cell(feed.ColCategoryStream),
		URL:         cell(feed.ColImage),
		BranchProducts: []catalog.BranchProduct{{
			Branch: cell(feed.ColBranch),
			Price:  price,
			Stock:  stock,
		}},
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Result is the outcome of a full pipeline run.
type Result struct {
	// Items is the reconciled cross-branch item list.
	Items []*catalog.Item

	// Rejected holds the per-item validation errors; these never abort
	// the run.
	Rejected []error
}

// Run executes every stage over the loaded feed tables and reconciles the
// per-branch selections into one item list.
func (p *Pipeline) Run(ctx context.Context, products, prices *table.Table) (*Result, error) {
	log := logging.FromContext(ctx)

	log.Info().Strs("branches", p.cfg.Branches).Msg("Filtering feed by branch")
	prices, err := p.FilterBranches(prices)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("Filtering feed by stock greater than zero")
	prices, err = p.FilterInStock(prices)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("Merging feeds on SKU and dropping duplicates")
	merged, err := p.MergeAndDedup(products, prices)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("Compacting category columns")
	merged, err = p.CompactCategories(merged)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("Extracting package info from item descriptions")
	merged, err = p.ExtractPackages(merged)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("Separating branches")
	branches, err := p.SplitBranches(merged)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	mappings := make([]catalog.Mapping, 0, len(p.cfg.Branches))
	for _, branch := range p.cfg.Branches {
		bctx := logging.WithBranch(ctx, branch)
		bt, ok := branches[branch]
		if !ok {
			logging.Ctx(bctx).Warn().Msg("No surviving rows for branch")
			mappings = append(mappings, catalog.Mapping{})
			continue
		}

		top, err := p.TopN(bt)
		if err != nil {
			return nil, err
		}
		logging.Ctx(bctx).Info().Int("rows", top.Len()).Msg("Selected most expensive items")

		items, rejected := p.BuildItems(bctx, top)
		result.Rejected = append(result.Rejected, rejected...)
		mappings = append(mappings, items)
	}

	log.Info().Msg("Comparing branch mappings and merging duplicates")
	result.Items = reconcile.MergeAll(ctx, mappings...)
	log.Info().Int("items", len(result.Items)).Int("rejected", len(result.Rejected)).Msg("Pipeline finished")
	return result, nil
}
