package pipeline_test

import (
	"context"
	"strings"
	"testing"

	"github.com/quickmart/shelfsync/pkg/feed"
	"github.com/quickmart/shelfsync/pkg/pipeline"
	"github.com/quickmart/shelfsync/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(t *testing.T, cfg pipeline.Config) *pipeline.Pipeline {
	t.Helper()
	if cfg.MerchantID == "" {
		cfg.MerchantID = "m-1"
	}
	if cfg.Branches == nil {
		cfg.Branches = []string{"MM", "RHSM"}
	}
	if cfg.Units == nil {
		cfg.Units = defaultUnits
	}
	p, err := pipeline.New(table.NewEngine(), cfg)
	require.NoError(t, err)
	return p
}

func loadFeed(t *testing.T, name string, lines ...string) *table.Table {
	t.Helper()
	tb, err := feed.LoadReader(strings.NewReader(strings.Join(lines, "\n")), name)
	require.NoError(t, err)
	return tb
}

func productsFeed(t *testing.T) *table.Table {
	return loadFeed(t, "products",
		"SKU|EAN|BRAND_NAME|ITEM_NAME|ITEM_DESCRIPTION|ITEM_IMG|CATEGORY|SUB_CATEGORY|SUB_SUB_CATEGORY",
		"A1|779001|Acme|Coffee|<p>Ground coffee 500 GR</p>|http://img/a1|Beverages|Coffee|Ground",
		"A2|779002|Acme|Tea|Loose tea|http://img/a2|Beverages|Tea|",
		"A3|779003|Brew|Mate|Yerba 1 KG|http://img/a3|Beverages|Mate|Traditional",
	)
}

func pricesFeed(t *testing.T) *table.Table {
	return loadFeed(t, "prices",
		"SKU|BRANCH|PRICE|STOCK",
		"A1|MM|10|5",
		"A1|MM|8|2", // cheaper observation, dropped by dedup
		"A1|RHSM|15|1",
		"A2|MM|20|0",  // out of stock
		"A2|ZZ|20|4",  // branch outside the allow-list
		"A3|RHSM|7|9",
	)
}

func TestRunEndToEnd(t *testing.T) {
	p := newPipeline(t, pipeline.Config{})

	result, err := p.Run(context.Background(), productsFeed(t), pricesFeed(t))
	require.NoError(t, err)
	require.Empty(t, result.Rejected)

	// A2's only in-stock observation is in a filtered-out branch.
	require.Len(t, result.Items, 2)

	bySKU := map[string]int{}
	for i, item := range result.Items {
		bySKU[item.SKU] = i
	}

	a1 := result.Items[bySKU["A1"]]
	// Shared SKU: one item, MM facts first, max-price observation per branch.
	require.Len(t, a1.BranchProducts, 2)
	assert.Equal(t, "MM", a1.BranchProducts[0].Branch)
	assert.Equal(t, 10.0, a1.BranchProducts[0].Price)
	assert.Equal(t, 5, a1.BranchProducts[0].Stock)
	assert.Equal(t, "RHSM", a1.BranchProducts[1].Branch)
	assert.Equal(t, 15.0, a1.BranchProducts[1].Price)

	// Derived fields: compacted categories, extracted package, no markup
	// left in the description.
	assert.Equal(t, "beverages|coffee|ground", a1.Category)
	assert.Equal(t, "500 GR", a1.Package)
	assert.Equal(t, "Ground coffee 500 GR", a1.Description)
	assert.Equal(t, "m-1", a1.MerchantID)
	assert.Equal(t, []string{"779001"}, a1.Barcodes)

	a3 := result.Items[bySKU["A3"]]
	require.Len(t, a3.BranchProducts, 1)
	assert.Equal(t, "RHSM", a3.BranchProducts[0].Branch)
	assert.Equal(t, "1 KG", a3.Package)
	assert.Equal(t, "beverages|mate|traditional", a3.Category)
}

func TestRunMissingJoinKeyIsFatal(t *testing.T) {
	p := newPipeline(t, pipeline.Config{})

	products := loadFeed(t, "products", "CODE|ITEM_NAME", "A1|Coffee")
	_, err := p.Run(context.Background(), products, pricesFeed(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SKU")
}

func TestTopNBoundsSelection(t *testing.T) {
	p := newPipeline(t, pipeline.Config{TopN: 2, Branches: []string{"MM"}})

	branch := loadFeed(t, "branch",
		"SKU|BRANCH|PRICE|STOCK",
		"a|MM|5|1",
		"b|MM|30|1",
		"c|MM|30|1",
		"d|MM|11|1",
	)
	top, err := p.TopN(branch)
	require.NoError(t, err)
	require.Equal(t, 2, top.Len())

	sku0, _ := top.Value(0, feed.ColSKU)
	sku1, _ := top.Value(1, feed.ColSKU)
	// Price descending; the tie keeps input order (stable sort).
	assert.Equal(t, "b", sku0)
	assert.Equal(t, "c", sku1)
}

func TestBuildItemsRejectsBadRows(t *testing.T) {
	p := newPipeline(t, pipeline.Config{})

	rows := loadFeed(t, "branch",
		"SKU|EAN|BRAND_NAME|ITEM_NAME|ITEM_DESCRIPTION|ITEM_IMG|CATEGORY_STREAM|PACKAGE|BRANCH|PRICE|STOCK",
		"A1|779001|Acme|Coffee|desc|http://img/a1|beverages||MM|10|5",
		"A2||Acme|Tea|desc|http://img/a2|beverages||MM|20|5", // blank barcode
		"A3|779003|Acme|Mate|desc|http://img/a3|beverages||MM|n/a|5", // non-numeric price
	)

	items, rejected := p.BuildItems(context.Background(), rows)
	assert.Len(t, items, 1)
	assert.Contains(t, items, "A1")
	assert.Len(t, rejected, 2)
}

func TestBuildItemsKeepsEmptyPackage(t *testing.T) {
	p := newPipeline(t, pipeline.Config{})

	rows := loadFeed(t, "branch",
		"SKU|EAN|BRAND_NAME|ITEM_NAME|ITEM_DESCRIPTION|ITEM_IMG|CATEGORY_STREAM|PACKAGE|BRANCH|PRICE|STOCK",
		"A1|779001|Acme|Coffee|no package here|http://img/a1|beverages||MM|10|5",
	)
	items, rejected := p.BuildItems(context.Background(), rows)
	require.Empty(t, rejected)
	require.Contains(t, items, "A1")
	assert.Equal(t, "", items["A1"].Package)
}

func TestNewRequiresBranches(t *testing.T) {
	_, err := pipeline.New(table.NewEngine(), pipeline.Config{Units: defaultUnits})
	assert.Error(t, err)
}
