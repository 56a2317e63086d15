// Package feed defines the shape of the published catalog feeds and loads
// them into tables. Both feeds are pipe-delimited CSV files sharing the SKU
// join key: the products feed carries descriptive fields, the prices feed
// carries per-branch price and stock observations.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/quickmart/shelfsync/pkg/table"
)

// Feed column names as published by the catalog source.
const (
	ColSKU            = "SKU"
	ColBarcode        = "EAN"
	ColBranch         = "BRANCH"
	ColBrand          = "BRAND_NAME"
	ColName           = "ITEM_NAME"
	ColDescription    = "ITEM_DESCRIPTION"
	ColImage          = "ITEM_IMG"
	ColCategory       = "CATEGORY"
	ColSubCategory    = "SUB_CATEGORY"
	ColSubSubCategory = "SUB_SUB_CATEGORY"
	ColPrice          = "PRICE"
	ColStock          = "STOCK"
)

// Derived columns added by the pipeline.
const (
	ColCategoryStream = "CATEGORY_STREAM"
	ColPackage        = "PACKAGE"
)

// Delimiter separates fields in both feed files.
const Delimiter = '|'

// Categories lists the categorical columns in the order they are compacted
// into CATEGORY_STREAM. Order is significant.
var Categories = []string{ColCategory, ColSubCategory, ColSubSubCategory}

// Load reads a pipe-delimited feed file into a table named after its role
// (e.g. "products", "prices").
func Load(path, name string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feed %s: %w", path, err)
	}
	defer f.Close()
	return LoadReader(f, name)
}

// LoadReader reads a pipe-delimited feed into a table. The first record is
// the header.
func LoadReader(r io.Reader, name string) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.LazyQuotes = true // descriptions embed raw quotes

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading feed %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("feed %s is empty", name)
	}
	return table.New(name, records[0], records[1:])
}
