package catalog_test

import (
	"testing"

	"github.com/quickmart/shelfsync/pkg/catalog"
	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func validItem() *catalog.Item {
	return &catalog.Item{
		MerchantID:  "m-1",
		SKU:         "A1",
		Barcodes:    []string{"779000000001"},
		Brand:       "Acme",
		Name:        "Coffee",
		Description: "Ground coffee 500 gr",
		Package:     "500 gr",
		ImageURL:    "https://img.example.com/a1.jpg",
		Category:    "beverages|coffee|ground",
		URL:         "https://img.example.com/a1.jpg",
		BranchProducts: []catalog.BranchProduct{
			{Branch: "MM", Price: 10, Stock: 5},
		},
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validItem().Validate())
}

func TestValidateRejectsEmptyBarcodes(t *testing.T) {
	item := validItem()
	item.Barcodes = nil
	err := item.Validate()
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "barcodes")
	assert.Contains(t, err.Error(), "A1")
}

func TestValidateRejectsBlankBarcode(t *testing.T) {
	item := validItem()
	item.Barcodes = []string{""}
	assert.True(t, pkgerrors.IsValidation(item.Validate()))
}

func TestValidateRejectsEmptyBranchProducts(t *testing.T) {
	item := validItem()
	item.BranchProducts = nil
	err := item.Validate()
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "branch_products")
}

func TestValidateRejectsBlankBranch(t *testing.T) {
	item := validItem()
	item.BranchProducts = []catalog.BranchProduct{{Branch: "", Price: 1, Stock: 1}}
	assert.True(t, pkgerrors.IsValidation(item.Validate()))
}

func TestValidateRejectsNegativePrice(t *testing.T) {
	item := validItem()
	item.BranchProducts = []catalog.BranchProduct{{Branch: "MM", Price: -1, Stock: 1}}
	assert.True(t, pkgerrors.IsValidation(item.Validate()))
}

func TestValidateRejectsMissingIdentity(t *testing.T) {
	item := validItem()
	item.MerchantID = ""
	assert.True(t, pkgerrors.IsValidation(item.Validate()))

	item = validItem()
	item.SKU = ""
	assert.True(t, pkgerrors.IsValidation(item.Validate()))
}

func TestBranches(t *testing.T) {
	item := validItem()
	item.BranchProducts = append(item.BranchProducts, catalog.BranchProduct{Branch: "RHSM", Price: 15, Stock: 2})
	set := item.Branches()
	assert.Len(t, set, 2)
	assert.Contains(t, set, "MM")
	assert.Contains(t, set, "RHSM")
}
