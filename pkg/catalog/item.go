// Package catalog defines the validated item record submitted to the
// remote catalog API. An Item is built once per surviving SKU per run,
// validated at construction, and immutable afterwards; nothing persists
// between runs because the remote API is the system of record.
package catalog

import (
	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
)

// BranchProduct is one branch's price and stock fact for an item.
type BranchProduct struct {
	Branch string  `json:"branch" yaml:"branch"`
	Price  float64 `json:"price" yaml:"price"`
	Stock  int     `json:"stock" yaml:"stock"`
}

// Item is the unit accepted by the remote catalog API. BranchProducts
// holds one entry per branch the item was selected in; the cross-branch
// merge concatenates these when a SKU is shared.
type Item struct {
	MerchantID     string          `json:"merchant_id" yaml:"merchant_id"`
	SKU            string          `json:"sku" yaml:"sku"`
	Barcodes       []string        `json:"barcodes" yaml:"barcodes"`
	Brand          string          `json:"brand" yaml:"brand"`
	Name           string          `json:"name" yaml:"name"`
	Description    string          `json:"description" yaml:"description"`
	Package        string          `json:"package" yaml:"package"`
	ImageURL       string          `json:"image_url" yaml:"image_url"`
	Category       string          `json:"category" yaml:"category"`
	URL            string          `json:"url" yaml:"url"`
	BranchProducts []BranchProduct `json:"branch_products" yaml:"branch_products"`
}

// Validate checks the item invariants. A violation rejects the item before
// any network call is made.
func (i *Item) Validate() error {
	if i.MerchantID == "" {
		return pkgerrors.NewValidationError(i.SKU, "merchant_id", "must not be empty")
	}
	if i.SKU == "" {
		return pkgerrors.NewValidationError(i.SKU, "sku", "must not be empty")
	}
	if len(i.Barcodes) == 0 {
		return pkgerrors.NewValidationError(i.SKU, "barcodes", "must be a list of length > 0")
	}
	for _, b := range i.Barcodes {
		if b == "" {
			return pkgerrors.NewValidationError(i.SKU, "barcodes", "entries must be non-empty strings")
		}
	}
	if len(i.BranchProducts) == 0 {
		return pkgerrors.NewValidationError(i.SKU, "branch_products", "must be a list of length > 0")
	}
	for _, bp := range i.BranchProducts {
		if bp.Branch == "" {
			return pkgerrors.NewValidationError(i.SKU, "branch_products", "branch must not be empty")
		}
		if bp.Price < 0 {
			return pkgerrors.NewValidationError(i.SKU, "branch_products", "price must not be negative")
		}
	}
	return nil
}

// Branches returns the distinct branches already present on the item, used
// to guard against duplicate branch facts when merging.
func (i *Item) Branches() map[string]struct{} {
	set := make(map[string]struct{}, len(i.BranchProducts))
	for _, bp := range i.BranchProducts {
		set[bp.Branch] = struct{}{}
	}
	return set
}

// Mapping is a per-branch index of validated items keyed by SKU.
type Mapping map[string]*Item
