// Package reconcile merges per-branch item mappings into one list. This is
// the only place cross-branch identity merging occurs: every other stage
// operates within a single branch or a single merged table.
package reconcile

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/quickmart/shelfsync/pkg/catalog"
	"github.com/quickmart/shelfsync/pkg/logging"
)

// Merge combines two per-branch item mappings keyed by SKU into one list
// containing every item exactly once.
//
// For each SKU in a: if the SKU also exists in b, the emitted item carries
// a's branch facts followed by b's (concatenation, a first) and the SKU is
// consumed from a working copy of b; otherwise a's item is emitted
// unchanged. Items whose SKU never appeared in a are emitted last, from the
// working copy of b. |result| = |keys(a) ∪ keys(b)|.
//
// SKUs are visited in sorted order. The contract only promises
// set-equality of the output, but a deterministic walk keeps logs and
// exports reproducible across runs.
func Merge(ctx context.Context, a, b catalog.Mapping) []*catalog.Item {
	log := logging.FromContext(ctx)

	remaining := make(catalog.Mapping, len(b))
	for sku, item := range b {
		remaining[sku] = item
	}

	items := make([]*catalog.Item, 0, len(a)+len(b))
	for _, sku := range sortedKeys(a) {
		left := a[sku]
		right, shared := remaining[sku]
		if !shared {
			items = append(items, left)
			continue
		}
		items = append(items, combine(sku, left, right, log))
		delete(remaining, sku)
	}
	for _, sku := range sortedKeys(remaining) {
		items = append(items, remaining[sku])
	}
	return items
}

// MergeAll folds Merge over mappings left to right, so earlier branches'
// facts are listed first when more than two branches are configured.
func MergeAll(ctx context.Context, mappings ...catalog.Mapping) []*catalog.Item {
	switch len(mappings) {
	case 0:
		return nil
	case 1:
		return Merge(ctx, mappings[0], nil)
	}
	acc := mappings[0]
	for _, m := range mappings[1 : len(mappings)-1] {
		acc = asMapping(Merge(ctx, acc, m))
	}
	return Merge(ctx, acc, mappings[len(mappings)-1])
}

// combine builds the merged item for a SKU present in both mappings. The
// inputs are never mutated. Upstream per-(branch, SKU) dedup should make a
// duplicate branch fact impossible, but that is not enforced here, so the
// anomaly is logged by SKU instead of passing silently.
func combine(sku string, left, right *catalog.Item, log *zerolog.Logger) *catalog.Item {
	seen := left.Branches()
	for _, bp := range right.BranchProducts {
		if _, dup := seen[bp.Branch]; dup {
			log.Warn().
				Str("sku", sku).
				Str("branch", bp.Branch).
				Msg("Duplicate branch fact while combining item")
		}
	}

	merged := *left
	merged.BranchProducts = make([]catalog.BranchProduct, 0, len(left.BranchProducts)+len(right.BranchProducts))
	merged.BranchProducts = append(merged.BranchProducts, left.BranchProducts...)
	merged.BranchProducts = append(merged.BranchProducts, right.BranchProducts...)
	return &merged
}

func sortedKeys(m catalog.Mapping) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func asMapping(items []*catalog.Item) catalog.Mapping {
	m := make(catalog.Mapping, len(items))
	for _, item := range items {
		m[item.SKU] = item
	}
	return m
}
