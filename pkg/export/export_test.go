package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickmart/shelfsync/pkg/catalog"
)

func sampleItems() []*catalog.Item {
	return []*catalog.Item{
		{
			MerchantID: "m-1",
			SKU:        "1001",
			Barcodes:   []string{"7791234567890"},
			Brand:      "Acme",
			Name:       "Ground Coffee",
			Package:    "500 GR",
			Category:   "pantry|coffee",
			BranchProducts: []catalog.BranchProduct{
				{Branch: "MM", Price: 12.5, Stock: 4},
			},
		},
		{
			MerchantID: "m-1",
			SKU:        "1002",
			Barcodes:   []string{"7790987654321"},
			Name:       "Olive Oil",
			BranchProducts: []catalog.BranchProduct{
				{Branch: "MM", Price: 9.9, Stock: 2},
				{Branch: "RHSM", Price: 10.1, Stock: 1},
			},
		},
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleItems()))

	var decoded []*catalog.Item
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "1001", decoded[0].SKU)
	assert.Equal(t, "500 GR", decoded[0].Package)
	assert.Len(t, decoded[1].BranchProducts, 2)
	assert.Equal(t, "RHSM", decoded[1].BranchProducts[1].Branch)
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleItems()))

	var decoded []*catalog.Item
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Olive Oil", decoded[1].Name)
	assert.InDelta(t, 12.5, decoded[0].BranchProducts[0].Price, 1e-9)
}

func TestWriteDefaultsToYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Format("unknown"), sampleItems()))
	assert.True(t, strings.Contains(buf.String(), "sku: \"1001\"") || strings.Contains(buf.String(), "sku: 1001"))
}

func TestWriteDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Write(&a, FormatYAML, sampleItems()))
	require.NoError(t, Write(&b, FormatYAML, sampleItems()))
	assert.Equal(t, a.String(), b.String())
}
