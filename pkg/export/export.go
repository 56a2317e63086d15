// Package export writes the reconciled item list for inspection, so dry
// runs can be reviewed without touching the remote catalog API.
package export

import (
	"encoding/json"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/quickmart/shelfsync/pkg/catalog"
)

// Format names a supported export encoding.
type Format string

// Supported export formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Write encodes items to w in the given format. Items keep their list
// order, so a deterministic reconcile produces byte-identical exports.
func Write(w io.Writer, format Format, items []*catalog.Item) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, items)
	default:
		return WriteYAML(w, items)
	}
}

// WriteYAML encodes items as a YAML document.
func WriteYAML(w io.Writer, items []*catalog.Item) error {
	enc := yaml.NewEncoder(w, yaml.Indent(2))
	defer enc.Close()
	return enc.Encode(items)
}

// WriteJSON encodes items as indented JSON.
func WriteJSON(w io.Writer, items []*catalog.Item) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
