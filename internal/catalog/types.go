// Package catalog reads product records consumed by label batches. Records are read-only:
// they come from a local catalog file or a remote HTTP catalog and are never written back.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// BarcodeKeys are the metadata keys that may carry a product barcode, in priority order
var BarcodeKeys = []string{"barcode", "gencode", "ean", "upc"}

// MetaEntry is one key/value pair of product metadata
type MetaEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// Product is a read-only product record
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Metadata []MetaEntry
	Extra    map[string]any // every other field, addressable by dotted path
}

// Barcode returns the first non-empty metadata value stored under one of BarcodeKeys
func (p *Product) Barcode() string {
	for _, key := range BarcodeKeys {
		for _, entry := range p.Metadata {
			if !strings.EqualFold(entry.Key, key) {
				continue
			}
			if v, ok := stringValue(entry.Value); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// Meta returns the first metadata value stored under key
func (p *Product) Meta(key string) (any, bool) {
	for _, entry := range p.Metadata {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return nil, false
}

// MissingError reports requested product identifiers that the source does not know
type MissingError struct {
	IDs []string
}

func (e *MissingError) Error() string {
	ids := append([]string(nil), e.IDs...)
	sort.Strings(ids)
	return fmt.Sprintf("products not found: %s", strings.Join(ids, ", "))
}
