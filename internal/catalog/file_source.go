package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source provides product records by identifier
type Source interface {
	// Products returns the requested products in request order. Unknown identifiers
	// are reported through a *MissingError alongside the products that were found.
	// An empty ids slice selects every product.
	Products(ctx context.Context, ids []string) ([]Product, error)
}

// FileSource reads products from a JSON or YAML catalog file
type FileSource struct {
	Path string
}

// NewFileSource creates a catalog source backed by a local file
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Products loads the catalog file and selects the requested products.
// It respects the provided context for cancellation.
func (s *FileSource) Products(ctx context.Context, ids []string) ([]Product, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	format := "json"
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}

	products, err := ParseCatalog(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", s.Path, err)
	}
	return Select(products, ids)
}

// ParseCatalog decodes a catalog document. The document is either a list of
// products or an object with a "products" list.
func ParseCatalog(data []byte, format string) ([]Product, error) {
	var doc any
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", format)
	}

	if obj, ok := doc.(map[string]any); ok {
		doc = obj["products"]
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("catalog must be a list of products or contain a products list")
	}

	products := make([]Product, 0, len(list))
	seen := make(map[string]bool, len(list))
	for i, item := range list {
		raw, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("product %d: expected an object, got %T", i, item)
		}
		p, err := DecodeProduct(raw)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("product %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
		products = append(products, p)
	}
	return products, nil
}

// DecodeProduct builds a product from a decoded JSON or YAML object.
// "metadata" and the WooCommerce style "meta_data" are both accepted.
func DecodeProduct(raw map[string]any) (Product, error) {
	id, ok := GetStringAttribute(raw, "id")
	if !ok || id == "" {
		return Product{}, fmt.Errorf("missing id")
	}

	p := Product{ID: id, Extra: make(map[string]any)}
	p.Name, _ = GetStringAttribute(raw, "name")

	price, _, err := GetDecimalAttribute(raw, "price")
	if err != nil {
		return Product{}, err
	}
	p.Price = price

	for _, key := range []string{"metadata", "meta_data"} {
		entries, err := GetMetadataAttribute(raw, key)
		if err != nil {
			return Product{}, err
		}
		p.Metadata = append(p.Metadata, entries...)
	}

	for key, val := range raw {
		switch key {
		case "id", "name", "price", "metadata", "meta_data":
			continue
		}
		p.Extra[key] = val
	}
	return p, nil
}

// Select picks products by identifier, preserving the order of ids
func Select(products []Product, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return products, nil
	}

	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}

	selected := make([]Product, 0, len(ids))
	var missing []string
	for _, id := range ids {
		i, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		selected = append(selected, products[i])
	}

	if len(missing) > 0 {
		return selected, &MissingError{IDs: missing}
	}
	return selected, nil
}
