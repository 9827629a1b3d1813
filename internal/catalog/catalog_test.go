package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zclconf/go-cty/cty"
)

const catalogJSON = `{
  "products": [
    {
      "id": 101,
      "name": "Green Tea",
      "price": "4.5",
      "meta_data": [
        {"key": "ean", "value": "4006381333932"},
        {"key": "_barcode", "value": "ignored"},
        {"key": "barcode", "value": " 4006381333931 "}
      ],
      "category_info": {"primary": {"name": "Beverages"}},
      "tags": ["organic", "tea"]
    },
    {
      "id": "102",
      "name": "Mug",
      "price": 12,
      "metadata": {"upc": "036000291452"}
    },
    {
      "id": "103",
      "name": "Gift Card"
    }
  ]
}`

const catalogYAML = `
- id: "201"
  name: Notebook
  price: 3.99
  metadata:
    - key: gencode
      value: "5901234123457"
  size:
    width: 21
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestFileSource_JSON(t *testing.T) {
	src := NewFileSource(writeFile(t, "catalog.json", catalogJSON))

	products, err := src.Products(context.Background(), nil)
	if err != nil {
		t.Fatalf("Products() error = %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("Products() returned %d products, want 3", len(products))
	}

	tea := products[0]
	if tea.ID != "101" {
		t.Errorf("ID = %q, want 101", tea.ID)
	}
	if tea.Price.StringFixed(2) != "4.50" {
		t.Errorf("Price = %s, want 4.50", tea.Price.StringFixed(2))
	}
	if got := tea.Barcode(); got != "4006381333931" {
		t.Errorf("Barcode() = %q, want barcode key to win over ean", got)
	}
	if _, ok := tea.Extra["category_info"]; !ok {
		t.Error("Extra is missing category_info")
	}

	if got := products[1].Barcode(); got != "036000291452" {
		t.Errorf("Barcode() from object metadata = %q", got)
	}
	if got := products[2].Barcode(); got != "" {
		t.Errorf("Barcode() without metadata = %q, want empty", got)
	}
}

func TestFileSource_YAML(t *testing.T) {
	src := NewFileSource(writeFile(t, "catalog.yaml", catalogYAML))

	products, err := src.Products(context.Background(), []string{"201"})
	if err != nil {
		t.Fatalf("Products() error = %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("Products() returned %d products, want 1", len(products))
	}
	if products[0].Barcode() != "5901234123457" {
		t.Errorf("Barcode() = %q", products[0].Barcode())
	}
	if products[0].Price.StringFixed(2) != "3.99" {
		t.Errorf("Price = %s", products[0].Price.StringFixed(2))
	}
}

func TestFileSource_Selection(t *testing.T) {
	src := NewFileSource(writeFile(t, "catalog.json", catalogJSON))

	products, err := src.Products(context.Background(), []string{"103", "missing", "101"})
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("Products() error = %v, want *MissingError", err)
	}
	if diff := cmp.Diff([]string{"missing"}, missing.IDs); diff != "" {
		t.Errorf("missing ids mismatch (-want +got):\n%s", diff)
	}

	var got []string
	for _, p := range products {
		got = append(got, p.ID)
	}
	if diff := cmp.Diff([]string{"103", "101"}, got); diff != "" {
		t.Errorf("selection order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{name: "invalid json", data: `{`, format: "json"},
		{name: "not a list", data: `{"items": []}`, format: "json"},
		{name: "missing id", data: `[{"name": "x"}]`, format: "json"},
		{name: "duplicate id", data: `[{"id": "1"}, {"id": 1}]`, format: "json"},
		{name: "bad price", data: `[{"id": "1", "price": "abc"}]`, format: "json"},
		{name: "bad metadata", data: `[{"id": "1", "metadata": "x"}]`, format: "json"},
		{name: "unknown format", data: `[]`, format: "toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(tt.data), tt.format); err == nil {
				t.Errorf("ParseCatalog() error = nil, want error")
			}
		})
	}
}

func TestProductObject(t *testing.T) {
	products, err := ParseCatalog([]byte(catalogJSON), "json")
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}

	obj, err := products[0].Object()
	if err != nil {
		t.Fatalf("Object() error = %v", err)
	}

	if got := obj.GetAttr("name"); !got.RawEquals(cty.StringVal("Green Tea")) {
		t.Errorf("name = %#v", got)
	}
	if got := obj.GetAttr("price"); !got.RawEquals(cty.StringVal("4.50")) {
		t.Errorf("price = %#v", got)
	}
	if got := obj.GetAttr("barcode"); !got.RawEquals(cty.StringVal("4006381333931")) {
		t.Errorf("barcode = %#v", got)
	}
	primary := obj.GetAttr("category_info").GetAttr("primary").GetAttr("name")
	if !primary.RawEquals(cty.StringVal("Beverages")) {
		t.Errorf("category_info.primary.name = %#v", primary)
	}
	if got := obj.GetAttr("metadata").GetAttr("ean"); !got.RawEquals(cty.StringVal("4006381333932")) {
		t.Errorf("metadata.ean = %#v", got)
	}

	noCode, err := products[2].Object()
	if err != nil {
		t.Fatalf("Object() error = %v", err)
	}
	if noCode.Type().HasAttribute("barcode") {
		t.Error("Object() must omit barcode when the product has none")
	}
}

func TestProductObject_UnsupportedValue(t *testing.T) {
	p := Product{ID: "1", Extra: map[string]any{"bad": make(chan int)}}
	if _, err := p.Object(); err == nil {
		t.Error("Object() expected error for unsupported value")
	}
}
