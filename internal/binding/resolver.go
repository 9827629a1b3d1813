// Package binding resolves a template's data-bound elements against one product.
// Resolution is synchronous and side-effect free: neither the template nor the
// product is modified, and every call returns freshly copied elements.
package binding

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/ankek/terraform-provider-labelprint/internal/barcode"
	"github.com/ankek/terraform-provider-labelprint/internal/catalog"
	"github.com/ankek/terraform-provider-labelprint/internal/element"
	"github.com/ankek/terraform-provider-labelprint/internal/template"
)

// ValidationError is a non-fatal problem with one element's data: a missing
// binding path or a malformed EAN-13. It degrades the element, never the label.
type ValidationError struct {
	ElementID string
	Binding   string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.Binding != "" {
		return fmt.Sprintf("element %s (%s): %s", e.ElementID, e.Binding, e.Reason)
	}
	return fmt.Sprintf("element %s: %s", e.ElementID, e.Reason)
}

// ResolvedElement is a template element with its value fixed for one product
type ResolvedElement struct {
	Element *element.Element // copy whose source is the resolved literal
	Value   string
	Bound   bool // value came from the product
	Blank   bool // renderer must skip drawing it
	Invalid bool // barcode value failed EAN-13 validation
	Issue   *ValidationError
}

// Options tunes resolution policy
type Options struct {
	// StrictEAN13 blanks barcodes with a bad checksum instead of only flagging them
	StrictEAN13 bool
}

// Resolver maps product records onto templates
type Resolver struct {
	opts Options
}

// NewResolver creates a resolver with the given policy
func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// Resolve resolves with the default, permissive policy
func Resolve(tpl *template.Template, product *catalog.Product) ([]ResolvedElement, error) {
	return NewResolver(Options{}).Resolve(tpl, product)
}

// Resolve returns the template's elements in paint order with bindings replaced by
// product values. An error means the product record itself could not be read;
// per-element problems are reported on the returned elements.
func (r *Resolver) Resolve(tpl *template.Template, product *catalog.Product) ([]ResolvedElement, error) {
	if tpl == nil {
		return nil, fmt.Errorf("template is nil")
	}
	if product == nil {
		return nil, fmt.Errorf("product record is nil")
	}

	obj, err := product.Object()
	if err != nil {
		return nil, fmt.Errorf("product %s is unreadable: %w", product.ID, err)
	}
	vars := obj.AsValueMap()

	elements := tpl.PaintOrder()
	resolved := make([]ResolvedElement, 0, len(elements))
	for _, el := range elements {
		resolved = append(resolved, r.resolveElement(el, vars))
	}
	return resolved, nil
}

func (r *Resolver) resolveElement(el *element.Element, vars map[string]cty.Value) ResolvedElement {
	src := el.Source()
	res := ResolvedElement{
		Element: el.Clone(),
		Value:   src.Value,
		Bound:   src.IsBound(),
	}

	if src.IsBound() {
		value, reason := Lookup(vars, src.Binding)
		if reason != "" || (value == "" && el.Kind() != element.KindText) {
			if reason == "" {
				reason = "value is empty"
			}
			res.Value = ""
			res.Issue = &ValidationError{ElementID: el.ID, Binding: src.Binding, Reason: reason}
			// Text degrades to an empty string; everything else is skipped.
			res.Blank = el.Kind() != element.KindText
			return res
		}
		res.Value = value
		res.Element.SetSource(element.Literal(value))
	}

	if el.Kind() == element.KindBarcode && !res.Blank {
		if !barcode.ValidateEAN13(res.Value) {
			res.Invalid = true
			res.Issue = &ValidationError{
				ElementID: el.ID,
				Binding:   src.Binding,
				Reason:    fmt.Sprintf("invalid EAN-13 %q", res.Value),
			}
			if r.opts.StrictEAN13 {
				res.Blank = true
			}
		}
	}

	return res
}

// Lookup resolves a dotted path against product attributes. It returns the scalar
// value as a string, or a non-empty reason when the path is missing, null or not a scalar.
func Lookup(vars map[string]cty.Value, key string) (string, string) {
	if err := element.ValidateBindingKey(key); err != nil {
		return "", err.Error()
	}

	val, diags := traversalFor(key).TraverseAbs(&hcl.EvalContext{Variables: vars})
	if diags.HasErrors() {
		return "", fmt.Sprintf("path not found: %s", diags[0].Summary)
	}
	if val.IsNull() || !val.IsKnown() {
		return "", "value is null"
	}

	switch {
	case val.Type() == cty.String:
		return val.AsString(), ""
	case val.Type() == cty.Number:
		return val.AsBigFloat().Text('f', -1), ""
	case val.Type() == cty.Bool:
		if val.True() {
			return "true", ""
		}
		return "false", ""
	default:
		return "", fmt.Sprintf("value is not a scalar (%s)", val.Type().FriendlyName())
	}
}

// traversalFor turns "a.b.0" into a.b[0]. Numeric segments index lists and
// objects alike because hcl.Index converts the key as needed.
func traversalFor(key string) hcl.Traversal {
	parts := strings.Split(key, ".")
	traversal := hcl.Traversal{hcl.TraverseRoot{Name: parts[0]}}
	for _, part := range parts[1:] {
		if isIndex(part) {
			traversal = append(traversal, hcl.TraverseIndex{Key: cty.StringVal(part)})
			continue
		}
		traversal = append(traversal, hcl.TraverseAttr{Name: part})
	}
	return traversal
}

func isIndex(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
