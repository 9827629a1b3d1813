package template

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/ankek/terraform-provider-labelprint/internal/element"
)

// productRoot is the traversal root that marks an attribute as a product binding
const productRoot = "product"

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "label", LabelNames: []string{"name"}},
	},
}

var labelSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "background"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "canvas"},
		{Type: string(element.KindText), LabelNames: []string{"id"}},
		{Type: string(element.KindBarcode), LabelNames: []string{"id"}},
		{Type: string(element.KindQR), LabelNames: []string{"id"}},
		{Type: string(element.KindImage), LabelNames: []string{"id"}},
	},
}

var canvasSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "width", Required: true},
		{Name: "height", Required: true},
		{Name: "unit"},
	},
}

// Attributes accepted by every element block
var commonAttributes = []string{"x", "y", "width", "height", "z", "draggable", "value", "bind"}

// Extra attributes per element kind
var kindAttributes = map[element.Kind][]string{
	element.KindText:    {"font_family", "font_size", "weight", "color", "align"},
	element.KindBarcode: {"color", "format"},
	element.KindQR:      {"size", "color", "background"},
	element.KindImage:   {"source"},
}

// LoadFile reads every label block from an HCL file.
// It respects the provided context for cancellation.
func LoadFile(ctx context.Context, path string) ([]*Template, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes label blocks from HCL source
func Parse(src []byte, filename string) ([]*Template, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("HCL parse errors: %s", diags.Error())
	}

	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse body: %s", diags.Error())
	}

	var templates []*Template
	names := make(map[string]bool)
	for _, block := range content.Blocks {
		name := block.Labels[0]
		if names[name] {
			return nil, fmt.Errorf("%s: label %q is defined more than once", block.DefRange, name)
		}
		names[name] = true

		tpl, diags := decodeLabel(name, block.Body)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode label %q: %s", name, diags.Error())
		}
		templates = append(templates, tpl)
	}

	if len(templates) == 0 {
		return nil, fmt.Errorf("no label blocks found in %s", filename)
	}
	return templates, nil
}

// decodeLabel builds one template from a label block
func decodeLabel(name string, body hcl.Body) (*Template, hcl.Diagnostics) {
	content, diags := body.Content(labelSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	tpl := New(name, Canvas{})

	if attr, ok := content.Attributes["background"]; ok {
		var d hcl.Diagnostics
		tpl.Background, d = stringAttr(attr)
		diags = append(diags, d...)
	}

	canvasSeen := false
	for _, block := range content.Blocks {
		if block.Type == "canvas" {
			if canvasSeen {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate canvas block",
					Subject:  &block.DefRange,
				})
				continue
			}
			canvasSeen = true
			canvas, d := decodeCanvas(block.Body)
			diags = append(diags, d...)
			tpl.Canvas = canvas
			continue
		}

		el, d := decodeElement(element.Kind(block.Type), block.Labels[0], block.Body)
		diags = append(diags, d...)
		if el == nil {
			continue
		}
		if err := tpl.Add(el); err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid element",
				Detail:   err.Error(),
				Subject:  &block.DefRange,
			})
		}
	}

	if !canvasSeen {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing canvas block",
			Detail:   fmt.Sprintf("label %q must declare a canvas", name),
		})
	}

	return tpl, diags
}

func decodeCanvas(body hcl.Body) (Canvas, hcl.Diagnostics) {
	content, diags := body.Content(canvasSchema)
	if diags.HasErrors() {
		return Canvas{}, diags
	}

	canvas := Canvas{Unit: UnitMillimeter}
	var d hcl.Diagnostics
	canvas.Width, d = numberAttr(content.Attributes["width"])
	diags = append(diags, d...)
	canvas.Height, d = numberAttr(content.Attributes["height"])
	diags = append(diags, d...)

	if attr, ok := content.Attributes["unit"]; ok {
		unit, d := stringAttr(attr)
		diags = append(diags, d...)
		canvas.Unit = Unit(unit)
	}
	return canvas, diags
}

// decodeElement builds an element from its block, starting from the kind's defaults
func decodeElement(kind element.Kind, id string, body hcl.Body) (*element.Element, hcl.Diagnostics) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	allowed := make(map[string]bool)
	for _, name := range commonAttributes {
		allowed[name] = true
	}
	for _, name := range kindAttributes[kind] {
		allowed[name] = true
	}
	for name, attr := range attrs {
		if !allowed[name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported argument",
				Detail:   fmt.Sprintf("An argument named %q is not expected in a %s block.", name, kind),
				Subject:  &attr.NameRange,
			})
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}

	var el *element.Element
	switch kind {
	case element.KindText:
		el = element.NewText(id, element.Source{}, element.Point{}, element.Size{})
	case element.KindBarcode:
		el = element.NewBarcode(id, element.Source{}, element.Point{}, element.Size{})
	case element.KindQR:
		el = element.NewQR(id, element.Source{}, element.Point{}, 0)
	case element.KindImage:
		el = element.NewImage(id, element.Source{}, element.Point{}, element.Size{})
	default:
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unknown element kind",
			Detail:   string(kind),
		}}
	}

	num := func(name string, dst *float64) {
		if attr, ok := attrs[name]; ok {
			v, d := numberAttr(attr)
			diags = append(diags, d...)
			*dst = v
		}
	}
	str := func(name string, dst *string) {
		if attr, ok := attrs[name]; ok {
			v, d := stringAttr(attr)
			diags = append(diags, d...)
			*dst = v
		}
	}

	num("x", &el.Position.X)
	num("y", &el.Position.Y)
	num("width", &el.Size.Width)
	num("height", &el.Size.Height)

	if attr, ok := attrs["z"]; ok {
		z, d := numberAttr(attr)
		diags = append(diags, d...)
		el.Z = int(z)
	}
	if attr, ok := attrs["draggable"]; ok {
		v, d := boolAttr(attr)
		diags = append(diags, d...)
		el.Draggable = v
	}

	switch b := el.Body.(type) {
	case *element.Text:
		str("font_family", &b.FontFamily)
		num("font_size", &b.FontSize)
		str("weight", &b.Weight)
		str("color", &b.Color)
		str("align", &b.Align)
	case *element.Barcode:
		str("color", &b.Color)
		str("format", &b.Format)
	case *element.QR:
		var size float64
		if _, ok := attrs["size"]; ok {
			num("size", &size)
			el.Size = element.Size{Width: size, Height: size}
		}
		str("color", &b.Color)
		str("background", &b.Background)
	}

	src, d := decodeSource(kind, attrs)
	diags = append(diags, d...)
	el.SetSource(src)

	return el, diags
}

// decodeSource reads the value/bind (or source for images) attributes. An expression
// that is a plain reference to product.<path> becomes a binding.
func decodeSource(kind element.Kind, attrs hcl.Attributes) (element.Source, hcl.Diagnostics) {
	valueName := "value"
	if kind == element.KindImage {
		valueName = "source"
		if _, ok := attrs["value"]; ok {
			valueName = "value"
		}
	}

	var src element.Source
	var diags hcl.Diagnostics

	if attr, ok := attrs[valueName]; ok {
		if key, isRef := bindingFromExpr(attr.Expr); isRef {
			src.Binding = key
		} else {
			v, d := stringAttr(attr)
			diags = append(diags, d...)
			src.Value = v
		}
	}

	if attr, ok := attrs["bind"]; ok {
		key, d := stringAttr(attr)
		diags = append(diags, d...)
		if src.Binding != "" || src.Value != "" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Conflicting value source",
				Detail:   fmt.Sprintf("Only one of %q or \"bind\" may be set.", valueName),
				Subject:  &attr.NameRange,
			})
		}
		src.Binding = strings.TrimPrefix(key, productRoot+".")
	}

	return src, diags
}

// bindingFromExpr turns product.a.b[0] into "a.b.0"
func bindingFromExpr(expr hcl.Expression) (string, bool) {
	traversal, ok := expr.(*hclsyntax.ScopeTraversalExpr)
	if !ok || traversal.Traversal.RootName() != productRoot || len(traversal.Traversal) < 2 {
		return "", false
	}

	var parts []string
	for _, step := range traversal.Traversal[1:] {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			parts = append(parts, s.Name)
		case hcl.TraverseIndex:
			switch s.Key.Type() {
			case cty.String:
				parts = append(parts, s.Key.AsString())
			case cty.Number:
				parts = append(parts, s.Key.AsBigFloat().Text('f', -1))
			default:
				return "", false
			}
		default:
			return "", false
		}
	}
	return strings.Join(parts, "."), true
}

func stringAttr(attr *hcl.Attribute) (string, hcl.Diagnostics) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil || str.IsNull() {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Incorrect attribute value type",
			Detail:   fmt.Sprintf("Attribute %q must be a string.", attr.Name),
			Subject:  attr.Expr.Range().Ptr(),
		}}
	}
	return str.AsString(), nil
}

func numberAttr(attr *hcl.Attribute) (float64, hcl.Diagnostics) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return 0, diags
	}
	num, err := convert.Convert(val, cty.Number)
	if err == nil && !num.IsNull() {
		var f float64
		if err := gocty.FromCtyValue(num, &f); err == nil {
			return f, nil
		}
	}
	return 0, hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Incorrect attribute value type",
		Detail:   fmt.Sprintf("Attribute %q must be a number.", attr.Name),
		Subject:  attr.Expr.Range().Ptr(),
	}}
}

func boolAttr(attr *hcl.Attribute) (bool, hcl.Diagnostics) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return false, diags
	}
	b, err := convert.Convert(val, cty.Bool)
	if err != nil || b.IsNull() {
		return false, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Incorrect attribute value type",
			Detail:   fmt.Sprintf("Attribute %q must be a bool.", attr.Name),
			Subject:  attr.Expr.Range().Ptr(),
		}}
	}
	return b.True(), nil
}
