// Package element defines the closed set of label element variants and their geometry.
// Geometry is always in template design units; converting to pixels is the renderer's job.
package element

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the variant tag of an element
type Kind string

const (
	KindText    Kind = "text"
	KindBarcode Kind = "barcode"
	KindQR      Kind = "qr"
	KindImage   Kind = "image"
)

// Kinds lists every element variant in declaration order
var Kinds = []Kind{KindText, KindBarcode, KindQR, KindImage}

// FormatEAN13 is the only barcode symbology labels support
const FormatEAN13 = "EAN13"

// Point is a position in design units
type Point struct {
	X float64
	Y float64
}

// Size is an extent in design units
type Size struct {
	Width  float64
	Height float64
}

// Rect is an element box in design units
type Rect struct {
	Min Point
	Max Point
}

// Source holds either a literal value or a binding key, never both
type Source struct {
	Value   string // literal value
	Binding string // dotted product field path, e.g. "category_info.primary.name"
}

// Literal returns a source holding a fixed value
func Literal(value string) Source {
	return Source{Value: value}
}

// Bound returns a source resolved from a product field path
func Bound(key string) Source {
	return Source{Binding: key}
}

// IsBound reports whether the source is resolved per product
func (s Source) IsBound() bool {
	return s.Binding != ""
}

// Validate checks that exactly one of value or binding is set
func (s Source) Validate() error {
	switch {
	case s.Value != "" && s.Binding != "":
		return errors.New("source sets both a literal value and a binding")
	case s.Value == "" && s.Binding == "":
		return errors.New("source sets neither a literal value nor a binding")
	case s.Binding != "":
		return ValidateBindingKey(s.Binding)
	}
	return nil
}

// ValidateBindingKey checks the syntax of a dotted field path. Whether the path
// exists on a given product is only known at resolution time.
func ValidateBindingKey(key string) error {
	if key == "" {
		return errors.New("binding key is empty")
	}
	for _, segment := range strings.Split(key, ".") {
		if segment == "" {
			return fmt.Errorf("binding key %q has an empty segment", key)
		}
		for _, r := range segment {
			if !(r == '_' || r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
				return fmt.Errorf("binding key %q contains invalid character %q", key, r)
			}
		}
	}
	return nil
}

// Body is the variant-specific part of an element. The set of implementations is
// closed: Text, Barcode, QR and Image.
type Body interface {
	Kind() Kind
	source() Source
	withSource(Source) Body
	clone() Body
}

// Element is one positioned item on a label
type Element struct {
	ID        string
	Position  Point
	Size      Size
	Z         int
	Draggable bool
	Body      Body
}

// Kind returns the element's variant tag
func (e *Element) Kind() Kind {
	if e.Body == nil {
		return ""
	}
	return e.Body.Kind()
}

// Source returns the element's value source
func (e *Element) Source() Source {
	if e.Body == nil {
		return Source{}
	}
	return e.Body.source()
}

// SetSource replaces the element's value source
func (e *Element) SetSource(src Source) {
	if e.Body != nil {
		e.Body = e.Body.withSource(src)
	}
}

// Rect returns the element box in design units
func (e *Element) Rect() Rect {
	return Rect{
		Min: e.Position,
		Max: Point{X: e.Position.X + e.Size.Width, Y: e.Position.Y + e.Size.Height},
	}
}

// Clone returns a deep copy of the element
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	if e.Body != nil {
		c.Body = e.Body.clone()
	}
	return &c
}

// Validate checks the element's structure. Out-of-canvas geometry is allowed.
func (e *Element) Validate() error {
	if e.ID == "" {
		return errors.New("element has an empty identifier")
	}
	if e.Body == nil {
		return fmt.Errorf("element %q has no body", e.ID)
	}
	if e.Size.Width < 0 || e.Size.Height < 0 {
		return fmt.Errorf("element %q has a negative size", e.ID)
	}
	if err := e.Source().Validate(); err != nil {
		return fmt.Errorf("element %q: %w", e.ID, err)
	}
	if b, ok := e.Body.(*Barcode); ok && b.Format != "" && b.Format != FormatEAN13 {
		return fmt.Errorf("element %q: unsupported barcode format %q", e.ID, b.Format)
	}
	return nil
}
