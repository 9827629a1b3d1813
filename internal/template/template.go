// Package template holds the label template model: an ordered set of elements on a canvas.
// Templates are validated on mutation for identifier uniqueness only; geometry outside
// the canvas is accepted and clipped at render time.
package template

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ankek/terraform-provider-labelprint/internal/element"
)

// Unit is the physical unit of a template's design coordinates
type Unit string

const (
	UnitMillimeter Unit = "mm"
	UnitInch       Unit = "in"
	UnitPixel      Unit = "px"
)

var (
	// ErrDuplicateID is returned when an element identifier is already in use
	ErrDuplicateID = errors.New("duplicate element identifier")
	// ErrNotFound is returned when no element has the requested identifier
	ErrNotFound = errors.New("element not found")
)

// Canvas describes the label surface
type Canvas struct {
	Width  float64
	Height float64
	Unit   Unit
}

// Template is an ordered collection of elements. Insertion order is paint order
// unless z-order says otherwise.
type Template struct {
	Name       string
	Canvas     Canvas
	Background string

	elements []*element.Element
	index    map[string]int // element ID -> position in elements
}

// New creates an empty template
func New(name string, canvas Canvas) *Template {
	if canvas.Unit == "" {
		canvas.Unit = UnitMillimeter
	}
	return &Template{
		Name:       name,
		Canvas:     canvas,
		Background: "#FFFFFF",
		index:      make(map[string]int),
	}
}

// Add appends an element. Identifiers must be unique.
func (t *Template) Add(el *element.Element) error {
	if el == nil {
		return errors.New("cannot add nil element")
	}
	if el.ID == "" {
		return errors.New("element identifier cannot be empty")
	}
	if _, exists := t.index[el.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, el.ID)
	}

	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[el.ID] = len(t.elements)
	t.elements = append(t.elements, el)
	return nil
}

// Remove deletes the element with the given identifier. Lookup is O(1) but the
// elements after it shift down and are re-indexed, so removal is O(n).
func (t *Template) Remove(id string) error {
	pos, ok := t.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	t.elements = append(t.elements[:pos], t.elements[pos+1:]...)
	delete(t.index, id)
	for i := pos; i < len(t.elements); i++ {
		t.index[t.elements[i].ID] = i
	}
	return nil
}

// Update applies fn to a copy of the element and stores the result.
// Renaming onto an existing identifier is rejected and leaves the template unchanged.
func (t *Template) Update(id string, fn func(el *element.Element)) error {
	pos, ok := t.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	updated := t.elements[pos].Clone()
	fn(updated)

	if updated.ID == "" {
		return errors.New("element identifier cannot be empty")
	}
	if updated.ID != id {
		if _, exists := t.index[updated.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateID, updated.ID)
		}
		delete(t.index, id)
		t.index[updated.ID] = pos
	}
	t.elements[pos] = updated
	return nil
}

// Get returns the element with the given identifier
func (t *Template) Get(id string) (*element.Element, bool) {
	pos, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return t.elements[pos], true
}

// Len returns the number of elements
func (t *Template) Len() int {
	return len(t.elements)
}

// Elements returns the elements in insertion order
func (t *Template) Elements() []*element.Element {
	out := make([]*element.Element, len(t.elements))
	copy(out, t.elements)
	return out
}

// PaintOrder returns the elements sorted by z-order, with insertion order breaking ties
func (t *Template) PaintOrder() []*element.Element {
	out := t.Elements()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Z < out[j].Z
	})
	return out
}

// Reorder swaps the paint position of two elements. Their z values are exchanged;
// when both share a z value their insertion positions are exchanged instead.
func (t *Template) Reorder(a, b string) error {
	pa, ok := t.index[a]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, a)
	}
	pb, ok := t.index[b]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, b)
	}

	ea, eb := t.elements[pa], t.elements[pb]
	if ea.Z != eb.Z {
		ea.Z, eb.Z = eb.Z, ea.Z
		return nil
	}

	t.elements[pa], t.elements[pb] = eb, ea
	t.index[a], t.index[b] = pb, pa
	return nil
}

// Clone returns a deep copy that shares no mutable state with t
func (t *Template) Clone() *Template {
	c := &Template{
		Name:       t.Name,
		Canvas:     t.Canvas,
		Background: t.Background,
		elements:   make([]*element.Element, len(t.elements)),
		index:      make(map[string]int, len(t.index)),
	}
	for i, el := range t.elements {
		c.elements[i] = el.Clone()
		c.index[el.ID] = i
	}
	return c
}

// Bindings returns the distinct binding keys used by the template, sorted
func (t *Template) Bindings() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, el := range t.elements {
		src := el.Source()
		if src.IsBound() && !seen[src.Binding] {
			seen[src.Binding] = true
			keys = append(keys, src.Binding)
		}
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the whole template structure. Elements reached through Get or
// Elements may have been edited in place, so identifiers are re-checked here.
func (t *Template) Validate() error {
	var problems []string

	if t.Canvas.Width <= 0 || t.Canvas.Height <= 0 {
		problems = append(problems, fmt.Sprintf("canvas size %gx%g must be positive", t.Canvas.Width, t.Canvas.Height))
	}
	switch t.Canvas.Unit {
	case UnitMillimeter, UnitInch, UnitPixel:
	default:
		problems = append(problems, fmt.Sprintf("unsupported canvas unit %q", t.Canvas.Unit))
	}

	seen := make(map[string]bool, len(t.elements))
	for _, el := range t.elements {
		if seen[el.ID] {
			problems = append(problems, fmt.Sprintf("duplicate element identifier %q", el.ID))
			continue
		}
		seen[el.ID] = true

		if err := el.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return &ConfigurationError{Template: t.Name, Problems: problems}
	}
	return nil
}
