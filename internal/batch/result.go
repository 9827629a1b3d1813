package batch

import (
	"fmt"
	"image"

	"github.com/ankek/terraform-provider-labelprint/internal/renderer"
)

// ProductResolutionError means one product could not be turned into a label.
// The batch records it and moves on.
type ProductResolutionError struct {
	ProductID string
	Err       error
}

func (e *ProductResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve product %s: %v", e.ProductID, e.Err)
}

func (e *ProductResolutionError) Unwrap() error {
	return e.Err
}

// Failure records a product that produced no label
type Failure struct {
	ProductID string
	Reason    string
	Err       error
}

// RenderedLabel is the output for one product: its canvas and the element layers
// in paint order
type RenderedLabel struct {
	ProductID string
	Index     int // position of the product in the batch input
	Canvas    renderer.Canvas
	Layers    []renderer.Layer
}

// Image rasterizes the label
func (l *RenderedLabel) Image() *image.RGBA {
	return renderer.Compose(l.Canvas, l.Layers)
}

// Issues lists the elements that were degraded, as "element: reason"
func (l *RenderedLabel) Issues() []string {
	var issues []string
	for _, layer := range l.Layers {
		if layer.Reason != "" {
			issues = append(issues, fmt.Sprintf("%s: %s", layer.ElementID, layer.Reason))
		}
	}
	return issues
}

// Result is the outcome of one batch. Labels keep input order; every product
// appears exactly once across Labels, Failures and Skipped.
type Result struct {
	JobID    string
	Labels   []*RenderedLabel
	Failures []Failure
	Skipped  []string
}

// Label returns the label rendered for a product
func (r *Result) Label(productID string) (*RenderedLabel, bool) {
	for _, l := range r.Labels {
		if l.ProductID == productID {
			return l, true
		}
	}
	return nil, false
}

// Partial reports whether any product failed or was skipped
func (r *Result) Partial() bool {
	return len(r.Failures) > 0 || len(r.Skipped) > 0
}
