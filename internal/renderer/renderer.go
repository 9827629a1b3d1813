// Package renderer turns resolved label elements into drawable artifacts and
// composes them onto a raster canvas. Barcodes, QR codes and images are raster
// artifacts cached by their visual parameters; text is kept as an instruction so
// vector exporters can emit real text.
package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/ankek/terraform-provider-labelprint/internal/barcode"
	"github.com/ankek/terraform-provider-labelprint/internal/binding"
	"github.com/ankek/terraform-provider-labelprint/internal/cache"
	"github.com/ankek/terraform-provider-labelprint/internal/element"
	"github.com/ankek/terraform-provider-labelprint/internal/template"
)

const (
	DefaultDPI         = 300
	DefaultModuleWidth = 2
)

// Artifact is the output of rendering one element: *Bitmap or *TextInstruction
type Artifact interface {
	artifact()
}

// Bitmap is a raster artifact
type Bitmap struct {
	Image image.Image
}

func (*Bitmap) artifact() {}

// TextInstruction describes text to draw inside a box
type TextInstruction struct {
	Text       string
	FontFamily string
	FontSize   float64 // points
	Weight     string
	Color      color.RGBA
	Align      string
	Box        image.Rectangle // pixels, relative to the element origin
}

func (*TextInstruction) artifact() {}

// RenderError is a non-fatal failure to render one element
type RenderError struct {
	ElementID string
	Kind      element.Kind
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s element %s: %v", e.Kind, e.ElementID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Result is the outcome of rendering one element. Blank results carry no artifact.
type Result struct {
	Artifact Artifact
	Blank    bool
	Err      *RenderError
}

// Options configures a Renderer
type Options struct {
	DPI         float64 // pixels per inch for mm/in templates; default 300
	ModuleWidth int     // barcode module width in pixels; default 2
	Cache       *cache.Cache[Artifact]
	Loader      ImageLoader
}

// Renderer renders resolved elements. It is safe for concurrent use.
type Renderer struct {
	dpi         float64
	moduleWidth int
	cache       *cache.Cache[Artifact]
	loader      ImageLoader
}

// New creates a renderer, filling unset options with defaults
func New(opts Options) *Renderer {
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	if opts.ModuleWidth <= 0 {
		opts.ModuleWidth = DefaultModuleWidth
	}
	if opts.Cache == nil {
		opts.Cache = cache.New[Artifact](cache.DefaultCapacity)
	}
	if opts.Loader == nil {
		opts.Loader = NewLoader("")
	}
	return &Renderer{
		dpi:         opts.DPI,
		moduleWidth: opts.ModuleWidth,
		cache:       opts.Cache,
		loader:      opts.Loader,
	}
}

// DPI returns the resolution used for unit conversion
func (r *Renderer) DPI() float64 {
	return r.dpi
}

// Render produces the artifact for one resolved element. Failures are confined to
// the element: they come back as a blank result with Err set.
func (r *Renderer) Render(ctx context.Context, unit template.Unit, res binding.ResolvedElement) Result {
	el := res.Element
	if el == nil || el.Body == nil {
		return Result{Blank: true}
	}
	if res.Blank {
		return Result{Blank: true}
	}

	w := ToPixels(el.Size.Width, unit, r.dpi)
	h := ToPixels(el.Size.Height, unit, r.dpi)

	var (
		art Artifact
		err error
	)
	switch body := el.Body.(type) {
	case *element.Text:
		art, err = r.renderText(body, res.Value, w, h)
	case *element.Barcode:
		art, err = r.renderBarcode(body, res.Value, h)
	case *element.QR:
		art, err = r.renderQR(body, res.Value, w)
	case *element.Image:
		art, err = r.renderImage(ctx, res.Value, w, h)
	default:
		err = fmt.Errorf("unsupported element kind %q", el.Kind())
	}
	if err != nil {
		return Result{Blank: true, Err: &RenderError{ElementID: el.ID, Kind: el.Kind(), Err: err}}
	}
	return Result{Artifact: art}
}

func (r *Renderer) renderText(body *element.Text, value string, w, h int) (Artifact, error) {
	col, err := ParseColor(body.Color)
	if err != nil {
		return nil, err
	}
	return &TextInstruction{
		Text:       value,
		FontFamily: body.FontFamily,
		FontSize:   body.FontSize,
		Weight:     body.Weight,
		Color:      col,
		Align:      body.Align,
		Box:        image.Rect(0, 0, w, h),
	}, nil
}

func (r *Renderer) renderBarcode(body *element.Barcode, value string, h int) (Artifact, error) {
	value = barcode.Clean(value)
	key := cache.Key{
		Kind:   string(element.KindBarcode),
		Value:  value,
		Color:  body.Color,
		Width:  float64(r.moduleWidth),
		Height: float64(h),
		Format: element.FormatEAN13,
	}
	return r.cache.GetOrRender(key, func() (Artifact, error) {
		col, err := ParseColor(body.Color)
		if err != nil {
			return nil, err
		}
		modules, err := barcode.Encode(value)
		if err != nil {
			return nil, err
		}
		if h <= 0 {
			return nil, fmt.Errorf("barcode height must be positive")
		}
		return &Bitmap{Image: drawBars(modules, r.moduleWidth, h, col)}, nil
	})
}

// drawBars paints dark modules on a transparent background
func drawBars(modules []bool, moduleWidth, height int, col color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, len(modules)*moduleWidth, height))
	for i, dark := range modules {
		if !dark {
			continue
		}
		for x := i * moduleWidth; x < (i+1)*moduleWidth; x++ {
			for y := 0; y < height; y++ {
				img.SetRGBA(x, y, col)
			}
		}
	}
	return img
}
