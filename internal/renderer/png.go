package renderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ankek/terraform-provider-labelprint/internal/element"
	"github.com/ankek/terraform-provider-labelprint/internal/template"
)

// Canvas is a label surface in pixels
type Canvas struct {
	Width      int
	Height     int
	DPI        float64
	Background color.RGBA
}

// Layer is one rendered element placed on a canvas. Blank layers are kept so
// callers can report why an element is missing.
type Layer struct {
	ElementID string
	Kind      element.Kind
	Box       image.Rectangle // pixels; may extend past the canvas
	Artifact  Artifact
	Blank     bool
	Invalid   bool
	Reason    string
}

// CanvasFor converts a template canvas to pixels
func CanvasFor(tpl *template.Template, dpi float64) Canvas {
	return Canvas{
		Width:      ToPixels(tpl.Canvas.Width, tpl.Canvas.Unit, dpi),
		Height:     ToPixels(tpl.Canvas.Height, tpl.Canvas.Unit, dpi),
		DPI:        dpi,
		Background: colorOr(tpl.Background, color.RGBA{255, 255, 255, 255}),
	}
}

// BoxFor returns an element's pixel box on the canvas
func BoxFor(el *element.Element, unit template.Unit, dpi float64) image.Rectangle {
	x := ToPixels(el.Position.X, unit, dpi)
	y := ToPixels(el.Position.Y, unit, dpi)
	return image.Rect(x, y, x+ToPixels(el.Size.Width, unit, dpi), y+ToPixels(el.Size.Height, unit, dpi))
}

// Compose rasterizes layers in order onto a new canvas. Whatever falls outside
// the canvas is clipped.
func Compose(canvas Canvas, layers []Layer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, canvas.Width, canvas.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{canvas.Background}, image.Point{}, draw.Src)

	dpi := canvas.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	for _, layer := range layers {
		if layer.Blank || layer.Artifact == nil {
			continue
		}
		switch art := layer.Artifact.(type) {
		case *Bitmap:
			drawBitmap(img, layer.Box, art.Image)
		case *TextInstruction:
			drawText(img, layer.Box, art, dpi)
		}
	}
	return img
}

// EncodePNG encodes a composed label
func EncodePNG(img image.Image) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBitmap places src into box, stretching it when the sizes differ.
// Nearest neighbour keeps barcode and QR modules sharp.
func drawBitmap(dst *image.RGBA, box image.Rectangle, src image.Image) {
	if box.Empty() || src == nil {
		return
	}
	if box.Size() == src.Bounds().Size() {
		draw.Draw(dst, box, src, src.Bounds().Min, draw.Over)
		return
	}
	xdraw.NearestNeighbor.Scale(dst, box, src, src.Bounds(), draw.Over, nil)
}

// drawText draws each line of the instruction inside box, aligned horizontally
// and shortened until it fits
func drawText(dst *image.RGBA, box image.Rectangle, ti *TextInstruction, dpi float64) {
	if ti.Text == "" || box.Empty() {
		return
	}
	clip, ok := dst.SubImage(box).(*image.RGBA)
	if !ok || clip.Bounds().Empty() {
		return
	}

	face := faceFor(ti.FontFamily, ti.Weight, ti.FontSize, dpi)
	defer face.Close()

	d := &font.Drawer{
		Dst:  clip,
		Src:  image.NewUniform(ti.Color),
		Face: face,
	}

	metrics := face.Metrics()
	lineHeight := metrics.Height
	if lineHeight <= 0 {
		lineHeight = metrics.Ascent + metrics.Descent
	}
	baseline := fixed.I(box.Min.Y) + metrics.Ascent
	maxWidth := fixed.I(box.Dx())

	for _, line := range strings.Split(ti.Text, "\n") {
		line = fitLine(d, line, maxWidth)
		width := d.MeasureString(line)

		x := fixed.I(box.Min.X)
		switch ti.Align {
		case "center":
			x += (maxWidth - width) / 2
		case "right":
			x += maxWidth - width
		}

		d.Dot = fixed.Point26_6{X: x, Y: baseline}
		d.DrawString(line)
		baseline += lineHeight
	}
}

// fitLine drops trailing runes until the line is no wider than maxWidth
func fitLine(d *font.Drawer, line string, maxWidth fixed.Int26_6) string {
	n := len([]rune(line))
	for n > 0 && d.MeasureString(line) > maxWidth {
		n--
		line = truncate(line, n)
	}
	return line
}

var (
	fontsOnce sync.Once
	fonts     map[string]*opentype.Font
)

func loadFonts() {
	fonts = make(map[string]*opentype.Font, 3)
	for name, ttf := range map[string][]byte{
		"regular": goregular.TTF,
		"bold":    gobold.TTF,
		"mono":    gomono.TTF,
	} {
		if f, err := opentype.Parse(ttf); err == nil {
			fonts[name] = f
		}
	}
}

// faceFor returns a new face for the family and weight; faces are not safe for
// concurrent use so each draw gets its own
func faceFor(family, weight string, size, dpi float64) font.Face {
	fontsOnce.Do(loadFonts)

	name := "regular"
	switch {
	case family == "mono":
		name = "mono"
	case family == "bold" || weight == "bold":
		name = "bold"
	}
	if size <= 0 {
		size = 10
	}

	f, ok := fonts[name]
	if !ok {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}
