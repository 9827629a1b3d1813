package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"image"

	"github.com/ankek/terraform-provider-labelprint/internal/batch"
	"github.com/ankek/terraform-provider-labelprint/internal/renderer"
)

// SVGEncoder writes labels as SVG. Raster artifacts are embedded as PNG data
// URIs; text stays text.
type SVGEncoder struct {
	buf *bytes.Buffer
}

// NewSVGEncoder creates a new SVG encoder
func NewSVGEncoder() *SVGEncoder {
	return &SVGEncoder{buf: &bytes.Buffer{}}
}

// Encode generates the SVG document for one label
func (s *SVGEncoder) Encode(label *batch.RenderedLabel) ([]byte, error) {
	s.buf.Reset()
	s.writeHeader(label.Canvas)

	for _, layer := range label.Layers {
		if layer.Blank || layer.Artifact == nil {
			continue
		}
		switch art := layer.Artifact.(type) {
		case *renderer.Bitmap:
			if err := s.writeBitmap(layer, art.Image); err != nil {
				return nil, fmt.Errorf("element %s: %w", layer.ElementID, err)
			}
		case *renderer.TextInstruction:
			s.writeText(layer, art, label.Canvas.DPI)
		}
	}

	s.buf.WriteString("</svg>\n")
	return s.buf.Bytes(), nil
}

// writeHeader writes the SVG header and background
func (s *SVGEncoder) writeHeader(c renderer.Canvas) {
	s.buf.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"
     width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, c.Width, c.Height, c.Width, c.Height, renderer.HexColor(c.Background)))
}

// writeBitmap embeds a raster artifact stretched to the layer box
func (s *SVGEncoder) writeBitmap(layer renderer.Layer, img image.Image) error {
	data, err := renderer.EncodePNG(img)
	if err != nil {
		return err
	}
	box := layer.Box
	s.buf.WriteString(fmt.Sprintf(`<image id="%s" x="%d" y="%d" width="%d" height="%d"
    preserveAspectRatio="none" style="image-rendering:pixelated"
    xlink:href="data:image/png;base64,%s"/>
`, html.EscapeString(layer.ElementID), box.Min.X, box.Min.Y, box.Dx(), box.Dy(),
		base64.StdEncoding.EncodeToString(data)))
	return nil
}

// writeText writes text lines clipped to the layer box
func (s *SVGEncoder) writeText(layer renderer.Layer, ti *renderer.TextInstruction, dpi float64) {
	if ti.Text == "" {
		return
	}
	if dpi <= 0 {
		dpi = renderer.DefaultDPI
	}
	size := ti.FontSize * dpi / 72

	x, anchor := 0.0, "start"
	switch ti.Align {
	case "center":
		x, anchor = float64(layer.Box.Dx())/2, "middle"
	case "right":
		x, anchor = float64(layer.Box.Dx()), "end"
	}

	family, weight := "Go, Arial, sans-serif", "normal"
	switch {
	case ti.FontFamily == "mono":
		family = "Go Mono, monospace"
	case ti.FontFamily == "bold" || ti.Weight == "bold":
		weight = "bold"
	}

	box := layer.Box
	s.buf.WriteString(fmt.Sprintf(`<svg id="%s" x="%d" y="%d" width="%d" height="%d" overflow="hidden">
<text font-family="%s" font-size="%.2f" font-weight="%s" fill="%s" text-anchor="%s">`,
		html.EscapeString(layer.ElementID), box.Min.X, box.Min.Y, box.Dx(), box.Dy(),
		family, size, weight, renderer.HexColor(ti.Color), anchor))

	for i, line := range splitLines(ti.Text) {
		s.buf.WriteString(fmt.Sprintf(`<tspan x="%.2f" y="%.2f">%s</tspan>`,
			x, size*(0.8+1.2*float64(i)), html.EscapeString(line)))
	}
	s.buf.WriteString("</text>\n</svg>\n")
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}
