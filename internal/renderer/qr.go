package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/boombuler/barcode/qr"

	"github.com/ankek/terraform-provider-labelprint/internal/cache"
	"github.com/ankek/terraform-provider-labelprint/internal/element"
)

func (r *Renderer) renderQR(body *element.QR, value string, edge int) (Artifact, error) {
	key := cache.Key{
		Kind:       string(element.KindQR),
		Value:      value,
		Color:      body.Color,
		Background: body.Background,
		Width:      float64(edge),
		Height:     float64(edge),
	}
	return r.cache.GetOrRender(key, func() (Artifact, error) {
		fg, err := ParseColor(body.Color)
		if err != nil {
			return nil, err
		}
		bg, err := ParseColor(body.Background)
		if err != nil {
			return nil, err
		}
		img, err := encodeQR(value, edge, fg, bg)
		if err != nil {
			return nil, err
		}
		return &Bitmap{Image: img}, nil
	})
}

// encodeQR encodes value at medium error correction and stretches the module
// matrix over the whole edge x edge square, without quiet zone. Modules may
// differ by one pixel in width when edge is not a multiple of the module count.
func encodeQR(value string, edge int, fg, bg color.RGBA) (*image.RGBA, error) {
	if value == "" {
		return nil, fmt.Errorf("qr value is empty")
	}
	code, err := qr.Encode(value, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	bounds := code.Bounds()
	modules := bounds.Dx()
	if edge < modules {
		return nil, fmt.Errorf("qr code needs at least %d pixels, element is %d", modules, edge)
	}

	img := image.NewRGBA(image.Rect(0, 0, edge, edge))
	for y := 0; y < edge; y++ {
		my := bounds.Min.Y + y*modules/edge
		for x := 0; x < edge; x++ {
			mx := bounds.Min.X + x*modules/edge
			if isDark(code.At(mx, my)) {
				img.SetRGBA(x, y, fg)
			} else {
				img.SetRGBA(x, y, bg)
			}
		}
	}
	return img, nil
}

func isDark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r+g+b < 3*0x8000
}
