package export

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankek/terraform-provider-labelprint/internal/batch"
	"github.com/ankek/terraform-provider-labelprint/internal/catalog"
	"github.com/ankek/terraform-provider-labelprint/internal/element"
	"github.com/ankek/terraform-provider-labelprint/internal/renderer"
	"github.com/ankek/terraform-provider-labelprint/internal/template"
)

func renderBatch(t *testing.T, ids ...string) *batch.Result {
	t.Helper()
	tpl := template.New("shelf", template.Canvas{Width: 60, Height: 40, Unit: template.UnitMillimeter})
	for _, el := range []*element.Element{
		element.NewText("title", element.Bound("name"), element.Point{X: 2, Y: 2}, element.Size{Width: 56, Height: 8}),
		element.NewBarcode("ean", element.Bound("barcode"), element.Point{X: 2, Y: 12}, element.Size{Width: 40, Height: 12}),
		element.NewQR("qr", element.Bound("id"), element.Point{X: 44, Y: 12}, 14),
	} {
		require.NoError(t, tpl.Add(el))
	}

	products := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		products = append(products, catalog.Product{
			ID:       id,
			Name:     "Green <Tea> & Co",
			Price:    decimal.RequireFromString("3.50"),
			Metadata: []catalog.MetaEntry{{Key: "barcode", Value: "4006381333931"}},
		})
	}

	e := batch.NewEngine(batch.Options{Renderer: renderer.New(renderer.Options{DPI: 150})})
	result, err := e.ExportBatch(context.Background(), tpl, products)
	require.NoError(t, err)
	require.Len(t, result.Labels, len(ids))
	return result
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatPNG},
		{in: "png", want: FormatPNG},
		{in: "SVG", want: FormatSVG},
		{in: " pdf ", want: FormatPDF},
		{in: "jpeg", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		label *batch.RenderedLabel
		want  string
	}{
		{label: &batch.RenderedLabel{ProductID: "101", Index: 0}, want: "0_101.png"},
		{label: &batch.RenderedLabel{ProductID: "sku/42 a", Index: 7}, want: "7_sku_42_a.png"},
		{label: &batch.RenderedLabel{ProductID: "..", Index: 1}, want: "1__.png"},
	}
	for _, tt := range tests {
		if got := FileName(tt.label, FormatPNG); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.label.ProductID, got, tt.want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	dir := t.TempDir()
	result := renderBatch(t, "P1", "P2")

	w, err := NewWriter(dir, FormatPNG)
	require.NoError(t, err)
	files, err := w.Write(context.Background(), result)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "0_P1.png"), filepath.Join(dir, "1_P2.png")}, files)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, result.Labels[0].Canvas.Width, img.Bounds().Dx())
	assert.Equal(t, result.Labels[0].Canvas.Height, img.Bounds().Dy())
}

func TestWriteSVG(t *testing.T) {
	dir := t.TempDir()
	result := renderBatch(t, "P1")

	w, err := NewWriter(dir, FormatSVG)
	require.NoError(t, err)
	files, err := w.Write(context.Background(), result)
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	svg := string(data)

	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Contains(t, svg, `<image id="ean"`)
	assert.Contains(t, svg, `<image id="qr"`)
	assert.Contains(t, svg, "data:image/png;base64,")
	assert.Contains(t, svg, "Green &lt;Tea&gt; &amp; Co")
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
}

func TestSVGSkipsBlankLayers(t *testing.T) {
	result := renderBatch(t, "P1")
	label := result.Labels[0]
	for i := range label.Layers {
		if label.Layers[i].ElementID == "ean" {
			label.Layers[i].Blank = true
			label.Layers[i].Artifact = nil
		}
	}

	data, err := Encode(label, FormatSVG)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `id="ean"`)
}

func TestWritePDF(t *testing.T) {
	dir := t.TempDir()
	result := renderBatch(t, "P1", "P2", "P3")

	w, err := NewWriter(dir, FormatPDF)
	require.NoError(t, err)
	files, err := w.Write(context.Background(), result)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, DefaultPDFName)}, files)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "/Count 3")
}

func TestWritePDFNoLabels(t *testing.T) {
	err := WritePDF(context.Background(), filepath.Join(t.TempDir(), "x.pdf"), nil)
	assert.Error(t, err)
}

func TestWriteCancelled(t *testing.T) {
	result := renderBatch(t, "P1", "P2")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w, err := NewWriter(t.TempDir(), FormatPNG)
	require.NoError(t, err)
	files, err := w.Write(ctx, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, files)
}

func TestNewWriterRejectsFormat(t *testing.T) {
	_, err := NewWriter(t.TempDir(), Format("gif"))
	assert.Error(t, err)
}
