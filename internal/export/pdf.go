package export

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"

	"github.com/ankek/terraform-provider-labelprint/internal/batch"
	"github.com/ankek/terraform-provider-labelprint/internal/renderer"
	"github.com/ankek/terraform-provider-labelprint/internal/template"
)

// WritePDF writes all labels into one PDF, one page per label sized to the label
func WritePDF(ctx context.Context, path string, labels []*batch.RenderedLabel) error {
	if len(labels) == 0 {
		return fmt.Errorf("no labels to export")
	}

	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := EncodePDF(ctx, f, labels); err != nil {
		return err
	}
	return f.Close()
}

// EncodePDF writes all labels as one PDF document to w
func EncodePDF(ctx context.Context, w io.Writer, labels []*batch.RenderedLabel) error {
	first := pageSize(labels[0])
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           first,
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("terraform-provider-labelprint", true)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, label := range labels {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, err := renderer.EncodePNG(label.Image())
		if err != nil {
			return fmt.Errorf("failed to encode label for product %s: %w", label.ProductID, err)
		}

		// "P" keeps width and height as given; fpdf swaps them for "L"
		size := pageSize(label)
		pdf.AddPageFormat("P", size)

		name := fmt.Sprintf("label-%d", i)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.ImageOptions(name, 0, 0, size.Wd, size.Ht, false, opts, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// pageSize converts the label canvas from pixels to points
func pageSize(label *batch.RenderedLabel) fpdf.SizeType {
	dpi := label.Canvas.DPI
	if dpi <= 0 {
		dpi = renderer.DefaultDPI
	}
	return fpdf.SizeType{
		Wd: renderer.ToPoints(float64(label.Canvas.Width), template.UnitPixel, dpi),
		Ht: renderer.ToPoints(float64(label.Canvas.Height), template.UnitPixel, dpi),
	}
}
