// Package export writes rendered label batches to disk as PNG or SVG files, one
// per label, or as a single PDF with one label per page.
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ankek/terraform-provider-labelprint/internal/batch"
	"github.com/ankek/terraform-provider-labelprint/internal/renderer"
)

// Format is an output file format
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// Formats lists the supported output formats
var Formats = []string{string(FormatPNG), string(FormatSVG), string(FormatPDF)}

// DefaultPDFName is the file written for PDF exports
const DefaultPDFName = "labels.pdf"

// ParseFormat validates a format name; empty means PNG
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPNG, nil
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: %s)", s, strings.Join(Formats, ", "))
	}
}

// FileName returns the file name of a label: <index>_<product-id>.<ext>
func FileName(label *batch.RenderedLabel, format Format) string {
	return fmt.Sprintf("%d_%s.%s", label.Index, safeName(label.ProductID), format)
}

// Writer writes batch results into a directory
type Writer struct {
	Dir     string
	Format  Format
	PDFName string
}

// NewWriter creates a writer for dir in the given format
func NewWriter(dir string, format Format) (*Writer, error) {
	f, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	return &Writer{Dir: dir, Format: f, PDFName: DefaultPDFName}, nil
}

// Write exports every label of result and returns the written paths in label order
func (w *Writer) Write(ctx context.Context, result *batch.Result) ([]string, error) {
	if result == nil {
		return nil, fmt.Errorf("batch result is nil")
	}

	if w.Format == FormatPDF {
		name := w.PDFName
		if name == "" {
			name = DefaultPDFName
		}
		path := filepath.Join(w.Dir, name)
		if err := WritePDF(ctx, path, result.Labels); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	files := make([]string, 0, len(result.Labels))
	for _, label := range result.Labels {
		select {
		case <-ctx.Done():
			return files, ctx.Err()
		default:
		}

		data, err := Encode(label, w.Format)
		if err != nil {
			return files, fmt.Errorf("failed to encode label for product %s: %w", label.ProductID, err)
		}
		path := filepath.Join(w.Dir, FileName(label, w.Format))
		if err := writeFile(path, data); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

// Encode serializes one label as PNG or SVG
func Encode(label *batch.RenderedLabel, format Format) ([]byte, error) {
	switch format {
	case FormatPNG, "":
		return renderer.EncodePNG(label.Image())
	case FormatSVG:
		return NewSVGEncoder().Encode(label)
	default:
		return nil, fmt.Errorf("format %s is not a per-label format", format)
	}
}
