// Package interfaces defines interfaces for dependency injection and testing
package interfaces

import (
	"context"

	"github.com/ankek/terraform-provider-labelprint/internal/batch"
	"github.com/ankek/terraform-provider-labelprint/internal/catalog"
	"github.com/ankek/terraform-provider-labelprint/internal/template"
)

// TemplateLoader loads label templates from an HCL file
type TemplateLoader interface {
	LoadFile(ctx context.Context, path string) ([]*template.Template, error)
}

// TemplateLoaderFunc adapts a function to TemplateLoader
type TemplateLoaderFunc func(ctx context.Context, path string) ([]*template.Template, error)

// LoadFile calls f
func (f TemplateLoaderFunc) LoadFile(ctx context.Context, path string) ([]*template.Template, error) {
	return f(ctx, path)
}

// ProductSource reads product records
type ProductSource interface {
	// Products returns the requested products in request order; no ids means all
	Products(ctx context.Context, ids []string) ([]catalog.Product, error)
}

// BatchExporter renders one label per product
type BatchExporter interface {
	ExportBatch(ctx context.Context, tpl *template.Template, products []catalog.Product) (*batch.Result, error)
}

// LabelWriter persists a batch result and returns the written paths
type LabelWriter interface {
	Write(ctx context.Context, result *batch.Result) ([]string, error)
}

// PathValidator defines the interface for validating file paths
type PathValidator interface {
	// ValidateOutputDir validates the directory labels are written to
	ValidateOutputDir(dir string, create bool) error

	// ValidateInputPath validates a template or catalog path
	ValidateInputPath(path string, mustBeDir bool) error
}

// LabelGenerator defines the interface for generating label batches
type LabelGenerator interface {
	// Generate renders and writes labels for the configured products
	Generate(ctx context.Context, cfg BatchConfig) (*GenerateResult, error)
}

// BatchConfig contains all configuration needed to generate a label batch
type BatchConfig struct {
	TemplatePath string
	TemplateName string // required when the file defines several labels
	CatalogPath  string
	CatalogURL   string
	ProductIDs   []string // empty means the whole catalog
	OutputDir    string
	Format       string
}

// GenerateResult contains the results of label generation
type GenerateResult struct {
	JobID          string
	LabelCount     int64
	Files          []string
	FailedProducts []string // "id: reason"
	Skipped        []string
	Missing        []string // requested ids the catalog does not know
	Warnings       []string // degraded elements, "id/element: reason"
}
