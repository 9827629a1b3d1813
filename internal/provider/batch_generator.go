// Package provider implements the Terraform provider for label batch generation.
// It provides a resource and data sources that render product labels from HCL
// templates and a product catalog.
package provider

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ankek/terraform-provider-labelprint/internal/batch"
	"github.com/ankek/terraform-provider-labelprint/internal/cache"
	"github.com/ankek/terraform-provider-labelprint/internal/catalog"
	"github.com/ankek/terraform-provider-labelprint/internal/export"
	"github.com/ankek/terraform-provider-labelprint/internal/interfaces"
	"github.com/ankek/terraform-provider-labelprint/internal/renderer"
	"github.com/ankek/terraform-provider-labelprint/internal/template"
	"github.com/ankek/terraform-provider-labelprint/internal/validation"
)

// Ensure BatchGenerator satisfies the generator interface.
var _ interfaces.LabelGenerator = &BatchGenerator{}

// GeneratorOptions carries the provider-level settings shared by every batch
type GeneratorOptions struct {
	CacheSize    int
	Concurrency  int
	DPI          float64
	StrictEAN13  bool
	CatalogToken string
}

// BatchGenerator handles the core logic of generating label batches.
// It is shared between the resource and data source implementations, and all
// batches it runs share one render cache.
type BatchGenerator struct {
	opts      GeneratorOptions
	cache     *cache.Cache[renderer.Artifact]
	templates interfaces.TemplateLoader
	paths     interfaces.PathValidator
}

// NewBatchGenerator creates a generator with the given provider settings
func NewBatchGenerator(opts GeneratorOptions) *BatchGenerator {
	if opts.DPI <= 0 {
		opts.DPI = renderer.DefaultDPI
	}
	return &BatchGenerator{
		opts:      opts,
		cache:     cache.New[renderer.Artifact](opts.CacheSize),
		templates: interfaces.TemplateLoaderFunc(template.LoadFile),
		paths:     validation.Paths{},
	}
}

// CacheStats reports the shared render cache counters
func (g *BatchGenerator) CacheStats() cache.Stats {
	return g.cache.Stats()
}

// Generate renders labels for the configured products and writes them to disk.
//
// It performs the following steps:
//  1. Validates the template path and output directory
//  2. Loads the template and selects the requested label
//  3. Reads the products from the catalog file or URL
//  4. Runs the batch and writes PNG, SVG or PDF output
//
// Products missing from the catalog, failed products and degraded elements are
// reported on the result; only problems that prevent the whole batch are errors.
func (g *BatchGenerator) Generate(ctx context.Context, cfg interfaces.BatchConfig) (*interfaces.GenerateResult, error) {
	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	if err := g.paths.ValidateInputPath(cfg.TemplatePath, false); err != nil {
		return nil, fmt.Errorf("invalid template path: %w", err)
	}
	if err := g.paths.ValidateOutputDir(cfg.OutputDir, true); err != nil {
		return nil, fmt.Errorf("invalid output directory: %w", err)
	}

	templatePath, err := validation.ExpandPath(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}
	outputDir, err := validation.ExpandPath(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	tpl, err := g.loadTemplate(ctx, templatePath, cfg.TemplateName)
	if err != nil {
		return nil, err
	}

	source, err := LoadCatalog(ctx, cfg, g.opts.CatalogToken)
	if err != nil {
		return nil, err
	}

	result := &interfaces.GenerateResult{}

	products, err := source.Products(ctx, cfg.ProductIDs)
	var missing *catalog.MissingError
	switch {
	case errors.As(err, &missing):
		result.Missing = missing.IDs
	case err != nil:
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products found to label")
	}

	engine := batch.NewEngine(batch.Options{
		Concurrency: g.opts.Concurrency,
		StrictEAN13: g.opts.StrictEAN13,
		Renderer: renderer.New(renderer.Options{
			DPI:    g.opts.DPI,
			Cache:  g.cache,
			Loader: renderer.NewLoader(filepath.Dir(templatePath)),
		}),
	})

	batchResult, err := engine.ExportBatch(ctx, tpl, products)
	if err != nil {
		return nil, fmt.Errorf("failed to render labels: %w", err)
	}

	writer, err := export.NewWriter(outputDir, format)
	if err != nil {
		return nil, err
	}
	if len(batchResult.Labels) > 0 {
		files, err := writer.Write(ctx, batchResult)
		if err != nil {
			return nil, fmt.Errorf("failed to write labels: %w", err)
		}
		result.Files = files
	}

	result.JobID = batchResult.JobID
	result.LabelCount = int64(len(batchResult.Labels))
	result.Skipped = batchResult.Skipped
	for _, f := range batchResult.Failures {
		result.FailedProducts = append(result.FailedProducts, fmt.Sprintf("%s: %s", f.ProductID, f.Reason))
	}
	for _, label := range batchResult.Labels {
		for _, issue := range label.Issues() {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s/%s", label.ProductID, issue))
		}
	}

	return result, nil
}

// loadTemplate parses the template file and picks the label by name. A file with
// a single label needs no name.
func (g *BatchGenerator) loadTemplate(ctx context.Context, path, name string) (*template.Template, error) {
	templates, err := g.templates.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("no label templates defined in %s", path)
	}

	if name == "" {
		if len(templates) > 1 {
			names := make([]string, len(templates))
			for i, t := range templates {
				names[i] = t.Name
			}
			return nil, fmt.Errorf("%s defines several labels (%s); set template_name", path, strings.Join(names, ", "))
		}
		return templates[0], nil
	}

	for _, t := range templates {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("label %q not found in %s", name, path)
}
