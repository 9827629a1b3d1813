// Command labelprint-preview renders a label batch outside Terraform, for checking
// templates against a catalog while authoring them.
//
// Usage:
//
//	labelprint-preview -config preview.yaml
//	labelprint-preview -template labels.hcl -name shelf -catalog products.json -out ./out
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ankek/terraform-provider-labelprint/internal/batch"
	"github.com/ankek/terraform-provider-labelprint/internal/interfaces"
	"github.com/ankek/terraform-provider-labelprint/internal/provider"
)

// previewConfig is the YAML config file; flags override its values
type previewConfig struct {
	Template     string   `yaml:"template"`
	TemplateName string   `yaml:"template_name"`
	Catalog      string   `yaml:"catalog"`
	CatalogURL   string   `yaml:"catalog_url"`
	Products     []string `yaml:"products"`
	Output       string   `yaml:"output"`
	Format       string   `yaml:"format"`
	DPI          float64  `yaml:"dpi"`
	Concurrency  int      `yaml:"concurrency"`
	StrictEAN13  bool     `yaml:"strict_ean13"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, verbose, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	batch.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	generator := provider.NewBatchGenerator(provider.GeneratorOptions{
		DPI:          cfg.DPI,
		Concurrency:  cfg.Concurrency,
		StrictEAN13:  cfg.StrictEAN13,
		CatalogToken: os.Getenv(provider.CatalogTokenEnv),
	})

	result, err := generator.Generate(ctx, interfaces.BatchConfig{
		TemplatePath: cfg.Template,
		TemplateName: cfg.TemplateName,
		CatalogPath:  cfg.Catalog,
		CatalogURL:   cfg.CatalogURL,
		ProductIDs:   cfg.Products,
		OutputDir:    cfg.Output,
		Format:       cfg.Format,
	})
	if err != nil {
		return err
	}

	printResult(stdout, result)

	stats := generator.CacheStats()
	fmt.Fprintf(stdout, "cache: %d hits, %d misses, %d evictions (hit rate %.0f%%)\n",
		stats.Hits, stats.Misses, stats.Evictions, stats.HitRate()*100)
	return nil
}

func parseArgs(args []string, stderr io.Writer) (previewConfig, bool, error) {
	fs := flag.NewFlagSet("labelprint-preview", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath = fs.String("config", "", "YAML config file")
		template   = fs.String("template", "", "HCL template file")
		name       = fs.String("name", "", "label block to render")
		catalog    = fs.String("catalog", "", "JSON or YAML catalog file")
		catalogURL = fs.String("catalog-url", "", "HTTP catalog base URL")
		products   = fs.String("products", "", "comma separated product ids (default: all)")
		output     = fs.String("out", "", "output directory")
		format     = fs.String("format", "", "png, svg or pdf")
		dpi        = fs.Float64("dpi", 0, "raster resolution")
		strict     = fs.Bool("strict-ean13", false, "blank barcodes with a wrong check digit")
		verbose    = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return previewConfig{}, false, err
	}

	var cfg previewConfig
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			return previewConfig{}, false, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "template":
			cfg.Template = *template
		case "name":
			cfg.TemplateName = *name
		case "catalog":
			cfg.Catalog = *catalog
		case "catalog-url":
			cfg.CatalogURL = *catalogURL
		case "products":
			cfg.Products = splitIDs(*products)
		case "out":
			cfg.Output = *output
		case "format":
			cfg.Format = *format
		case "dpi":
			cfg.DPI = *dpi
		case "strict-ean13":
			cfg.StrictEAN13 = *strict
		}
	})

	if cfg.Template == "" {
		return previewConfig{}, false, errors.New("a template is required (-template or config file)")
	}
	if cfg.Output == "" {
		cfg.Output = "."
	}
	return cfg, *verbose, nil
}

func loadConfig(path string) (previewConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return previewConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg previewConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return previewConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func printResult(w io.Writer, result *interfaces.GenerateResult) {
	fmt.Fprintf(w, "job %s: %d labels\n", result.JobID, result.LabelCount)
	for _, f := range result.Files {
		fmt.Fprintf(w, "  wrote %s\n", f)
	}
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "%s:\n", title)
		for _, item := range items {
			fmt.Fprintf(w, "  %s\n", item)
		}
	}
	section("failed", result.FailedProducts)
	section("skipped", result.Skipped)
	section("missing", result.Missing)
	section("warnings", result.Warnings)
}
