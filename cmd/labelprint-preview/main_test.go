package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const previewTemplate = `
label "shelf" {
  canvas {
    width  = 30
    height = 20
  }

  text "name" {
    x      = 1
    y      = 1
    width  = 28
    height = 5
    value  = product.name
  }

  barcode "ean" {
    x      = 1
    y      = 7
    width  = 28
    height = 12
    value  = product.barcode
  }
}
`

const previewCatalog = `
products:
  - id: "1"
    name: Green Tea
    price: 4.50
    metadata:
      - key: barcode
        value: "4006381333931"
  - id: "2"
    name: Mug
`

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	tpl := filepath.Join(dir, "labels.hcl")
	if err := os.WriteFile(tpl, []byte(previewTemplate), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}
	cat := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(cat, []byte(previewCatalog), 0644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	return tpl, cat
}

func TestParseArgs(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "preview.yaml")
	config := "template: a.hcl\ntemplate_name: shelf\ncatalog: c.json\nproducts: [\"1\", \"2\"]\nformat: svg\n"
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	tests := []struct {
		name         string
		args         []string
		wantTemplate string
		wantFormat   string
		wantProducts int
		wantOutput   string
		wantErr      bool
	}{
		{
			name:         "flags only",
			args:         []string{"-template", "x.hcl", "-products", "1, 2,,3"},
			wantTemplate: "x.hcl",
			wantProducts: 3,
			wantOutput:   ".",
		},
		{
			name:         "config file",
			args:         []string{"-config", configPath, "-out", "labels"},
			wantTemplate: "a.hcl",
			wantFormat:   "svg",
			wantProducts: 2,
			wantOutput:   "labels",
		},
		{
			name:         "flag overrides config",
			args:         []string{"-config", configPath, "-format", "pdf"},
			wantTemplate: "a.hcl",
			wantFormat:   "pdf",
			wantProducts: 2,
			wantOutput:   ".",
		},
		{
			name:    "no template",
			args:    []string{"-out", "labels"},
			wantErr: true,
		},
		{
			name:    "missing config",
			args:    []string{"-config", filepath.Join(dir, "nope.yaml")},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"-bogus"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _, err := parseArgs(tt.args, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.Template != tt.wantTemplate {
				t.Errorf("Template = %q, want %q", cfg.Template, tt.wantTemplate)
			}
			if cfg.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", cfg.Format, tt.wantFormat)
			}
			if len(cfg.Products) != tt.wantProducts {
				t.Errorf("Products = %v, want %d ids", cfg.Products, tt.wantProducts)
			}
			if cfg.Output != tt.wantOutput {
				t.Errorf("Output = %q, want %q", cfg.Output, tt.wantOutput)
			}
		})
	}
}

func TestRun(t *testing.T) {
	tpl, cat := writeFixtures(t)
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-template", tpl, "-catalog", cat, "-out", out, "-dpi", "150"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run() error = %v\nstderr: %s", err, stderr.String())
	}

	report := stdout.String()
	for _, want := range []string{"2 labels", "0_1.png", "1_2.png", "warnings:", "2/ean", "cache:"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	for _, name := range []string{"0_1.png", "1_2.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}
}
