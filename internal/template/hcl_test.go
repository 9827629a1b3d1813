package template

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ankek/terraform-provider-labelprint/internal/element"
)

const shelfLabel = `
label "shelf" {
  background = "#FFFFEE"

  canvas {
    width  = 50
    height = 30
    unit   = "mm"
  }

  text "name" {
    x         = 2
    y         = 2
    width     = 46
    height    = 6
    font_size = 9
    weight    = "bold"
    value     = product.name
  }

  text "category" {
    x     = 2
    y     = 8
    width = 46
    height = 4
    value = product.category_info.primary.name
  }

  barcode "ean" {
    x      = 2
    y      = 12
    width  = 46
    height = 14
    z      = 2
    value  = product.barcode
  }

  qr "link" {
    x     = 40
    y     = 2
    size  = 8
    value = "https://shop.example/p"
  }

  image "logo" {
    x      = -2
    y      = 0
    width  = 8
    height = 8
    source = "logo.png"
  }

  text "price" {
    x    = 30
    y    = 26
    bind = "product.price"
  }
}
`

func TestParse(t *testing.T) {
	templates, err := Parse([]byte(shelfLabel), "shelf.hcl")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("Parse() returned %d templates, want 1", len(templates))
	}

	tpl := templates[0]
	if tpl.Name != "shelf" {
		t.Errorf("Name = %q, want shelf", tpl.Name)
	}
	if tpl.Canvas != (Canvas{Width: 50, Height: 30, Unit: UnitMillimeter}) {
		t.Errorf("Canvas = %+v", tpl.Canvas)
	}
	if tpl.Background != "#FFFFEE" {
		t.Errorf("Background = %q", tpl.Background)
	}
	if tpl.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", tpl.Len())
	}

	tests := []struct {
		id      string
		kind    element.Kind
		binding string
		value   string
	}{
		{id: "name", kind: element.KindText, binding: "name"},
		{id: "category", kind: element.KindText, binding: "category_info.primary.name"},
		{id: "ean", kind: element.KindBarcode, binding: "barcode"},
		{id: "link", kind: element.KindQR, value: "https://shop.example/p"},
		{id: "logo", kind: element.KindImage, value: "logo.png"},
		{id: "price", kind: element.KindText, binding: "price"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			el, ok := tpl.Get(tt.id)
			if !ok {
				t.Fatalf("element %s not found", tt.id)
			}
			if el.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", el.Kind(), tt.kind)
			}
			src := el.Source()
			if src.Binding != tt.binding || src.Value != tt.value {
				t.Errorf("Source() = %+v, want binding %q value %q", src, tt.binding, tt.value)
			}
		})
	}

	name, _ := tpl.Get("name")
	text := name.Body.(*element.Text)
	if text.FontSize != 9 || text.Weight != "bold" {
		t.Errorf("text style = %+v", text)
	}
	link, _ := tpl.Get("link")
	if link.Size.Width != 8 || link.Size.Height != 8 {
		t.Errorf("qr size = %+v, want 8x8", link.Size)
	}
	ean, _ := tpl.Get("ean")
	if ean.Z != 2 {
		t.Errorf("ean z = %d, want 2", ean.Z)
	}
	logo, _ := tpl.Get("logo")
	if logo.Position.X != -2 {
		t.Errorf("logo x = %v, want -2", logo.Position.X)
	}

	if err := tpl.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax error",
			src:     `label "x" {`,
			wantErr: "HCL parse errors",
		},
		{
			name:    "no labels",
			src:     ``,
			wantErr: "no label blocks",
		},
		{
			name: "missing canvas",
			src: `label "x" {
  text "a" { value = "hi" }
}`,
			wantErr: "Missing canvas block",
		},
		{
			name: "duplicate element id",
			src: `label "x" {
  canvas {
    width  = 10
    height = 10
  }
  text "a" { value = "one" }
  text "a" { value = "two" }
}`,
			wantErr: "duplicate element identifier",
		},
		{
			name: "unknown attribute",
			src: `label "x" {
  canvas {
    width  = 10
    height = 10
  }
  barcode "a" { font_size = 3 }
}`,
			wantErr: "Unsupported argument",
		},
		{
			name: "value and bind",
			src: `label "x" {
  canvas {
    width  = 10
    height = 10
  }
  text "a" {
    value = "x"
    bind  = "name"
  }
}`,
			wantErr: "Conflicting value source",
		},
		{
			name: "non product reference",
			src: `label "x" {
  canvas {
    width  = 10
    height = 10
  }
  text "a" { value = var.name }
}`,
			wantErr: "failed to decode label",
		},
		{
			name: "duplicate label",
			src: `label "x" {
  canvas {
    width  = 10
    height = 10
  }
}
label "x" {
  canvas {
    width  = 10
    height = 10
  }
}`,
			wantErr: "defined more than once",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.hcl")
			if err == nil {
				t.Fatalf("Parse() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "labels.hcl")
	if err := os.WriteFile(path, []byte(shelfLabel), 0644); err != nil {
		t.Fatalf("Failed to write template file: %v", err)
	}

	templates, err := LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(templates) != 1 {
		t.Errorf("LoadFile() returned %d templates, want 1", len(templates))
	}

	if _, err := LoadFile(context.Background(), filepath.Join(tmpDir, "missing.hcl")); err == nil {
		t.Error("LoadFile() expected error for missing file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadFile(ctx, path); err == nil {
		t.Error("LoadFile() expected error for cancelled context")
	}
}
