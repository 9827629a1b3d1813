package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/ankek/terraform-provider-labelprint/internal/catalog"
	"github.com/ankek/terraform-provider-labelprint/internal/interfaces"
	"github.com/ankek/terraform-provider-labelprint/internal/validation"
)

// CatalogTokenEnv is read when the provider block sets no catalog_token
const CatalogTokenEnv = "LABELPRINT_CATALOG_TOKEN"

// LoadCatalog picks the product source for a batch: a local catalog file or a
// remote HTTP catalog. The token falls back to CatalogTokenEnv.
func LoadCatalog(ctx context.Context, cfg interfaces.BatchConfig, token string) (interfaces.ProductSource, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch {
	case cfg.CatalogPath != "" && cfg.CatalogURL != "":
		return nil, fmt.Errorf("catalog_path and catalog_url are mutually exclusive")

	case cfg.CatalogPath != "":
		if err := validation.ValidateInputPath(cfg.CatalogPath, false); err != nil {
			return nil, fmt.Errorf("invalid catalog path: %w", err)
		}
		path, err := validation.ExpandPath(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		return catalog.NewFileSource(path), nil

	case cfg.CatalogURL != "":
		if err := validation.ValidateCatalogURL(cfg.CatalogURL); err != nil {
			return nil, err
		}
		if token == "" {
			token = os.Getenv(CatalogTokenEnv)
		}
		return catalog.NewHTTPSource(cfg.CatalogURL, token), nil
	}

	return nil, fmt.Errorf("either catalog_path or catalog_url must be provided")
}
