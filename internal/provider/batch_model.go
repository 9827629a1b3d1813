package provider

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/ankek/terraform-provider-labelprint/internal/export"
	"github.com/ankek/terraform-provider-labelprint/internal/interfaces"
)

// maxWarnings caps the per-element warnings surfaced as diagnostics
const maxWarnings = 20

// batchModel is the data model shared by the labelprint_batch resource and data source.
type batchModel struct {
	ID              types.String `tfsdk:"id"`
	TemplatePath    types.String `tfsdk:"template_path"`
	TemplateName    types.String `tfsdk:"template_name"`
	CatalogPath     types.String `tfsdk:"catalog_path"`
	CatalogURL      types.String `tfsdk:"catalog_url"`
	ProductIDs      types.List   `tfsdk:"product_ids"`
	OutputDir       types.String `tfsdk:"output_dir"`
	Format          types.String `tfsdk:"format"`
	JobID           types.String `tfsdk:"job_id"`
	LabelCount      types.Int64  `tfsdk:"label_count"`
	Files           types.List   `tfsdk:"files"`
	FailedProducts  types.List   `tfsdk:"failed_products"`
	SkippedProducts types.List   `tfsdk:"skipped_products"`
	MissingProducts types.List   `tfsdk:"missing_products"`
}

// batchConfig converts the model into generator input, applying defaults
func (m *batchModel) batchConfig(ctx context.Context) (interfaces.BatchConfig, diag.Diagnostics) {
	var diags diag.Diagnostics

	format := string(export.FormatPNG)
	if !m.Format.IsNull() && !m.Format.IsUnknown() && m.Format.ValueString() != "" {
		format = m.Format.ValueString()
	}
	m.Format = types.StringValue(format)

	var ids []string
	if !m.ProductIDs.IsNull() && !m.ProductIDs.IsUnknown() {
		diags.Append(m.ProductIDs.ElementsAs(ctx, &ids, false)...)
	}

	return interfaces.BatchConfig{
		TemplatePath: m.TemplatePath.ValueString(),
		TemplateName: m.TemplateName.ValueString(),
		CatalogPath:  m.CatalogPath.ValueString(),
		CatalogURL:   m.CatalogURL.ValueString(),
		ProductIDs:   ids,
		OutputDir:    m.OutputDir.ValueString(),
		Format:       format,
	}, diags
}

// setResult copies the generator result into the computed attributes
func (m *batchModel) setResult(ctx context.Context, cfg interfaces.BatchConfig, result *interfaces.GenerateResult) diag.Diagnostics {
	var diags diag.Diagnostics

	m.ID = types.StringValue(batchID(cfg))
	m.JobID = types.StringValue(result.JobID)
	m.LabelCount = types.Int64Value(result.LabelCount)

	for _, set := range []struct {
		dst    *types.List
		values []string
	}{
		{&m.Files, result.Files},
		{&m.FailedProducts, result.FailedProducts},
		{&m.SkippedProducts, result.Skipped},
		{&m.MissingProducts, result.Missing},
	} {
		values := set.values
		if values == nil {
			values = []string{}
		}
		list, d := types.ListValueFrom(ctx, types.StringType, values)
		diags.Append(d...)
		*set.dst = list
	}

	return diags
}

// reportResult logs the batch outcome and turns partial failures into warnings
func reportResult(ctx context.Context, result *interfaces.GenerateResult, diags *diag.Diagnostics) {
	tflog.Info(ctx, "generated label batch", map[string]interface{}{
		"job_id":      result.JobID,
		"label_count": result.LabelCount,
		"failed":      len(result.FailedProducts),
		"skipped":     len(result.Skipped),
		"missing":     len(result.Missing),
	})

	if len(result.Missing) > 0 {
		diags.AddWarning("Products not found in catalog",
			fmt.Sprintf("No labels were generated for: %s", strings.Join(result.Missing, ", ")))
	}
	if len(result.FailedProducts) > 0 {
		diags.AddWarning("Some products could not be labelled", strings.Join(result.FailedProducts, "\n"))
	}
	if len(result.Skipped) > 0 {
		diags.AddWarning("Label batch was interrupted",
			fmt.Sprintf("%d products were not processed: %s", len(result.Skipped), strings.Join(result.Skipped, ", ")))
	}
	if len(result.Warnings) > 0 {
		warnings := result.Warnings
		if len(warnings) > maxWarnings {
			warnings = append(warnings[:maxWarnings:maxWarnings], fmt.Sprintf("... and %d more", len(result.Warnings)-maxWarnings))
		}
		diags.AddWarning("Some label elements were left blank or flagged", strings.Join(warnings, "\n"))
	}
}

// batchID derives a stable identifier from the batch inputs
func batchID(cfg interfaces.BatchConfig) string {
	key := strings.Join([]string{
		cfg.TemplatePath,
		cfg.TemplateName,
		cfg.CatalogPath,
		cfg.CatalogURL,
		strings.Join(cfg.ProductIDs, ","),
		cfg.OutputDir,
		cfg.Format,
	}, "\x00")
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash[:8])
}
