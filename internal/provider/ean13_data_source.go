package provider

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/ankek/terraform-provider-labelprint/internal/barcode"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &EAN13DataSource{}

// EAN13DataSource validates and formats a single EAN-13 code.
type EAN13DataSource struct{}

func NewEAN13DataSource() datasource.DataSource {
	return &EAN13DataSource{}
}

// EAN13DataSourceModel describes the data source data model.
type EAN13DataSourceModel struct {
	Code       types.String `tfsdk:"code"`
	Normalized types.String `tfsdk:"normalized"`
	Valid      types.Bool   `tfsdk:"valid"`
	CheckDigit types.Int64  `tfsdk:"check_digit"`
	Display    types.String `tfsdk:"display"`
}

func (d *EAN13DataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_ean13"
}

func (d *EAN13DataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Checks an EAN-13 code and formats it for display.",

		Attributes: map[string]schema.Attribute{
			"code": schema.StringAttribute{
				MarkdownDescription: "Code to check. Spaces and dashes are ignored.",
				Required:            true,
			},
			"normalized": schema.StringAttribute{
				MarkdownDescription: "The code with separators removed.",
				Computed:            true,
			},
			"valid": schema.BoolAttribute{
				MarkdownDescription: "Whether the code has 13 digits and a correct check digit.",
				Computed:            true,
			},
			"check_digit": schema.Int64Attribute{
				MarkdownDescription: "Check digit computed from the first 12 digits; null when they are not 12 digits.",
				Computed:            true,
			},
			"display": schema.StringAttribute{
				MarkdownDescription: "Human readable grouping, e.g. `400 6381 3339 31`.",
				Computed:            true,
			},
		},
	}
}

func (d *EAN13DataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data EAN13DataSourceModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	data = describeEAN13(data.Code.ValueString())
	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

// describeEAN13 computes every attribute of the data source for a code
func describeEAN13(code string) EAN13DataSourceModel {
	normalized := barcode.Clean(code)
	model := EAN13DataSourceModel{
		Code:       types.StringValue(code),
		Normalized: types.StringValue(normalized),
		Valid:      types.BoolValue(barcode.ValidateEAN13(normalized)),
		CheckDigit: types.Int64Null(),
		Display:    types.StringValue(barcode.FormatForDisplay(normalized)),
	}

	first12 := normalized
	if len(first12) > 12 {
		first12 = first12[:12]
	}
	if digit, err := barcode.CheckDigit(first12); err == nil {
		model.CheckDigit = types.Int64Value(int64(digit))
	}
	return model
}
