package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework-validators/listvalidator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/ankek/terraform-provider-labelprint/internal/export"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &BatchDataSource{}
var _ datasource.DataSourceWithConfigure = &BatchDataSource{}

// BatchDataSource defines the data source implementation.
type BatchDataSource struct {
	generator *BatchGenerator
}

func NewBatchDataSource() datasource.DataSource {
	return &BatchDataSource{}
}

func (d *BatchDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_batch"
}

func (d *BatchDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Renders one label per product on every read. Use it for previews and pipelines where the files are consumed right away.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Data source identifier",
			},
			"template_path": schema.StringAttribute{
				MarkdownDescription: "Path to the HCL file defining `label` blocks.",
				Required:            true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
			},
			"template_name": schema.StringAttribute{
				MarkdownDescription: "Name of the `label` block to use. Required when the file defines more than one label.",
				Optional:            true,
			},
			"catalog_path": schema.StringAttribute{
				MarkdownDescription: "Path to a JSON or YAML product catalog.",
				Optional:            true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
					stringvalidator.ConflictsWith(path.MatchRoot("catalog_url")),
				},
			},
			"catalog_url": schema.StringAttribute{
				MarkdownDescription: "Base URL of a remote catalog.",
				Optional:            true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
					stringvalidator.ConflictsWith(path.MatchRoot("catalog_path")),
				},
			},
			"product_ids": schema.ListAttribute{
				MarkdownDescription: "Products to label, in output order. Defaults to the whole catalog.",
				ElementType:         types.StringType,
				Optional:            true,
				Validators: []validator.List{
					listvalidator.UniqueValues(),
				},
			},
			"output_dir": schema.StringAttribute{
				MarkdownDescription: "Directory the labels are written to. Created if missing.",
				Required:            true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
			},
			"format": schema.StringAttribute{
				MarkdownDescription: "Output format: 'png', 'svg' or 'pdf'. Default is 'png'.",
				Optional:            true,
				Computed:            true,
				Validators: []validator.String{
					stringvalidator.OneOf(export.Formats...),
				},
			},
			"job_id": schema.StringAttribute{
				MarkdownDescription: "Identifier of this batch run.",
				Computed:            true,
			},
			"label_count": schema.Int64Attribute{
				MarkdownDescription: "Number of labels written.",
				Computed:            true,
			},
			"files": schema.ListAttribute{
				MarkdownDescription: "Written files in label order.",
				ElementType:         types.StringType,
				Computed:            true,
			},
			"failed_products": schema.ListAttribute{
				MarkdownDescription: "Products that produced no label, as `id: reason`.",
				ElementType:         types.StringType,
				Computed:            true,
			},
			"skipped_products": schema.ListAttribute{
				MarkdownDescription: "Products not processed because the run was cancelled.",
				ElementType:         types.StringType,
				Computed:            true,
			},
			"missing_products": schema.ListAttribute{
				MarkdownDescription: "Requested product ids the catalog does not know.",
				ElementType:         types.StringType,
				Computed:            true,
			},
		},
	}
}

func (d *BatchDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	generator, ok := generatorFrom(req.ProviderData)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Data Source Configure Type",
			fmt.Sprintf("Expected *provider.BatchGenerator, got: %T. Please report this issue to the provider developers.", req.ProviderData),
		)
		return
	}
	d.generator = generator
}

func (d *BatchDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data batchModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	cfg, diags := data.batchConfig(ctx)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	generator := d.generator
	if generator == nil {
		generator = NewBatchGenerator(GeneratorOptions{})
	}

	// Use the generator to render and write the labels
	result, err := generator.Generate(ctx, cfg)
	if err != nil {
		resp.Diagnostics.AddError("Failed to generate labels", err.Error())
		return
	}

	reportResult(ctx, result, &resp.Diagnostics)
	resp.Diagnostics.Append(data.setResult(ctx, cfg, result)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}
