package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/terraform-plugin-framework-validators/listvalidator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringdefault"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/ankek/terraform-provider-labelprint/internal/export"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ resource.Resource = &BatchResource{}
var _ resource.ResourceWithConfigure = &BatchResource{}

func NewBatchResource() resource.Resource {
	return &BatchResource{}
}

// BatchResource defines the resource implementation.
type BatchResource struct {
	generator *BatchGenerator
}

func (r *BatchResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_batch"
}

func (r *BatchResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	replace := []planmodifier.String{stringplanmodifier.RequiresReplace()}

	resp.Schema = schema.Schema{
		MarkdownDescription: "Renders one label per product from an HCL label template and writes them to `output_dir`. Labels are regenerated whenever an input changes or a written file disappears.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Identifier derived from the batch inputs",
			},
			"template_path": schema.StringAttribute{
				MarkdownDescription: "Path to the HCL file defining `label` blocks. Relative image sources resolve against its directory.",
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
					stringvalidator.ExactlyOneOf(path.MatchRoot("catalog_url")),
				},
			},
			"catalog_url": schema.StringAttribute{
				MarkdownDescription: "Base URL of a remote catalog serving `GET /products` and `GET /products/{id}`.",
				Optional:            true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
			},
			"product_ids": schema.ListAttribute{
				MarkdownDescription: "Products to label, in output order. Defaults to the whole catalog.",
				ElementType:         types.StringType,
				Optional:            true,
				Validators: []validator.List{
					listvalidator.UniqueValues(),
					listvalidator.ValueStringsAre(stringvalidator.LengthAtLeast(1)),
				},
			},
			"output_dir": schema.StringAttribute{
				MarkdownDescription: "Directory the labels are written to. Created if missing.",
				Required:            true,
				PlanModifiers:       replace,
			},
			"format": schema.StringAttribute{
				MarkdownDescription: "Output format: 'png' or 'svg' (one file per label) or 'pdf' (one page per label). Default is 'png'.",
				Optional:            true,
				Computed:            true,
				Default:             stringdefault.StaticString(string(export.FormatPNG)),
				PlanModifiers:       replace,
				Validators: []validator.String{
					stringvalidator.OneOf(export.Formats...),
				},
			},
			"job_id": schema.StringAttribute{
				MarkdownDescription: "Identifier of the batch run that produced the files.",
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

func (r *BatchResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	generator, ok := generatorFrom(req.ProviderData)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Resource Configure Type",
			fmt.Sprintf("Expected *provider.BatchGenerator, got: %T. Please report this issue to the provider developers.", req.ProviderData),
		)
		return
	}
	r.generator = generator
}

func (r *BatchResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data batchModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(r.generate(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *BatchResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data batchModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	// Regenerate when any written file disappeared
	var files []string
	if !data.Files.IsNull() && !data.Files.IsUnknown() {
		resp.Diagnostics.Append(data.Files.ElementsAs(ctx, &files, false)...)
		if resp.Diagnostics.HasError() {
			return
		}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			tflog.Info(ctx, "label file removed outside terraform", map[string]interface{}{"file": f})
			resp.State.RemoveResource(ctx)
			return
		}
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *BatchResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var data, prior batchModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	resp.Diagnostics.Append(req.State.Get(ctx, &prior)...)
	if resp.Diagnostics.HasError() {
		return
	}

	// Re-create the labels with the updated configuration, then drop files no
	// longer produced
	resp.Diagnostics.Append(r.generate(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}
	resp.Diagnostics.Append(removeStale(ctx, prior.Files, data.Files)...)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *BatchResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data batchModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(removeStale(ctx, data.Files, types.ListNull(types.StringType))...)
}

// generate runs the batch for the model and fills its computed attributes
func (r *BatchResource) generate(ctx context.Context, data *batchModel) diag.Diagnostics {
	var diags diag.Diagnostics

	cfg, d := data.batchConfig(ctx)
	diags.Append(d...)
	if diags.HasError() {
		return diags
	}

	generator := r.generator
	if generator == nil {
		generator = NewBatchGenerator(GeneratorOptions{})
	}

	result, err := generator.Generate(ctx, cfg)
	if err != nil {
		diags.AddError("Failed to generate labels", err.Error())
		return diags
	}

	reportResult(ctx, result, &diags)
	diags.Append(data.setResult(ctx, cfg, result)...)
	return diags
}

// removeStale deletes files listed in old but not in keep
func removeStale(ctx context.Context, old, keep types.List) diag.Diagnostics {
	var diags diag.Diagnostics
	var oldFiles, keepFiles []string

	if !old.IsNull() && !old.IsUnknown() {
		diags.Append(old.ElementsAs(ctx, &oldFiles, false)...)
	}
	if !keep.IsNull() && !keep.IsUnknown() {
		diags.Append(keep.ElementsAs(ctx, &keepFiles, false)...)
	}

	kept := make(map[string]bool, len(keepFiles))
	for _, f := range keepFiles {
		kept[f] = true
	}
	for _, f := range oldFiles {
		if kept[f] {
			continue
		}
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			diags.AddWarning("Failed to remove label file", fmt.Sprintf("%s: %v", f, err))
		}
	}
	return diags
}
