package provider

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework-validators/int64validator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/ankek/terraform-provider-labelprint/internal/batch"
	"github.com/ankek/terraform-provider-labelprint/internal/cache"
	"github.com/ankek/terraform-provider-labelprint/internal/renderer"
)

// Ensure LabelprintProvider satisfies various provider interfaces.
var _ provider.Provider = &LabelprintProvider{}

// LabelprintProvider defines the provider implementation.
type LabelprintProvider struct {
	// version is set to the provider version on release, "dev" when the
	// provider is built and ran locally, and "test" when running acceptance
	// testing.
	version string
}

// LabelprintProviderModel describes the provider data model.
type LabelprintProviderModel struct {
	CacheSize    types.Int64  `tfsdk:"cache_size"`
	Concurrency  types.Int64  `tfsdk:"concurrency"`
	DPI          types.Int64  `tfsdk:"dpi"`
	StrictEAN13  types.Bool   `tfsdk:"strict_ean13"`
	CatalogToken types.String `tfsdk:"catalog_token"`
}

func (p *LabelprintProvider) Metadata(ctx context.Context, req provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "labelprint"
	resp.Version = p.version
}

func (p *LabelprintProvider) Schema(ctx context.Context, req provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		Description: "The Labelprint provider renders product labels (text, EAN-13 barcodes, QR codes and images) from HCL templates and a product catalog.",
		Attributes: map[string]schema.Attribute{
			"cache_size": schema.Int64Attribute{
				Description: "Number of rendered barcodes, QR codes and images kept in memory across batches. Default is 4096.",
				Optional:    true,
				Validators: []validator.Int64{
					int64validator.AtLeast(1),
				},
			},
			"concurrency": schema.Int64Attribute{
				Description: "Maximum number of elements rendered in parallel. Default is 8.",
				Optional:    true,
				Validators: []validator.Int64{
					int64validator.Between(1, 256),
				},
			},
			"dpi": schema.Int64Attribute{
				Description: "Output resolution used to convert millimetre and inch templates to pixels. Default is 300.",
				Optional:    true,
				Validators: []validator.Int64{
					int64validator.Between(36, 2400),
				},
			},
			"strict_ean13": schema.BoolAttribute{
				Description: "Leave barcodes with a wrong EAN-13 check digit blank instead of drawing them with a warning. Default is false.",
				Optional:    true,
			},
			"catalog_token": schema.StringAttribute{
				Description: "Bearer token for remote catalogs. Can also be set via the LABELPRINT_CATALOG_TOKEN environment variable.",
				Optional:    true,
				Sensitive:   true,
			},
		},
	}
}

func (p *LabelprintProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	var data LabelprintProviderModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	opts := GeneratorOptions{
		CacheSize:    cache.DefaultCapacity,
		Concurrency:  batch.DefaultConcurrency,
		DPI:          renderer.DefaultDPI,
		StrictEAN13:  data.StrictEAN13.ValueBool(),
		CatalogToken: data.CatalogToken.ValueString(),
	}
	if !data.CacheSize.IsNull() {
		opts.CacheSize = int(data.CacheSize.ValueInt64())
	}
	if !data.Concurrency.IsNull() {
		opts.Concurrency = int(data.Concurrency.ValueInt64())
	}
	if !data.DPI.IsNull() {
		opts.DPI = float64(data.DPI.ValueInt64())
	}

	batch.SetLogger(newTFLogger())
	tflog.Debug(ctx, "configured labelprint provider", map[string]interface{}{
		"cache_size":   opts.CacheSize,
		"concurrency":  opts.Concurrency,
		"dpi":          opts.DPI,
		"strict_ean13": opts.StrictEAN13,
	})

	// Share one generator, and so one render cache, across resources and data sources
	generator := NewBatchGenerator(opts)
	resp.DataSourceData = generator
	resp.ResourceData = generator
}

func (p *LabelprintProvider) Resources(ctx context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		NewBatchResource,
	}
}

func (p *LabelprintProvider) DataSources(ctx context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{
		NewBatchDataSource,
		NewEAN13DataSource,
	}
}

func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &LabelprintProvider{
			version: version,
		}
	}
}

// generatorFrom extracts the shared generator from provider data. Unconfigured
// providers (validation, tests) get a default one.
func generatorFrom(data any) (*BatchGenerator, bool) {
	if data == nil {
		return NewBatchGenerator(GeneratorOptions{}), true
	}
	g, ok := data.(*BatchGenerator)
	return g, ok
}
