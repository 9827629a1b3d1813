// Package batch renders one label per product from a shared template.
// Products are processed in input order; the elements of a label render in
// parallel under an engine-wide concurrency limit.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/ankek/terraform-provider-labelprint/internal/binding"
	"github.com/ankek/terraform-provider-labelprint/internal/catalog"
	"github.com/ankek/terraform-provider-labelprint/internal/renderer"
	"github.com/ankek/terraform-provider-labelprint/internal/template"
)

// DefaultConcurrency bounds element renders when Options.Concurrency is unset
const DefaultConcurrency = 8

// Resolver binds template elements to one product
type Resolver interface {
	Resolve(tpl *template.Template, product *catalog.Product) ([]binding.ResolvedElement, error)
}

// ElementRenderer renders one resolved element
type ElementRenderer interface {
	Render(ctx context.Context, unit template.Unit, el binding.ResolvedElement) renderer.Result
	DPI() float64
}

// Options configures an Engine
type Options struct {
	Concurrency int
	Resolver    Resolver
	Renderer    ElementRenderer
	StrictEAN13 bool // used when Resolver is nil
	// OnLabel is called synchronously after each label is assembled
	OnLabel func(*RenderedLabel)
}

// Engine runs label batches. One engine may run several batches concurrently;
// they share its concurrency limit and its renderer's cache.
type Engine struct {
	resolver Resolver
	renderer ElementRenderer
	onLabel  func(*RenderedLabel)
	sem      *semaphore.Weighted
}

// NewEngine creates an engine, filling unset options with defaults
func NewEngine(opts Options) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Resolver == nil {
		opts.Resolver = binding.NewResolver(binding.Options{StrictEAN13: opts.StrictEAN13})
	}
	if opts.Renderer == nil {
		opts.Renderer = renderer.New(renderer.Options{})
	}
	return &Engine{
		resolver: opts.Resolver,
		renderer: opts.Renderer,
		onLabel:  opts.OnLabel,
		sem:      semaphore.NewWeighted(int64(opts.Concurrency)),
	}
}

// ExportBatch renders one label per product. A structurally invalid template
// fails the whole batch before any product is touched. Otherwise per-product
// problems land in Result.Failures and the batch continues. Once ctx is
// cancelled no further product is started; renders already running finish
// and the remaining products are reported in Result.Skipped.
func (e *Engine) ExportBatch(ctx context.Context, tpl *template.Template, products []catalog.Product) (*Result, error) {
	if tpl == nil {
		return nil, fmt.Errorf("template is nil")
	}
	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	result := &Result{JobID: uuid.NewString()}
	log := Logger().With(slog.String("job_id", result.JobID), slog.String("template", tpl.Name))
	log.InfoContext(ctx, "batch started", slog.Int("products", len(products)))
	start := time.Now()

	for i := range products {
		p := &products[i]

		if ctx.Err() != nil {
			result.Skipped = append(result.Skipped, p.ID)
			continue
		}

		label, err := e.exportOne(ctx, tpl.Clone(), p, i)
		if err != nil {
			log.WarnContext(ctx, "product failed", slog.String("product_id", p.ID), slog.Any("error", err))
			result.Failures = append(result.Failures, Failure{ProductID: p.ID, Reason: err.Error(), Err: err})
			continue
		}

		for _, issue := range label.Issues() {
			log.WarnContext(ctx, "element degraded", slog.String("product_id", p.ID), slog.String("issue", issue))
		}
		log.DebugContext(ctx, "label rendered", slog.String("product_id", p.ID), slog.Int("index", i))

		result.Labels = append(result.Labels, label)
		if e.onLabel != nil {
			e.onLabel(label)
		}
	}

	if len(result.Skipped) > 0 {
		log.WarnContext(ctx, "batch cancelled", slog.Int("skipped", len(result.Skipped)), slog.Any("error", ctx.Err()))
	}
	log.InfoContext(ctx, "batch finished",
		slog.Int("labels", len(result.Labels)),
		slog.Int("failures", len(result.Failures)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// exportOne resolves and renders a single product
func (e *Engine) exportOne(ctx context.Context, tpl *template.Template, p *catalog.Product, index int) (*RenderedLabel, error) {
	resolved, err := e.resolve(tpl, p)
	if err != nil {
		return nil, &ProductResolutionError{ProductID: p.ID, Err: err}
	}

	dpi := e.renderer.DPI()
	unit := tpl.Canvas.Unit
	layers := make([]renderer.Layer, len(resolved))

	// Started renders always complete, even if the batch is cancelled meanwhile.
	renderCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i, re := range resolved {
		if err := e.sem.Acquire(renderCtx, 1); err != nil {
			return nil, fmt.Errorf("failed to acquire render slot: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer e.sem.Release(1)
			layers[i] = e.renderLayer(renderCtx, unit, dpi, re)
		}()
	}
	wg.Wait()

	return &RenderedLabel{
		ProductID: p.ID,
		Index:     index,
		Canvas:    renderer.CanvasFor(tpl, dpi),
		Layers:    layers,
	}, nil
}

// resolve converts panics from malformed product data into errors
func (e *Engine) resolve(tpl *template.Template, p *catalog.Product) (resolved []binding.ResolvedElement, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during resolution: %v", r)
		}
	}()
	return e.resolver.Resolve(tpl, p)
}

func (e *Engine) renderLayer(ctx context.Context, unit template.Unit, dpi float64, re binding.ResolvedElement) (layer renderer.Layer) {
	el := re.Element
	layer = renderer.Layer{
		ElementID: el.ID,
		Kind:      el.Kind(),
		Box:       renderer.BoxFor(el, unit, dpi),
		Blank:     re.Blank,
		Invalid:   re.Invalid,
	}
	if re.Issue != nil {
		layer.Reason = re.Issue.Reason
	}

	defer func() {
		if r := recover(); r != nil {
			layer.Artifact = nil
			layer.Blank = true
			layer.Reason = fmt.Sprintf("render panic: %v", r)
		}
	}()

	res := e.renderer.Render(ctx, unit, re)
	layer.Artifact = res.Artifact
	if res.Blank {
		layer.Blank = true
	}
	if res.Err != nil {
		layer.Reason = res.Err.Error()
	}
	return layer
}
