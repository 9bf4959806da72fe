package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when an instrument set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Render outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// InvoiceMetrics holds the business instruments of the order and invoice
// flows. A nil *InvoiceMetrics records nothing.
type InvoiceMetrics struct {
	renderTotal    *Counter
	renderDuration *Histogram
	pages          *Histogram
	cacheLookups   *Counter
	printJobs      *Counter
	ordersCreated  *Counter
	orderAmount    *Counter
}

// NewInvoiceMetrics registers the instruments on meter.
func NewInvoiceMetrics(meter metric.Meter) (*InvoiceMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &InvoiceMetrics{}
	var err error

	if m.renderTotal, err = NewCounter(meter, "invoice_render_total",
		"Invoice renders by paper size and outcome", "{renders}"); err != nil {
		return nil, err
	}
	if m.renderDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "invoice_render_duration_seconds",
		Description: "Time spent laying out and encoding one invoice",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.pages, err = NewHistogram(meter, HistogramOpts{
		Name:        "invoice_pages",
		Description: "Pages per rendered invoice",
		Unit:        "{pages}",
		Boundaries:  PageCountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.cacheLookups, err = NewCounter(meter, "invoice_cache_lookups_total",
		"Rendered invoice cache lookups by result", "{lookups}"); err != nil {
		return nil, err
	}
	if m.printJobs, err = NewCounter(meter, "print_jobs_total",
		"Finished print jobs by status", "{jobs}"); err != nil {
		return nil, err
	}
	if m.ordersCreated, err = NewCounter(meter, "orders_created_total",
		"Orders created", "{orders}"); err != nil {
		return nil, err
	}
	if m.orderAmount, err = NewCounter(meter, "order_amount_total",
		"Sum of order totals in whole taka", "{taka}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRender records one render attempt.
func (m *InvoiceMetrics) RecordRender(ctx context.Context, paperSize string, d time.Duration, pages int, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	paper := AttrPaperSize.String(paperSize)
	m.renderTotal.Inc(ctx, paper, AttrOutcome.String(outcome))
	m.renderDuration.RecordDuration(ctx, d, paper)
	if err == nil {
		m.pages.Record(ctx, float64(pages), paper)
	}
}

// RecordCacheLookup records a hit or miss of the rendered invoice cache.
func (m *InvoiceMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Inc(ctx, AttrCacheResult.String(result))
}

// RecordPrintJob records a job reaching a terminal status.
func (m *InvoiceMetrics) RecordPrintJob(ctx context.Context, paperSize, status string) {
	if m == nil {
		return
	}
	m.printJobs.Inc(ctx, AttrPaperSize.String(paperSize), AttrJobStatus.String(status))
}

// RecordOrderCreated counts the order and adds its total, truncated to whole
// units.
func (m *InvoiceMetrics) RecordOrderCreated(ctx context.Context, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc(ctx)
	m.orderAmount.Add(ctx, total.IntPart())
}
