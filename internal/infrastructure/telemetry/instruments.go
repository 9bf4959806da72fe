package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrUserID      = attribute.Key("user_id")
	AttrPaperSize   = attribute.Key("paper_size")
	AttrOutcome     = attribute.Key("outcome")
	AttrOrderStatus = attribute.Key("order_status")
	AttrJobStatus   = attribute.Key("job_status")
	AttrCacheResult = attribute.Key("cache_result")

	AttrDBOperation = attribute.Key("db.operation")
	AttrDBTable     = attribute.Key("db.table")
	AttrDBState     = attribute.Key("db.pool.state")

	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
)

// Histogram bucket boundaries. Render times are sub-second for label sized
// invoices; page counts rarely pass a handful.
var (
	RenderDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
	PageCountBuckets      = []float64{1, 2, 3, 5, 10, 20}
	DBDurationBuckets     = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
	HTTPDurationBuckets   = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
)

func attrs(kv []attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributes(kv...)
}

// Counter is a monotonic int64 counter
type Counter struct{ inst metric.Int64Counter }

func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	inst, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("counter %s: %w", name, err)
	}
	return &Counter{inst: inst}, nil
}

func (c *Counter) Add(ctx context.Context, n int64, kv ...attribute.KeyValue) {
	c.inst.Add(ctx, n, attrs(kv))
}

func (c *Counter) Inc(ctx context.Context, kv ...attribute.KeyValue) { c.Add(ctx, 1, kv...) }

// HistogramOpts names a float64 histogram. Boundaries are optional.
type HistogramOpts struct {
	Name        string
	Description string
	Unit        string
	Boundaries  []float64
}

// Histogram is a float64 distribution
type Histogram struct{ inst metric.Float64Histogram }

func NewHistogram(meter metric.Meter, o HistogramOpts) (*Histogram, error) {
	opts := []metric.Float64HistogramOption{metric.WithDescription(o.Description), metric.WithUnit(o.Unit)}
	if len(o.Boundaries) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(o.Boundaries...))
	}
	inst, err := meter.Float64Histogram(o.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", o.Name, err)
	}
	return &Histogram{inst: inst}, nil
}

func (h *Histogram) Record(ctx context.Context, v float64, kv ...attribute.KeyValue) {
	h.inst.Record(ctx, v, attrs(kv))
}

// RecordDuration records d in seconds
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, kv ...attribute.KeyValue) {
	h.Record(ctx, d.Seconds(), kv...)
}

// Gauge records the latest int64 value per attribute set
type Gauge struct{ inst metric.Int64Gauge }

func NewGauge(meter metric.Meter, name, description, unit string) (*Gauge, error) {
	inst, err := meter.Int64Gauge(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("gauge %s: %w", name, err)
	}
	return &Gauge{inst: inst}, nil
}

func (g *Gauge) Record(ctx context.Context, v int64, kv ...attribute.KeyValue) {
	g.inst.Record(ctx, v, attrs(kv))
}
