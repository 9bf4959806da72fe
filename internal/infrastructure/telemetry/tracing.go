package telemetry

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "murdhanno-backend"

// Span attribute keys used by the order and invoice services
const (
	SpanAttrOrderID     = "order_id"
	SpanAttrOrderNumber = "order_number"
	SpanAttrOrderStatus = "order_status"
	SpanAttrItemCount   = "item_count"
	SpanAttrPaperSize   = "paper_size"
	SpanAttrPageCount   = "page_count"
	SpanAttrJobID       = "print_job_id"
	SpanAttrCacheHit    = "cache_hit"
	SpanAttrPDFBytes    = "pdf_bytes"
)

type SpanOption = trace.SpanStartOption

// WithAttribute sets key on the span at start
func WithAttribute(key string, value any) SpanOption {
	return trace.WithAttributes(toAttribute(key, value))
}

// StartServiceSpan starts an internal span named service.method on the
// global provider. The caller ends it.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "render")
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	opts = append([]SpanOption{trace.WithSpanKind(trace.SpanKindInternal)}, opts...)
	return otel.Tracer(TracerName).Start(ctx, service+"."+method, opts...)
}

// SetAttributes takes alternating keys and values. A pair whose key is not a
// string is dropped.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span != nil {
		span.SetAttributes(pairs(keyValues)...)
	}
}

func AddEvent(span trace.Span, name string, keyValues ...any) {
	if span != nil {
		span.AddEvent(name, trace.WithAttributes(pairs(keyValues)...))
	}
}

// RecordError marks the span failed with err. A nil err is ignored.
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span != nil && err != nil {
		span.RecordError(err, opts...)
		span.SetStatus(codes.Error, err.Error())
	}
}

func SetOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// pairs drops a trailing key without a value
func pairs(keyValues []any) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for kv := range slices.Chunk(keyValues, 2) {
		if key, ok := kv[0].(string); ok && len(kv) == 2 {
			attrs = append(attrs, toAttribute(key, kv[1]))
		}
	}
	return attrs
}

// toAttribute keeps numbers and booleans typed. Stringers such as uuids and
// decimals become strings.
func toAttribute(key string, value any) attribute.KeyValue {
	k := attribute.Key(key)
	switch v := value.(type) {
	case string:
		return k.String(v)
	case bool:
		return k.Bool(v)
	case int:
		return k.Int(v)
	case int64:
		return k.Int64(v)
	case float64:
		return k.Float64(v)
	case []string:
		return k.StringSlice(v)
	case fmt.Stringer:
		return k.String(v.String())
	}
	return k.String(fmt.Sprint(value))
}
