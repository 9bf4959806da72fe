package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"Paper-Size": "LABEL_4X6",
		"operation":  "invoice_render",
		"order_id":   "42",
		"empty":      "",
		"!!!":        "dropped",
		"long":       strings.Repeat("x", MaxLabelValueLength+10),
	})

	// keys are visited in byte order, so "Paper-Size" comes first
	assert.Equal(t, []string{
		"paper_size", "LABEL_4X6",
		"long", strings.Repeat("x", MaxLabelValueLength),
		"operation", "invoice_render",
	}, pairs)
	assert.Nil(t, sanitizeLabels(nil))
}

func TestSanitizeLabelKey(t *testing.T) {
	assert.Equal(t, "http_route", sanitizeLabelKey("HTTP Route"))
	assert.Equal(t, "a_b", sanitizeLabelKey("a-b"))
	assert.Equal(t, "", sanitizeLabelKey("$%"))
}

func TestWithProfilingLabels(t *testing.T) {
	labels := OperationLabels("invoice_render", map[string]string{ProfilingLabelPaperSize: "LABEL_100X70"})

	var op, paper string
	WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
		op, _ = pprof.Label(ctx, ProfilingLabelOperation)
		paper, _ = pprof.Label(ctx, ProfilingLabelPaperSize)
	})
	assert.Equal(t, "invoice_render", op)
	assert.Equal(t, "LABEL_100X70", paper)

	called := false
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
	assert.True(t, called)
}

func TestHTTPRequestLabels(t *testing.T) {
	labels := HTTPRequestLabels("/api/v1/orders", "GET")
	assert.Equal(t, "/api/v1/orders", labels[ProfilingLabelRoute])
	assert.Equal(t, "GET", labels[ProfilingLabelMethod])
}
