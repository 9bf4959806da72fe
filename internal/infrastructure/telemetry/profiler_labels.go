package telemetry

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/grafana/pyroscope-go"
)

const (
	ProfilingLabelRoute     = "route"
	ProfilingLabelMethod    = "method"
	ProfilingLabelOperation = "operation"
	ProfilingLabelPaperSize = "paper_size"
)

const MaxLabelValueLength = 128

// HighCardinalityLabels would make one profile series per entity; they are
// never attached.
var HighCardinalityLabels = map[string]bool{
	"user_id":    true,
	"request_id": true,
	"order_id":   true,
	"job_id":     true,
	"trace_id":   true,
	"span_id":    true,
}

// WithProfilingLabels runs fn under pprof labels Pyroscope can slice by.
// With no usable labels fn runs directly.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	if pairs := sanitizeLabels(labels); len(pairs) > 0 {
		pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
		return
	}
	fn(ctx)
}

// OperationLabels adds the operation name to a copy of extra
func OperationLabels(operation string, extra map[string]string) map[string]string {
	labels := maps.Clone(extra)
	if labels == nil {
		labels = make(map[string]string, 1)
	}
	labels[ProfilingLabelOperation] = operation
	return labels
}

func HTTPRequestLabels(route, method string) map[string]string {
	return map[string]string{ProfilingLabelRoute: route, ProfilingLabelMethod: method}
}

// sanitizeLabels flattens labels to key/value pairs in key order, dropping
// empty values and high cardinality keys and truncating long values.
func sanitizeLabels(labels map[string]string) []string {
	var pairs []string
	for _, key := range slices.Sorted(maps.Keys(labels)) {
		value := labels[key]
		if value == "" || HighCardinalityLabels[key] {
			continue
		}
		k := sanitizeLabelKey(key)
		if k == "" {
			continue
		}
		pairs = append(pairs, k, value[:min(len(value), MaxLabelValueLength)])
	}
	return pairs
}

// sanitizeLabelKey lowercases key, turns spaces and hyphens into
// underscores and drops anything outside [a-z0-9_].
func sanitizeLabelKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '-':
			return '_'
		case r == '_', 'a' <= r && r <= 'z', '0' <= r && r <= '9':
			return r
		}
		return -1
	}, strings.ToLower(key))
}
