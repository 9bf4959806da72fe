// Package invoice lays out a customer invoice on a fixed-size label page.
//
// The engine is a pure function of its inputs: an OrderData value and a
// PageGeometry go in, positioned draw operations come out through a
// DocumentSink. Text measurement is injected through TextMetrics so the same
// layout runs against the PDF backend in production and against a Recorder in
// tests.
//
// A Session owns the vertical cursor for exactly one render. Sessions are not
// safe for concurrent use; independent renders use independent sessions.
package invoice
