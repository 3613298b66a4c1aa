// SPDX-License-Identifier: EPL-2.0

// Package observe provides OpenTelemetry metrics for the compression
// service, a Prometheus scrape handler and the HTTP middleware that ties
// request logging and metrics together.
//
// Tests should build [Metrics] with [NewMetrics] over their own
// [metric.MeterProvider] to avoid sharing the global one.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope of every instrument.
const meterName = "github.com/muhammadfauzanis/compressing-image-audio"

// Metrics holds the instruments. All fields are safe for concurrent use.
type Metrics struct {
	// EncodeDuration is the wall time of one decode+encode run, in seconds.
	// Attributes: format, status.
	EncodeDuration metric.Float64Histogram

	// InputSamples counts PCM samples handed to the encoder.
	InputSamples metric.Int64Counter

	// OutputBytes counts MP3 bytes produced.
	OutputBytes metric.Int64Counter

	// Requests counts compress requests. Attributes: status.
	Requests metric.Int64Counter

	// HTTPRequestDuration tracks request latency. Attributes: method, path,
	// status.
	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.EncodeDuration, err = m.Float64Histogram("compress.encode.duration",
		metric.WithDescription("Time spent decoding and encoding one input."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.InputSamples, err = m.Int64Counter("compress.encode.input_samples",
		metric.WithDescription("PCM samples submitted to the MP3 encoder."),
		metric.WithUnit("{sample}"),
	); err != nil {
		return nil, err
	}
	if met.OutputBytes, err = m.Int64Counter("compress.encode.output_bytes",
		metric.WithDescription("MP3 bytes produced by the encoder."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.Requests, err = m.Int64Counter("compress.requests",
		metric.WithDescription("Compress requests by outcome."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("compress.http.request.duration",
		metric.WithDescription("HTTP request latency by method, path and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level instance over the global meter
// provider, created on first use.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordEncode records one finished compression. samples and size are
// only counted on success.
func (m *Metrics) RecordEncode(ctx context.Context, format, status string, elapsed time.Duration, samples, size int) {
	attrs := metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status),
	)
	m.EncodeDuration.Record(ctx, elapsed.Seconds(), attrs)

	if status != StatusOK {
		return
	}
	m.InputSamples.Add(ctx, int64(samples), metric.WithAttributes(attribute.String("format", format)))
	m.OutputBytes.Add(ctx, int64(size), metric.WithAttributes(attribute.String("format", format)))
}

// RecordRequest counts one compress request with its outcome.
func (m *Metrics) RecordRequest(ctx context.Context, status string) {
	m.Requests.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// Request outcomes used as the status attribute.
const (
	StatusOK                = "ok"
	StatusInvalidInput      = "invalid_input"
	StatusTooLarge          = "too_large"
	StatusUnsupportedFormat = "unsupported_format"
	StatusEncoderInit       = "encoder_init"
	StatusEncodingFailure   = "encoding_failure"
)
