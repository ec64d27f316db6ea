package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability owns the OpenTelemetry meter and tracer providers. A zero
// value is usable and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	replyCounter   otelmetric.Int64Counter
	replyDuration  otelmetric.Float64Histogram
	replyTokens    otelmetric.Int64Histogram
}

type Options struct {
	// Registerer receives the Prometheus collector; nil means the default registry.
	Registerer promclient.Registerer
	// TraceSampleRatio is the fraction of root spans sampled.
	TraceSampleRatio float64
}

func New(serviceName string, opts Options) *Observability {
	o := &Observability{}

	// TODO: attach an OTLP span exporter once a collector endpoint is part of the config.
	o.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.TraceSampleRatio))),
	)
	otel.SetTracerProvider(o.tracerProvider)

	exporterOpts := []prometheus.Option{}
	if opts.Registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(opts.Registerer))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	replyCounter, _ := meter.Int64Counter(
		"agent.replies",
		otelmetric.WithDescription("Number of replies produced by the response engine"),
	)

	replyDuration, _ := meter.Float64Histogram(
		"agent.reply.duration",
		otelmetric.WithDescription("Time from request decode to formatted reply"),
		otelmetric.WithUnit("ms"),
	)

	replyTokens, _ := meter.Int64Histogram(
		"agent.reply.completion_tokens",
		otelmetric.WithDescription("Whitespace word count of produced replies"),
	)

	o.meterProvider = provider
	o.meter = meter
	o.replyCounter = replyCounter
	o.replyDuration = replyDuration
	o.replyTokens = replyTokens
	return o
}

// Tracer returns a tracer from the configured provider, or a no-op tracer.
func (o *Observability) Tracer(name string) trace.Tracer {
	if o == nil || o.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return o.tracerProvider.Tracer(name)
}

func (o *Observability) RecordReply(ctx context.Context, persona, state string, tokens int, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("persona", persona),
		attribute.String("state", state),
	)
	if o.replyCounter != nil {
		o.replyCounter.Add(ctx, 1, attrs)
	}
	if o.replyDuration != nil {
		o.replyDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
	if o.replyTokens != nil {
		o.replyTokens.Record(ctx, int64(tokens), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
