package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// InitMeterProvider bootstraps the OpenTelemetry MeterProvider with an
// OTLP/gRPC metric exporter targeting the given endpoint.
// Metrics are flushed periodically via a PeriodicReader.
// The caller must defer mp.Shutdown(ctx) to flush pending metrics.
func InitMeterProvider(ctx context.Context, serviceName string, endpoint string) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	)

	otel.SetMeterProvider(mp)
	return mp, nil
}

// IngestMetrics are the counters the pipeline records per message. They use
// the global meter, so they are no-ops unless InitMeterProvider ran.
type IngestMetrics struct {
	MessagesTotal metric.Int64Counter
	DroppedTotal  metric.Int64Counter
	FailuresTotal metric.Int64Counter
}

func NewIngestMetrics() *IngestMetrics {
	meter := otel.Meter("frigate-ingestor")

	messages, _ := meter.Int64Counter("ingest.messages.total",
		metric.WithDescription("Messages received from the broker, by kind"))
	dropped, _ := meter.Int64Counter("ingest.dropped.total",
		metric.WithDescription("Messages dropped before persistence, by reason"))
	failures, _ := meter.Int64Counter("ingest.failures.total",
		metric.WithDescription("Handler failures, by error kind"))

	return &IngestMetrics{
		MessagesTotal: messages,
		DroppedTotal:  dropped,
		FailuresTotal: failures,
	}
}

// RecordMessage counts one delivered broker message of the given kind.
func (m *IngestMetrics) RecordMessage(ctx context.Context, kind string) {
	m.MessagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordDrop counts one message dropped before persistence.
func (m *IngestMetrics) RecordDrop(ctx context.Context, reason string) {
	m.DroppedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordFailure counts one handler failure of the given error kind.
func (m *IngestMetrics) RecordFailure(ctx context.Context, kind string) {
	m.FailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
