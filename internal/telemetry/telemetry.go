// Package telemetry bootstraps OpenTelemetry tracing and metrics, adapted
// from the teacher's packages/go-core/telemetry (which wires the metric
// side via otlpmetricgrpc but leaves tracer bootstrap to each service); this
// fills in the matching InitTracer so cmd/dronewatch-api can call both the
// same way arc-core's services call InitTracer+InitMeterProvider.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer bootstraps the OpenTelemetry TracerProvider with an OTLP/gRPC
// span exporter targeting endpoint. The caller must defer tp.Shutdown(ctx)
// to flush pending spans.
func InitTracer(ctx context.Context, serviceName, endpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

// InitMeterProvider bootstraps the OpenTelemetry MeterProvider with an
// OTLP/gRPC metric exporter. Mirrors go-core/telemetry.InitMeterProvider
// exactly; kept alongside InitTracer here so cmd/dronewatch-api has a
// single import for both.
func InitMeterProvider(ctx context.Context, serviceName, endpoint string) (*sdkmetric.MeterProvider, error) {
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

// Tracer returns the named tracer off the global provider, for components
// that want a span without threading a *sdktrace.TracerProvider through
// their constructors.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
